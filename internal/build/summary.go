package build

import "nmsmc/internal/history"

// ContainerSummary counts the work done for one output archive.
type ContainerSummary struct {
	Output      string `json:"output"`
	Archives    int    `json:"archives"`
	Documents   int    `json:"documents"`
	Edits       int    `json:"edits"`
	Assignments int    `json:"assignments"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	Misses      int    `json:"misses"`
	ExtraFiles  int    `json:"extra_files"`
	Packed      bool   `json:"packed"`
}

// Summary collects per-container results of a run.
type Summary struct {
	Containers []ContainerSummary `json:"containers"`
}

// Outputs lists the archives that were written.
func (s Summary) Outputs() []string {
	var outputs []string
	for _, c := range s.Containers {
		if c.Packed {
			outputs = append(outputs, c.Output)
		}
	}
	return outputs
}

// Counters totals the summary for the history ledger.
func (s Summary) Counters() history.Counters {
	var total history.Counters
	for _, c := range s.Containers {
		if c.Packed {
			total.Containers++
		}
		total.Archives += c.Archives
		total.Documents += c.Documents
		total.Edits += c.Edits
		total.Created += c.Created
		total.Updated += c.Updated
		total.Misses += c.Misses
	}
	return total
}

// Misses totals unmatched assignments across containers.
func (s Summary) Misses() int {
	total := 0
	for _, c := range s.Containers {
		total += c.Misses
	}
	return total
}
