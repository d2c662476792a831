package history

import "time"

// Status is the lifecycle state of a build run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusInvalid   Status = "invalid"
	StatusCanceled  Status = "canceled"
)

// IsTerminal reports whether the status ends a run.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusInvalid, StatusCanceled:
		return true
	default:
		return false
	}
}

// Counters summarises the work done by a run.
type Counters struct {
	Containers int `json:"containers"`
	Archives   int `json:"archives"`
	Documents  int `json:"documents"`
	Edits      int `json:"edits"`
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Misses     int `json:"misses"`
}

// Run is a persisted build run.
type Run struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Definitions []string  `json:"definitions"`
	Outputs     []string  `json:"outputs,omitempty"`
	Counters    Counters  `json:"counters"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
}

// Duration returns the wall time of a finished run, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
