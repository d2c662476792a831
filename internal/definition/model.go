package definition

import "strings"

// Plan is the ordered list of output archives to produce.
type Plan struct {
	Containers []*Container `json:"containers"`
}

// Container describes one output archive.
type Container struct {
	Output     string     `json:"output"`
	Archives   []*Archive `json:"archives"`
	ExtraFiles []string   `json:"extra_files,omitempty"`

	archiveIndex map[string]*Archive
}

// Archive is a source archive whose documents are patched.
type Archive struct {
	Source    string      `json:"source"`
	Documents []*Document `json:"documents"`

	documentIndex map[string]*Document
}

// Document is one binary document inside an archive, identified by its path
// within the archive.
type Document struct {
	ID    string  `json:"id"`
	Edits []*Edit `json:"edits"`
}

// Edit is a selector scope and the assignments applied under it.
type Edit struct {
	Selector    string       `json:"selector"`
	Assignments []Assignment `json:"assignments"`
}

// Assignment sets a field under an edit. The empty string means absent; an
// assignment never has both fields absent.
type Assignment struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// IsEmpty reports whether both fields are absent.
func (a Assignment) IsEmpty() bool {
	return a.Name == "" && a.Value == ""
}

func (a Assignment) String() string {
	if a.Value == "" {
		return a.Name
	}
	return a.Name + "=" + a.Value
}

// AddContainer appends a new output archive to the plan.
func (p *Plan) AddContainer(output string) *Container {
	c := &Container{Output: output}
	p.Containers = append(p.Containers, c)
	return c
}

// UseArchive returns the archive for source, appending it when the container
// has not seen that exact path yet.
func (c *Container) UseArchive(source string) *Archive {
	if c.archiveIndex == nil {
		c.archiveIndex = make(map[string]*Archive, len(c.Archives))
		for _, a := range c.Archives {
			c.archiveIndex[a.Source] = a
		}
	}
	if a, ok := c.archiveIndex[source]; ok {
		return a
	}
	a := &Archive{Source: source}
	c.Archives = append(c.Archives, a)
	c.archiveIndex[source] = a
	return a
}

// AddExtraFile records a file bundled verbatim into the output archive.
func (c *Container) AddExtraFile(path string) {
	c.ExtraFiles = append(c.ExtraFiles, path)
}

// DocumentCount returns the number of documents across all archives.
func (c *Container) DocumentCount() int {
	total := 0
	for _, a := range c.Archives {
		total += len(a.Documents)
	}
	return total
}

// DocumentIDs returns every document identifier in archive then document
// order.
func (c *Container) DocumentIDs() []string {
	ids := make([]string, 0, c.DocumentCount())
	for _, a := range c.Archives {
		ids = append(ids, a.DocumentIDs()...)
	}
	return ids
}

// UseDocument returns the document for id, appending it when the archive has
// not seen it yet. The boolean reports whether the document already existed.
func (a *Archive) UseDocument(id string) (*Document, bool) {
	if a.documentIndex == nil {
		a.documentIndex = make(map[string]*Document, len(a.Documents))
		for _, d := range a.Documents {
			a.documentIndex[d.ID] = d
		}
	}
	if d, ok := a.documentIndex[id]; ok {
		return d, true
	}
	d := &Document{ID: id}
	a.Documents = append(a.Documents, d)
	a.documentIndex[id] = d
	return d, false
}

// DocumentCount returns the number of documents in the archive.
func (a *Archive) DocumentCount() int {
	return len(a.Documents)
}

// DocumentIDs returns the archive's document identifiers in order.
func (a *Archive) DocumentIDs() []string {
	ids := make([]string, len(a.Documents))
	for i, d := range a.Documents {
		ids[i] = d.ID
	}
	return ids
}

// AddEdit appends a selector scope to the document.
func (d *Document) AddEdit(selector string) *Edit {
	e := &Edit{Selector: selector}
	d.Edits = append(d.Edits, e)
	return e
}

// LastEdit returns the most recent selector scope, or nil.
func (d *Document) LastEdit() *Edit {
	if len(d.Edits) == 0 {
		return nil
	}
	return d.Edits[len(d.Edits)-1]
}

// Add appends an assignment unless both fields are absent.
func (e *Edit) Add(a Assignment) bool {
	if a.IsEmpty() {
		return false
	}
	e.Assignments = append(e.Assignments, a)
	return true
}

// ParseAssignment splits an assignment line at its first '='. Both halves are
// trimmed and an empty half is absent.
func ParseAssignment(line string) Assignment {
	name, value, _ := strings.Cut(line, "=")
	return Assignment{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
}

// Stats counts the entities of a plan.
type Stats struct {
	Containers  int `json:"containers"`
	Archives    int `json:"archives"`
	Documents   int `json:"documents"`
	Edits       int `json:"edits"`
	Assignments int `json:"assignments"`
	ExtraFiles  int `json:"extra_files"`
}

// Stats returns entity counts for the plan.
func (p *Plan) Stats() Stats {
	var s Stats
	if p == nil {
		return s
	}
	s.Containers = len(p.Containers)
	for _, c := range p.Containers {
		s.ExtraFiles += len(c.ExtraFiles)
		s.Archives += len(c.Archives)
		for _, a := range c.Archives {
			s.Documents += len(a.Documents)
			for _, d := range a.Documents {
				s.Edits += len(d.Edits)
				for _, e := range d.Edits {
					s.Assignments += len(e.Assignments)
				}
			}
		}
	}
	return s
}
