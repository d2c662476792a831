package selector

import "strings"

const (
	wildcard = "*"
	parent   = ".."
)

// Step is one location step. Tag is an element name, "*" for any element or
// ".." for the parent. Name and Value filter on the name and value attributes
// when the matching Has flag is set.
type Step struct {
	Tag      string
	Name     string
	HasName  bool
	Value    string
	HasValue bool
}

// IsParent reports whether the step ascends to the parent element.
func (s Step) IsParent() bool { return s.Tag == parent }

// Matches reports whether an element with the given tag and attribute lookup
// satisfies the step. Parent steps never match.
func (s Step) Matches(tag string, attr func(name string) (string, bool)) bool {
	if s.IsParent() {
		return false
	}
	if s.Tag != wildcard && s.Tag != tag {
		return false
	}
	if s.HasName {
		if v, ok := attr(nameAttr); !ok || v != s.Name {
			return false
		}
	}
	if s.HasValue {
		if v, ok := attr(valueAttr); !ok || v != s.Value {
			return false
		}
	}
	return true
}

func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Tag)
	if s.HasName {
		writeFilter(&b, nameAttr, s.Name)
	}
	if s.HasValue {
		writeFilter(&b, valueAttr, s.Value)
	}
	return b.String()
}

// Expr is a translated query. Steps are evaluated from the document node;
// Rooted only records that the first step was anchored by a leading slash.
// The zero value selects nothing.
type Expr struct {
	Rooted bool
	Steps  []Step
}

// IsZero reports whether the expression has no steps.
func (e Expr) IsZero() bool { return len(e.Steps) == 0 }

// String renders the expression in an XPath-like notation.
func (e Expr) String() string {
	var b strings.Builder
	if e.Rooted {
		b.WriteByte('/')
	}
	for i, step := range e.Steps {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(step.String())
	}
	return b.String()
}

func (e Expr) with(steps ...Step) Expr {
	out := Expr{Rooted: e.Rooted, Steps: make([]Step, 0, len(e.Steps)+len(steps))}
	out.Steps = append(out.Steps, e.Steps...)
	out.Steps = append(out.Steps, steps...)
	return out
}

func writeFilter(b *strings.Builder, attr, value string) {
	quote := "'"
	if strings.Contains(value, "'") {
		quote = `"`
	}
	b.WriteString("[@")
	b.WriteString(attr)
	b.WriteByte('=')
	b.WriteString(quote)
	b.WriteString(value)
	b.WriteString(quote)
	b.WriteByte(']')
}
