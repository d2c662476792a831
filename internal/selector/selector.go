package selector

import (
	"errors"
	"fmt"
	"strings"

	"nmsmc/internal/exml"
)

var (
	// ErrUnterminatedBracket reports a bracketed value without a closing ']'.
	ErrUnterminatedBracket = errors.New("missing ]")
	// ErrTrailingCharacters reports text after the closing ']' of a value.
	ErrTrailingCharacters = errors.New("extra data after ]")
)

const (
	nameAttr  = exml.NameAttr
	valueAttr = exml.ValueAttr
)

// SyntaxError describes a selector step that could not be translated.
type SyntaxError struct {
	Selector string
	Token    string
	Err      error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("selector %q: step %q: %v", e.Selector, e.Token, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Translate applies raw to the ambient query and returns the resulting query.
// ambient is never modified.
func Translate(raw string, ambient Expr) (Expr, error) {
	rest := raw
	base := ambient
	if strings.HasPrefix(raw, "/") {
		base = Expr{Rooted: true, Steps: []Step{{Tag: exml.RootElement}}}
		rest = raw[1:]
	}

	var steps []Step
	for _, token := range strings.Split(rest, "/") {
		if token == "" {
			continue
		}
		step, err := translateStep(token)
		if err != nil {
			return Expr{}, &SyntaxError{Selector: raw, Token: token, Err: err}
		}
		steps = append(steps, step)
	}
	return base.with(steps...), nil
}

func translateStep(token string) (Step, error) {
	switch token {
	case wildcard, parent:
		return Step{Tag: token}, nil
	}

	eq := strings.IndexByte(token, '=')
	if eq < 0 {
		return Step{Tag: exml.PropertyElement, Name: token, HasName: true}, nil
	}

	name := token[:eq]
	value := token[eq+1:]
	bracketed := false
	switch {
	case strings.HasSuffix(name, "["):
		name = strings.TrimSuffix(name, "[")
		bracketed = true
	case strings.HasPrefix(value, "["):
		value = value[1:]
		bracketed = true
	}
	if bracketed {
		end := strings.IndexByte(value, ']')
		if end < 0 {
			return Step{}, ErrUnterminatedBracket
		}
		if end != len(value)-1 {
			return Step{}, ErrTrailingCharacters
		}
		value = value[:end]
	}
	step := Step{Tag: exml.PropertyElement, Value: value, HasValue: true}
	if name != "" && name != wildcard {
		step.Name, step.HasName = name, true
	}
	return step, nil
}
