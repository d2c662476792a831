package upsert

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"nmsmc/internal/definition"
	"nmsmc/internal/exml"
	"nmsmc/internal/selector"
)

var (
	// ErrNoMatch reports a query that selected no elements.
	ErrNoMatch = errors.New("query matched no elements")
	// ErrInvalidQuery reports a query with no steps.
	ErrInvalidQuery = errors.New("invalid query")
)

// Result counts what an application did.
type Result struct {
	Matched int
	Created int
	Updated int
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.Matched += other.Matched
	r.Created += other.Created
	r.Updated += other.Updated
}

// Apply upserts a under every element selected by query. An assignment with
// both fields absent is a no-op.
func Apply(doc *etree.Document, query selector.Expr, a definition.Assignment) (Result, error) {
	if a.IsEmpty() || doc == nil {
		return Result{}, nil
	}

	if query.IsZero() {
		return Result{}, fmt.Errorf("%w: no steps", ErrInvalidQuery)
	}
	matches := Select(doc, query)
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoMatch, query)
	}

	keyAttr, key := exml.NameAttr, a.Name
	if key == "" {
		keyAttr, key = exml.ValueAttr, a.Value
	}

	res := Result{Matched: len(matches)}
	for _, target := range matches {
		if child := findChild(target, keyAttr, key); child != nil {
			child.CreateAttr(exml.ValueAttr, a.Value)
			res.Updated++
			continue
		}
		exml.NewProperty(target, a.Name, a.Value)
		res.Created++
	}
	return res, nil
}

// Select evaluates query from the document node and returns the matched
// elements in first-reached order without duplicates. The document node
// itself, reachable by ascending past the root, is never returned.
func Select(doc *etree.Document, query selector.Expr) []*etree.Element {
	if doc == nil {
		return nil
	}
	current := []*etree.Element{&doc.Element}
	for _, step := range query.Steps {
		next := make([]*etree.Element, 0, len(current))
		seen := make(map[*etree.Element]struct{}, len(current))
		add := func(el *etree.Element) {
			if _, dup := seen[el]; dup {
				return
			}
			seen[el] = struct{}{}
			next = append(next, el)
		}
		for _, el := range current {
			if step.IsParent() {
				if p := el.Parent(); p != nil {
					add(p)
				}
				continue
			}
			for _, child := range el.ChildElements() {
				if step.Matches(child.Tag, attrLookup(child)) {
					add(child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}

	out := current[:0]
	for _, el := range current {
		if el != &doc.Element {
			out = append(out, el)
		}
	}
	return out
}

func attrLookup(el *etree.Element) func(string) (string, bool) {
	return func(key string) (string, bool) {
		attr := el.SelectAttr(key)
		if attr == nil {
			return "", false
		}
		return attr.Value, true
	}
}

func findChild(parent *etree.Element, attr, key string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if v := child.SelectAttr(attr); v != nil && v.Value == key {
			return child
		}
	}
	return nil
}
