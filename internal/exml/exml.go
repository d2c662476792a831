package exml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	RootElement     = "Data"
	PropertyElement = "Property"
	NameAttr        = "name"
	ValueAttr       = "value"

	BinaryExt = ".MBIN"
	TextExt   = ".EXML"
)

// TreeName maps a binary document identifier to the file name the decompiler
// produces for it. Every occurrence of the binary extension is replaced.
func TreeName(id string) string {
	return strings.ReplaceAll(id, BinaryExt, TextExt)
}

// TreeNames maps each identifier with TreeName, preserving order.
func TreeNames(ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = TreeName(id)
	}
	return names
}

// Load reads a text tree from path.
func Load(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("read tree %s: document has no root element", path)
	}
	return doc, nil
}

// Save writes doc to path. A positive indent re-indents the tree with that
// many spaces; zero keeps the existing layout.
func Save(doc *etree.Document, path string, indent int) error {
	if doc == nil {
		return fmt.Errorf("write tree %s: nil document", path)
	}
	if indent > 0 {
		doc.Indent(indent)
	}
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write tree %s: %w", path, err)
	}
	return nil
}

// Render serializes doc to a string, used for diff previews.
func Render(doc *etree.Document) (string, error) {
	if doc == nil {
		return "", nil
	}
	text, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("render tree: %w", err)
	}
	return text, nil
}

// NewProperty appends a Property child to parent carrying whichever of name
// and value are non-empty.
func NewProperty(parent *etree.Element, name, value string) *etree.Element {
	child := parent.CreateElement(PropertyElement)
	if name != "" {
		child.CreateAttr(NameAttr, name)
	}
	if value != "" {
		child.CreateAttr(ValueAttr, value)
	}
	return child
}
