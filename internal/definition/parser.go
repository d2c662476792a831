package definition

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	directiveInclude = "!include"
	directiveOutput  = "!outputPakFile"
	directiveAddFile = "!addFile"
	directiveInput   = "!inputPakFile"
	directiveMBIN    = "!mbinFile"
	directiveCD      = "cd"

	assignmentLabel = "an assignment"

	// StdinPath names standard input as a definition source.
	StdinPath = "-"

	maxLineLength = 1 << 20
)

// state carries the current scopes while a definition (and anything it
// includes) is parsed.
type state struct {
	plan      *Plan
	container *Container
	archive   *Archive
	document  *Document
	edit      *Edit
	stdin     io.Reader
}

// Parse reads the definition at path into existing, or into a new Plan when
// existing is nil. Each call starts with no open scopes. On error existing
// may hold the lines accepted before the failure and no plan is returned.
func Parse(path string, existing *Plan) (*Plan, error) {
	s := newState(existing)
	if err := s.parseFile(path); err != nil {
		return nil, err
	}
	return s.plan, nil
}

// ParseReader parses already-open input; name labels errors.
func ParseReader(r io.Reader, name string, existing *Plan) (*Plan, error) {
	s := newState(existing)
	if err := s.parse(r, name); err != nil {
		return nil, err
	}
	return s.plan, nil
}

// ParseFiles parses each path in order into one plan.
func ParseFiles(paths []string) (*Plan, error) {
	plan := &Plan{}
	for _, path := range paths {
		if _, err := Parse(path, plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func newState(existing *Plan) *state {
	if existing == nil {
		existing = &Plan{}
	}
	return &state{plan: existing, stdin: os.Stdin}
}

func (s *state) parseFile(path string) error {
	if path == StdinPath {
		return s.parse(s.stdin, "<stdin>")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open definition %s: %w", path, err)
	}
	defer f.Close()
	return s.parse(f, path)
}

func (s *state) parse(r io.Reader, name string) error {
	decoder := textunicode.BOMOverride(textunicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := s.handleLine(scanner.Text()); err != nil {
			var nested *LineError
			if errors.As(err, &nested) {
				return err
			}
			return &LineError{File: name, Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return &LineError{File: name, Line: lineNo + 1, Err: fmt.Errorf("read definition: %w", err)}
	}
	return nil
}

func (s *state) handleLine(raw string) error {
	line := raw
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	directive, arg := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		directive, arg = line[:i], strings.TrimSpace(line[i:])
	}

	switch directive {
	case directiveInclude:
		if arg == "" {
			return missingArgument(directive)
		}
		return s.parseFile(arg)

	case directiveOutput:
		if arg == "" {
			return missingArgument(directive)
		}
		s.container = s.plan.AddContainer(arg)
		s.archive, s.document, s.edit = nil, nil, nil

	case directiveAddFile:
		if s.container == nil {
			return sequenceError(directiveOutput, directive)
		}
		if arg == "" {
			return missingArgument(directive)
		}
		s.container.AddExtraFile(arg)

	case directiveInput:
		if s.container == nil {
			return sequenceError(directiveOutput, directive)
		}
		if arg == "" {
			return missingArgument(directive)
		}
		s.archive = s.container.UseArchive(arg)
		s.document, s.edit = nil, nil

	case directiveMBIN:
		if s.archive == nil {
			return sequenceError(directiveInput, directive)
		}
		if arg == "" {
			return missingArgument(directive)
		}
		doc, reused := s.archive.UseDocument(arg)
		s.document = doc
		s.edit = nil
		if reused {
			s.edit = doc.LastEdit()
		}

	case directiveCD:
		if s.document == nil {
			return sequenceError(directiveMBIN, quote(directive))
		}
		if arg == "" {
			return missingArgument(directive)
		}
		s.edit = s.document.AddEdit(arg)

	default:
		if s.edit == nil {
			return sequenceError(quote(directiveCD), assignmentLabel)
		}
		s.edit.Add(ParseAssignment(line))
	}
	return nil
}

func missingArgument(directive string) error {
	return fmt.Errorf("%w for %s", ErrMissingArgument, directive)
}

func quote(s string) string {
	return `"` + s + `"`
}
