package definition

import (
	"errors"
	"fmt"
)

var (
	// ErrSequence reports a directive used before its enclosing scope exists.
	ErrSequence = errors.New("directive out of sequence")
	// ErrMissingArgument reports a directive written without its argument.
	ErrMissingArgument = errors.New("missing argument")
)

// LineError locates a parse failure within a definition file.
type LineError struct {
	File string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func sequenceError(want, got string) error {
	return fmt.Errorf("%w: expected %s, but got %s", ErrSequence, want, got)
}
