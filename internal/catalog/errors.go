package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMenu indicates a structurally invalid menu definition.
	ErrInvalidMenu = errors.New("invalid menu")

	// ErrNoCommands indicates that every source failed to load.
	ErrNoCommands = errors.New("no commands available")
)

// ParseError reports a problem in a catalog file.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
