package script

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a script runs past its time budget.
	ErrTimeout = errors.New("script execution timed out")

	// ErrCancelled is returned when the caller cancels a running script.
	ErrCancelled = errors.New("script execution cancelled")
)

// Error wraps a failure of a specific script.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
