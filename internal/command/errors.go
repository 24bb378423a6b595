package command

import "errors"

// Descriptor validation errors.
var (
	// ErrEmptyPath indicates a command with no path segments.
	ErrEmptyPath = errors.New("command path is empty")

	// ErrNoID indicates a command without an identifier.
	ErrNoID = errors.New("command has no ID")

	// ErrNoAction indicates a command without an action.
	ErrNoAction = errors.New("command has no action")
)
