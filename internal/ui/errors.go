package ui

import "errors"

var (
	// ErrCancelled is returned by Run when the user dismisses the bar
	// without choosing a command.
	ErrCancelled = errors.New("cancelled")
)
