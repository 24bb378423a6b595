package palette

import "errors"

var (
	// ErrNoSelection is returned by Perform when no candidate is selected.
	ErrNoSelection = errors.New("no command selected")

	// ErrNoSupplier is returned when the bar has no catalog supplier.
	ErrNoSupplier = errors.New("no catalog supplier")
)
