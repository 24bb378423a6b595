// Package palette holds the state of the command bar.
//
// A Bar is a plain state struct owned by the UI goroutine. It captures the
// catalog from a Supplier when it becomes active, recomputes the ranked
// candidates explicitly whenever the input changes, tracks the selected
// candidate and performs the selection:
//
//	bar := palette.New(catalog)
//	if err := bar.Activate(ctx); err != nil {
//	    return err
//	}
//	bar.SetInput("fort")
//	bar.Move(true)
//	err := bar.Perform(ctx, screen.Fini)
//
// Perform dismisses the bar before invoking the command, so the action runs
// against whatever the bar was covering.
//
// # Thread Safety
//
// A Bar is not safe for concurrent use. Background producers such as file
// watchers must hand work to the owning goroutine.
package palette
