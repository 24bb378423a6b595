// Package command defines the descriptors offered by the command bar.
//
// A Command is an immutable description of something the user can invoke:
// an identifier, a display kind, a path of one or more segments (the last
// segment is the title, earlier segments are the breadcrumb of containing
// menus or sections), an optional shortcut label and an Action.
//
// Commands are built by catalog sources and referenced, never copied, by
// the matcher and the bar.
//
//	cmd := command.New(command.KindCommand,
//	    []string{"Format", "Syntax", "Fortran"},
//	    command.ActionFunc(func(ctx context.Context) error { return nil }),
//	)
//	fmt.Println(cmd.Title()) // Fortran
package command
