package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind is the display kind of a command.
type Kind uint8

const (
	// KindCommand is a menu command.
	KindCommand Kind = iota

	// KindOutline is an entry of a document outline.
	KindOutline

	// KindScript is a user script.
	KindScript
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindOutline:
		return "outline"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Symbol returns the glyph shown next to commands of this kind.
func (k Kind) Symbol() rune {
	switch k {
	case KindCommand:
		return '▸'
	case KindOutline:
		return '≡'
	case KindScript:
		return 'λ'
	default:
		return '?'
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "command":
		return KindCommand, nil
	case "outline":
		return KindOutline, nil
	case "script":
		return KindScript, nil
	default:
		return 0, fmt.Errorf("unknown command kind %q", s)
	}
}

// Action is the invocable handle of a command.
type Action interface {
	Perform(ctx context.Context) error
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(ctx context.Context) error

// Perform calls f(ctx).
func (f ActionFunc) Perform(ctx context.Context) error {
	return f(ctx)
}

// Command describes an invocable entry of the command bar.
type Command struct {
	// ID identifies the command for selection tracking. It must be unique
	// within a catalog; New assigns a random one.
	ID uuid.UUID

	// Kind is the display kind.
	Kind Kind

	// Path holds the segments from the outermost section to the title.
	Path []string

	// Shortcut is a keyboard shortcut label (display only).
	Shortcut string

	// Action performs the command.
	Action Action
}

// New creates a command with a fresh random ID.
// The path slice is copied.
func New(kind Kind, path []string, action Action) *Command {
	p := make([]string, len(path))
	copy(p, path)
	return &Command{
		ID:     uuid.New(),
		Kind:   kind,
		Path:   p,
		Action: action,
	}
}

// WithShortcut sets the shortcut label and returns the command.
// It is meant to be used while building a catalog, before the command is shared.
func (c *Command) WithShortcut(shortcut string) *Command {
	c.Shortcut = shortcut
	return c
}

// Title returns the last path segment, or "" for an empty path.
func (c *Command) Title() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[len(c.Path)-1]
}

// Breadcrumb returns the path segments before the title.
func (c *Command) Breadcrumb() []string {
	if len(c.Path) <= 1 {
		return nil
	}
	return c.Path[:len(c.Path)-1]
}

// String returns the path joined with " › ".
func (c *Command) String() string {
	return strings.Join(c.Path, " › ")
}

// Validate checks that the command can be offered and performed.
func (c *Command) Validate() error {
	if len(c.Path) == 0 {
		return ErrEmptyPath
	}
	if c.ID == uuid.Nil {
		return fmt.Errorf("command %q: %w", c.String(), ErrNoID)
	}
	if c.Action == nil {
		return fmt.Errorf("command %q: %w", c.String(), ErrNoAction)
	}
	return nil
}

// Perform runs the command's action.
func (c *Command) Perform(ctx context.Context) error {
	if c.Action == nil {
		return fmt.Errorf("command %q: %w", c.String(), ErrNoAction)
	}
	return c.Action.Perform(ctx)
}
