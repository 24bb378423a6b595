package palette

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/cmdbar/internal/command"
	"github.com/dshills/cmdbar/internal/logging"
	"github.com/dshills/cmdbar/internal/match"
)

// Supplier provides the ordered catalog of commands.
type Supplier interface {
	Catalog(ctx context.Context) ([]*command.Command, error)
}

// SupplierFunc adapts a function to the Supplier interface.
type SupplierFunc func(ctx context.Context) ([]*command.Command, error)

// Catalog calls f(ctx).
func (f SupplierFunc) Catalog(ctx context.Context) ([]*command.Command, error) {
	return f(ctx)
}

// Static returns a supplier that always yields cmds.
func Static(cmds ...*command.Command) Supplier {
	return SupplierFunc(func(context.Context) ([]*command.Command, error) {
		return cmds, nil
	})
}

// Invoker performs a chosen command.
type Invoker interface {
	Invoke(ctx context.Context, cmd *command.Command) error
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, cmd *command.Command) error

// Invoke calls f(ctx, cmd).
func (f InvokerFunc) Invoke(ctx context.Context, cmd *command.Command) error {
	return f(ctx, cmd)
}

// performInvoker runs the command's own action.
var performInvoker = InvokerFunc(func(ctx context.Context, cmd *command.Command) error {
	return cmd.Perform(ctx)
})

// Option configures a Bar.
type Option func(*Bar)

// WithMatcher sets the matcher used to rank candidates.
func WithMatcher(m *match.Matcher) Option {
	return func(b *Bar) {
		if m != nil {
			b.matcher = m
		}
	}
}

// WithInvoker sets how chosen commands are performed.
func WithInvoker(inv Invoker) Option {
	return func(b *Bar) {
		if inv != nil {
			b.invoker = inv
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bar) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bar is the state of the command bar.
type Bar struct {
	supplier Supplier
	matcher  *match.Matcher
	invoker  Invoker
	logger   *logging.Logger

	active     bool
	commands   []*command.Command
	input      string
	candidates []match.Candidate

	selection    uuid.UUID
	hasSelection bool
}

// New creates an inactive bar backed by supplier.
func New(supplier Supplier, opts ...Option) *Bar {
	b := &Bar{
		supplier: supplier,
		matcher:  match.NewMatcher(match.DefaultOptions()),
		invoker:  performInvoker,
		logger:   logging.Nop,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("palette")
	return b
}

// Activate captures the catalog and resets the input.
func (b *Bar) Activate(ctx context.Context) error {
	if err := b.capture(ctx); err != nil {
		return err
	}
	b.active = true
	b.SetInput("")
	b.logger.Debug("activated with %d commands", len(b.commands))
	return nil
}

// Refresh recaptures the catalog, keeping the current input.
// The selection is reset to the top candidate.
func (b *Bar) Refresh(ctx context.Context) error {
	if err := b.capture(ctx); err != nil {
		return err
	}
	b.recompute()
	b.logger.Debug("refreshed with %d commands", len(b.commands))
	return nil
}

func (b *Bar) capture(ctx context.Context) error {
	if b.supplier == nil {
		return ErrNoSupplier
	}
	cmds, err := b.supplier.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	b.commands = cmds
	return nil
}

// Deactivate clears the input, candidates and selection.
func (b *Bar) Deactivate() {
	b.active = false
	b.commands = nil
	b.input = ""
	b.candidates = nil
	b.clearSelection()
}

// Active reports whether the bar is active.
func (b *Bar) Active() bool {
	return b.active
}

// Input returns the current query.
func (b *Bar) Input() string {
	return b.input
}

// SetInput records the query and recomputes the candidates.
func (b *Bar) SetInput(query string) {
	b.input = query
	b.recompute()
}

// recompute ranks the catalog and selects the top candidate.
func (b *Bar) recompute() {
	b.candidates = b.matcher.Rank(b.commands, b.input)
	if len(b.candidates) == 0 {
		b.clearSelection()
		return
	}
	b.selection = b.candidates[0].Command.ID
	b.hasSelection = true
}

func (b *Bar) clearSelection() {
	b.selection = uuid.Nil
	b.hasSelection = false
}

// Candidates returns the ranked candidates. The slice must not be modified.
func (b *Bar) Candidates() []match.Candidate {
	return b.candidates
}

// Commands returns the captured catalog.
func (b *Bar) Commands() []*command.Command {
	return b.commands
}

// SelectedIndex returns the index of the selected candidate, or -1.
func (b *Bar) SelectedIndex() int {
	if !b.hasSelection {
		return -1
	}
	for i, c := range b.candidates {
		if c.Command.ID == b.selection {
			return i
		}
	}
	return -1
}

// Selected returns the selected command.
func (b *Bar) Selected() (*command.Command, bool) {
	i := b.SelectedIndex()
	if i < 0 {
		return nil, false
	}
	return b.candidates[i].Command, true
}

// Select selects the candidate with the given ID. It reports false and
// leaves the selection unchanged when no candidate has that ID.
func (b *Bar) Select(id uuid.UUID) bool {
	for _, c := range b.candidates {
		if c.Command.ID == id {
			b.selection = id
			b.hasSelection = true
			return true
		}
	}
	return false
}

// SelectIndex selects the candidate at index i, if any.
func (b *Bar) SelectIndex(i int) bool {
	if i < 0 || i >= len(b.candidates) {
		return false
	}
	return b.Select(b.candidates[i].Command.ID)
}

// Move selects the next (down) or previous candidate. Moving past either
// end, or moving while the selection is not in the list, does nothing.
// It reports whether the selection changed.
func (b *Bar) Move(down bool) bool {
	i := b.SelectedIndex()
	if i < 0 {
		return false
	}
	if down {
		i++
	} else {
		i--
	}
	return b.SelectIndex(i)
}

// Perform dismisses the bar and then invokes the selected command.
// dismiss is called first, even when nothing is selected; the command is
// invoked at most once.
func (b *Bar) Perform(ctx context.Context, dismiss func()) error {
	cmd, ok := b.Selected()

	if dismiss != nil {
		dismiss()
	}
	b.Deactivate()

	if !ok {
		return ErrNoSelection
	}

	b.logger.WithField("kind", cmd.Kind).Info("performing %q", cmd.String())
	if err := b.invoker.Invoke(ctx, cmd); err != nil {
		return fmt.Errorf("performing %q: %w", cmd.String(), err)
	}
	return nil
}
