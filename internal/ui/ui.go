package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cmdbar/internal/command"
	"github.com/dshills/cmdbar/internal/logging"
	"github.com/dshills/cmdbar/internal/palette"
)

// Screen is the subset of tcell.Screen used by UI.
type Screen interface {
	Canvas
	Clear()
	Show()
	Sync()
	ShowCursor(x, y int)
	HideCursor()
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
	Fini()
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnablePaste()
	return screen, nil
}

// refreshRequest marks interrupts posted by Notify.
type refreshRequest struct{}

// Option configures a UI.
type Option func(*UI)

// WithView sets the layout and theme.
func WithView(v *View) Option {
	return func(u *UI) {
		if v != nil {
			u.view = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(u *UI) {
		if l != nil {
			u.logger = l
		}
	}
}

// UI runs the command bar on a terminal screen.
type UI struct {
	screen Screen
	bar    *palette.Bar
	view   *View
	logger *logging.Logger

	closeOnce sync.Once
}

// New creates a UI drawing bar on screen.
func New(screen Screen, bar *palette.Bar, opts ...Option) *UI {
	u := &UI{
		screen: screen,
		bar:    bar,
		view:   NewView(80, 10),
		logger: logging.Nop,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.WithComponent("ui")
	return u
}

// Notify asks the UI to recapture the catalog. It is safe to call from
// any goroutine.
func (u *UI) Notify() {
	if err := u.screen.PostEvent(tcell.NewEventInterrupt(refreshRequest{})); err != nil {
		u.logger.Debug("refresh dropped: %v", err)
	}
}

// Close restores the terminal. It may be called more than once.
func (u *UI) Close() {
	u.closeOnce.Do(u.screen.Fini)
}

// Run activates the bar and processes events until the user confirms a
// candidate or cancels. On confirmation the bar keeps its selection and
// the chosen command is returned; the caller dismisses the screen and
// performs it through the bar. On cancel Run returns ErrCancelled.
func (u *UI) Run(ctx context.Context) (*command.Command, error) {
	if err := u.bar.Activate(ctx); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go u.interruptOnCancel(ctx, done)

	u.draw()
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return nil, ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if _, ok := ev.Data().(refreshRequest); ok {
				if err := u.bar.Refresh(ctx); err != nil {
					u.logger.Warn("refresh failed: %v", err)
				}
			}
		case *tcell.EventPaste:
			continue
		case *tcell.EventKey:
			switch handleKey(u.bar, ev, u.view.Height) {
			case outcomeCancel:
				return nil, ErrCancelled
			case outcomeConfirm:
				if cmd, ok := u.bar.Selected(); ok {
					return cmd, nil
				}
			case outcomeNone:
				continue
			}
		}
		u.draw()
	}
}

// interruptRetry is the pause between attempts to post the cancel
// interrupt while the event queue is full.
var interruptRetry = 10 * time.Millisecond

// interruptOnCancel wakes PollEvent once ctx is done. It keeps posting
// until the interrupt is queued or Run has returned.
func (u *UI) interruptOnCancel(ctx context.Context, done <-chan struct{}) {
	select {
	case <-ctx.Done():
	case <-done:
		return
	}

	ticker := time.NewTicker(interruptRetry)
	defer ticker.Stop()
	for {
		err := u.screen.PostEvent(tcell.NewEventInterrupt(nil))
		if err == nil {
			return
		}
		u.logger.Debug("cancel interrupt dropped, retrying: %v", err)
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (u *UI) draw() {
	u.screen.Clear()
	if x, y, ok := u.view.Render(u.screen, u.bar); ok {
		u.screen.ShowCursor(x, y)
	} else {
		u.screen.HideCursor()
	}
	u.screen.Show()
}
