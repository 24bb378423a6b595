package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cmdbar/internal/command"
	"github.com/dshills/cmdbar/internal/palette"
)

type pos struct{ x, y int }

// fakeScreen records drawn cells and feeds queued events to PollEvent.
type fakeScreen struct {
	mu     sync.Mutex
	w, h   int
	cells  map[pos]string
	styles map[pos]tcell.Style
	cursor pos
	events chan tcell.Event
	finis  int

	// rejects makes the next PostEvent calls fail as if the queue were full.
	rejects int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{
		w:      w,
		h:      h,
		cells:  make(map[pos]string),
		styles: make(map[pos]tcell.Style),
		events: make(chan tcell.Event, 64),
	}
}

func (s *fakeScreen) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.cells[pos{x, y}] = string(primary) + string(combining)
	s.styles[pos{x, y}] = style
}

func (s *fakeScreen) Size() (int, int) { return s.w, s.h }

func (s *fakeScreen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = make(map[pos]string)
	s.styles = make(map[pos]tcell.Style)
}

func (s *fakeScreen) Show()               {}
func (s *fakeScreen) Sync()               {}
func (s *fakeScreen) HideCursor()         { s.cursor = pos{-1, -1} }
func (s *fakeScreen) ShowCursor(x, y int) { s.cursor = pos{x, y} }
func (s *fakeScreen) Fini()               { s.finis++ }

func (s *fakeScreen) PollEvent() tcell.Event {
	return <-s.events
}

func (s *fakeScreen) PostEvent(ev tcell.Event) error {
	s.mu.Lock()
	if s.rejects > 0 {
		s.rejects--
		s.mu.Unlock()
		return errors.New("event queue full")
	}
	s.mu.Unlock()
	select {
	case s.events <- ev:
		return nil
	default:
		return errors.New("event queue full")
	}
}

// line returns row y as text, blank cells as spaces.
func (s *fakeScreen) line(y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for x := 0; x < s.w; x++ {
		if c, ok := s.cells[pos{x, y}]; ok {
			b.WriteString(c)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// find returns the column of the first cell in row y holding str.
func (s *fakeScreen) find(y int, str string) int {
	for x := 0; x < s.w; x++ {
		if s.cells[pos{x, y}] == str {
			return x
		}
	}
	return -1
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func noop(context.Context) error { return nil }

func cmd(shortcut string, path ...string) *command.Command {
	return command.New(command.KindCommand, path, command.ActionFunc(noop)).WithShortcut(shortcut)
}

func sampleCatalog() []*command.Command {
	return []*command.Command{
		cmd("Ctrl+O", "File", "Open…"),
		cmd("", "File", "Save"),
		cmd("", "Edit", "Find", "Find…"),
	}
}

func activeBar(t *testing.T, cmds ...*command.Command) *palette.Bar {
	t.Helper()
	bar := palette.New(palette.Static(cmds...))
	if err := bar.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	return bar
}

func TestWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"日本", 4},
		{"é", 1},
	}
	for _, tt := range tests {
		if got := Width(tt.in); got != tt.want {
			t.Errorf("Width(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abc", 3, "abc"},
		{"hello world", 6, "hello…"},
		{"日本語", 5, "日本…"},
		{"日本語", 4, "日…"},
		{"cafés", 4, "café…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.w); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
}

func TestTrimLeft(t *testing.T) {
	if got := TrimLeft("abcdef", 3); got != "def" {
		t.Errorf("TrimLeft() = %q, want %q", got, "def")
	}
	if got := TrimLeft("abc", 10); got != "abc" {
		t.Errorf("TrimLeft() = %q, want %q", got, "abc")
	}
}

func TestDropLast(t *testing.T) {
	if got := dropLastGrapheme("café"); got != "caf" {
		t.Errorf("dropLastGrapheme() = %q, want %q", got, "caf")
	}
	if got := dropLastGrapheme(""); got != "" {
		t.Errorf("dropLastGrapheme(\"\") = %q", got)
	}
	if got := dropLastWord("open file  "); got != "open " {
		t.Errorf("dropLastWord() = %q, want %q", got, "open ")
	}
	if got := dropLastWord("open"); got != "" {
		t.Errorf("dropLastWord() = %q, want empty", got)
	}
}

func TestView_Render(t *testing.T) {
	bar := activeBar(t, sampleCatalog()...)
	bar.SetInput("fi")

	screen := newFakeScreen(60, 12)
	v := NewView(80, 5)
	cx, cy, ok := v.Render(screen, bar)
	if !ok {
		t.Fatal("Render() ok = false")
	}

	if got := screen.line(1); !strings.Contains(got, "> fi") || !strings.Contains(got, "3/3") {
		t.Errorf("input line = %q", got)
	}
	if cy != 1 || cx != 1+1+len("> fi") {
		t.Errorf("cursor = (%d, %d), want (%d, 1)", cx, cy, 1+1+len("> fi"))
	}

	// Title hit ranks first; breadcrumb-only hits follow in catalog order.
	rows := []string{screen.line(3), screen.line(4), screen.line(5)}
	wants := []string{"▸ Find…  Edit › Find", "▸ Open…  File", "▸ Save  File"}
	for i, want := range wants {
		if !strings.Contains(rows[i], want) {
			t.Errorf("row %d = %q, want it to contain %q", i, rows[i], want)
		}
	}
	if !strings.Contains(rows[1], "Ctrl+O") {
		t.Errorf("row 1 = %q, want shortcut", rows[1])
	}

	theme := v.Theme
	_, selBg, _ := theme.Selected.Decompose()
	matchFg, _, _ := theme.Match.Decompose()

	x := screen.find(3, "F")
	fg, bg, _ := screen.styles[pos{x, 3}].Decompose()
	if fg != matchFg || bg != selBg {
		t.Errorf("selected match cell fg=%v bg=%v, want fg=%v bg=%v", fg, bg, matchFg, selBg)
	}

	x = screen.find(4, "O")
	if _, bg, _ := screen.styles[pos{x, 4}].Decompose(); bg == selBg {
		t.Error("unselected row drawn with selection background")
	}
}

func TestView_NoMatches(t *testing.T) {
	bar := activeBar(t, sampleCatalog()...)
	bar.SetInput("zzz")

	screen := newFakeScreen(60, 12)
	if _, _, ok := NewView(80, 5).Render(screen, bar); !ok {
		t.Fatal("Render() ok = false")
	}
	if got := screen.line(3); !strings.Contains(got, "No matching commands") {
		t.Errorf("row = %q", got)
	}
}

func TestView_TooSmall(t *testing.T) {
	bar := activeBar(t, sampleCatalog()...)
	if _, _, ok := NewView(80, 5).Render(newFakeScreen(10, 3), bar); ok {
		t.Error("Render() ok = true on a tiny canvas")
	}
}

func TestView_Truncates(t *testing.T) {
	long := strings.Repeat("x", 100)
	bar := activeBar(t, cmd("", "Menu", long))

	screen := newFakeScreen(30, 10)
	if _, _, ok := NewView(30, 5).Render(screen, bar); !ok {
		t.Fatal("Render() ok = false")
	}
	row := screen.line(3)
	if !strings.Contains(row, "…") {
		t.Errorf("row = %q, want ellipsis", row)
	}
	if !strings.HasSuffix(row, "│") {
		t.Errorf("row = %q, border overwritten", row)
	}
}

func TestView_Scroll(t *testing.T) {
	var cmds []*command.Command
	for _, name := range []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		cmds = append(cmds, cmd("", name))
	}
	bar := activeBar(t, cmds...)
	screen := newFakeScreen(40, 20)
	v := NewView(40, 3)

	for i := 0; i < 5; i++ {
		bar.Move(true)
	}
	v.Render(screen, bar)
	if v.offset != 3 {
		t.Errorf("offset = %d, want 3", v.offset)
	}
	if got := screen.line(5); !strings.Contains(got, "a5") {
		t.Errorf("last visible row = %q, want a5", got)
	}

	for i := 0; i < 4; i++ {
		bar.Move(false)
	}
	v.Render(screen, bar)
	if v.offset != 1 {
		t.Errorf("offset = %d, want 1", v.offset)
	}

	bar.SetInput("a7")
	v.Render(screen, bar)
	if v.offset != 0 {
		t.Errorf("offset after narrowing = %d, want 0", v.offset)
	}
}

func TestHandleKey(t *testing.T) {
	bar := activeBar(t, sampleCatalog()...)

	steps := []struct {
		ev        *tcell.EventKey
		want      outcome
		wantInput string
		wantIndex int
	}{
		{runeKey('i'), outcomeEdit, "i", 0},
		{runeKey('n'), outcomeEdit, "in", 0},
		{key(tcell.KeyBackspace2), outcomeEdit, "i", 0},
		{key(tcell.KeyDown), outcomeMove, "i", 1},
		{key(tcell.KeyCtrlP), outcomeMove, "i", 0},
		{key(tcell.KeyUp), outcomeNone, "i", 0},
		{key(tcell.KeyCtrlU), outcomeEdit, "", 0},
		{key(tcell.KeyCtrlU), outcomeNone, "", 0},
		{key(tcell.KeyPgDn), outcomeMove, "", 2},
		{key(tcell.KeyPgDn), outcomeNone, "", 2},
		{tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModCtrl), outcomeNone, "", 2},
		{tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModCtrl), outcomeMove, "", 1},
		{key(tcell.KeyEnter), outcomeConfirm, "", 1},
		{key(tcell.KeyEscape), outcomeCancel, "", 1},
	}

	for i, s := range steps {
		if got := handleKey(bar, s.ev, 5); got != s.want {
			t.Errorf("step %d: outcome = %v, want %v", i, got, s.want)
		}
		if bar.Input() != s.wantInput {
			t.Errorf("step %d: input = %q, want %q", i, bar.Input(), s.wantInput)
		}
		if bar.SelectedIndex() != s.wantIndex {
			t.Errorf("step %d: selected = %d, want %d", i, bar.SelectedIndex(), s.wantIndex)
		}
	}
}

func TestUI_RunConfirm(t *testing.T) {
	cmds := sampleCatalog()
	screen := newFakeScreen(60, 12)
	bar := palette.New(palette.Static(cmds...))
	u := New(screen, bar)

	for _, ev := range []tcell.Event{runeKey('f'), key(tcell.KeyDown), key(tcell.KeyEnter)} {
		if err := screen.PostEvent(ev); err != nil {
			t.Fatal(err)
		}
	}

	got, err := u.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// "f": Find… ranks first, then Open… (breadcrumb hit).
	if got != cmds[0] {
		t.Errorf("Run() = %v, want %v", got, cmds[0])
	}
	if sel, _ := bar.Selected(); sel != cmds[0] {
		t.Error("bar lost its selection after Run")
	}

	u.Close()
	u.Close()
	if screen.finis != 1 {
		t.Errorf("Fini called %d times, want 1", screen.finis)
	}
}

func TestUI_RunCancel(t *testing.T) {
	screen := newFakeScreen(60, 12)
	u := New(screen, palette.New(palette.Static(sampleCatalog()...)))
	_ = screen.PostEvent(runeKey('x'))
	_ = screen.PostEvent(key(tcell.KeyEscape))

	if _, err := u.Run(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run() error = %v, want ErrCancelled", err)
	}
}

func TestUI_EnterWithoutSelection(t *testing.T) {
	screen := newFakeScreen(60, 12)
	u := New(screen, palette.New(palette.Static(sampleCatalog()...)))
	for _, ev := range []tcell.Event{runeKey('z'), key(tcell.KeyEnter), key(tcell.KeyCtrlC)} {
		_ = screen.PostEvent(ev)
	}

	if _, err := u.Run(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run() error = %v, want ErrCancelled", err)
	}
}

func TestUI_Notify(t *testing.T) {
	alpha, beta := cmd("", "Alpha"), cmd("", "Beta")
	calls := 0
	supplier := palette.SupplierFunc(func(context.Context) ([]*command.Command, error) {
		calls++
		return []*command.Command{beta, alpha}, nil
	})

	screen := newFakeScreen(60, 12)
	u := New(screen, palette.New(supplier))

	_ = screen.PostEvent(runeKey('a'))
	u.Notify()
	_ = screen.PostEvent(key(tcell.KeyEnter))

	got, err := u.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("catalog captured %d times, want 2", calls)
	}
	// The refresh keeps the query, so the title-prefix match stays on top.
	if got != alpha {
		t.Errorf("Run() = %v, want Alpha", got)
	}
}

func TestUI_RunContextCancelled(t *testing.T) {
	screen := newFakeScreen(60, 12)
	u := New(screen, palette.New(palette.Static(sampleCatalog()...)))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := u.Run(ctx)
		errc <- err
	}()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestUI_RunCancelledWhileQueueFull(t *testing.T) {
	screen := newFakeScreen(60, 12)
	screen.rejects = 3
	u := New(screen, palette.New(palette.Static(sampleCatalog()...)))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := u.Run(ctx)
		errc <- err
	}()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel with a full event queue")
	}

	screen.mu.Lock()
	defer screen.mu.Unlock()
	if screen.rejects != 0 {
		t.Errorf("rejects = %d, want every rejected post retried", screen.rejects)
	}
}

func TestRowText(t *testing.T) {
	bar := activeBar(t, sampleCatalog()...)
	bar.SetInput("fi")
	cands := bar.Candidates()

	if got, want := RowText(cands[0], "[", "]"), "[Fi]nd…  (Edit › [Fi]nd)"; got != want {
		t.Errorf("RowText() = %q, want %q", got, want)
	}
	if got, want := RowText(cands[1], "[", "]"), "Open…  ([Fi]le)"; got != want {
		t.Errorf("RowText() = %q, want %q", got, want)
	}
}
