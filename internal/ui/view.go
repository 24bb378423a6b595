package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cmdbar/internal/match"
	"github.com/dshills/cmdbar/internal/palette"
)

// Canvas is the drawing surface. tcell.Screen satisfies it.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// pathSeparator joins breadcrumb segments.
const pathSeparator = " › "

// minWidth is the narrowest box that still shows a usable row.
const minWidth = 20

// View lays out the bar inside a canvas.
type View struct {
	// Width is the preferred box width including the border.
	Width int

	// Height is the maximum number of candidate rows.
	Height int

	Prompt string
	Theme  Theme

	// offset is the index of the first visible candidate.
	offset int
}

// NewView creates a view with the given box size.
func NewView(width, height int) *View {
	return &View{
		Width:  width,
		Height: height,
		Prompt: "> ",
		Theme:  DefaultTheme(),
	}
}

// box is the rectangle occupied by the bar.
type box struct {
	x, y, w, rows int
}

// inner returns the first column and the width inside the border.
func (b box) inner() (int, int) {
	return b.x + 1, b.w - 2
}

// geometry centers the box horizontally at the top of the canvas.
func (v *View) geometry(c Canvas, candidates int) (box, bool) {
	sw, sh := c.Size()
	w := min(v.Width, sw)
	if w < minWidth || sh < 5 {
		return box{}, false
	}
	rows := min(max(candidates, 1), max(v.Height, 1), sh-4)
	return box{x: (sw - w) / 2, y: 0, w: w, rows: rows}, true
}

// scroll keeps the selected index inside the visible window.
func (v *View) scroll(selected, rows, total int) {
	if selected < 0 {
		v.offset = 0
		return
	}
	if selected < v.offset {
		v.offset = selected
	}
	if selected >= v.offset+rows {
		v.offset = selected - rows + 1
	}
	v.offset = max(0, min(v.offset, total-rows))
}

// Render draws the bar and returns the cursor position. ok is false
// when the canvas is too small to draw anything.
func (v *View) Render(c Canvas, bar *palette.Bar) (cx, cy int, ok bool) {
	candidates := bar.Candidates()
	b, ok := v.geometry(c, len(candidates))
	if !ok {
		return 0, 0, false
	}
	v.scroll(bar.SelectedIndex(), b.rows, len(candidates))

	v.frame(c, b)
	cx = v.input(c, b, bar)

	x, w := b.inner()
	if len(candidates) == 0 {
		msg := "No matching commands"
		if len(bar.Commands()) == 0 {
			msg = "No commands"
		}
		v.fill(c, x, b.y+3, w, v.Theme.Text)
		put(c, x+1, b.y+3, fit(layout([]span{{text: msg, style: v.Theme.Dim}}), w-2))
		return cx, b.y + 1, true
	}

	selected := bar.SelectedIndex()
	for i := 0; i < b.rows; i++ {
		idx := v.offset + i
		y := b.y + 3 + i
		if idx >= len(candidates) {
			v.fill(c, x, y, w, v.Theme.Text)
			continue
		}
		v.row(c, x, y, w, candidates[idx], idx == selected)
	}
	return cx, b.y + 1, true
}

// frame draws the border and the separator under the input line.
func (v *View) frame(c Canvas, b box) {
	style := v.Theme.Border
	bottom := b.y + 3 + b.rows
	right := b.x + b.w - 1

	for x := b.x + 1; x < right; x++ {
		c.SetContent(x, b.y, tcell.RuneHLine, nil, style)
		c.SetContent(x, b.y+2, tcell.RuneHLine, nil, style)
		c.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}
	for y := b.y + 1; y < bottom; y++ {
		c.SetContent(b.x, y, tcell.RuneVLine, nil, style)
		c.SetContent(right, y, tcell.RuneVLine, nil, style)
	}
	c.SetContent(b.x, b.y, tcell.RuneULCorner, nil, style)
	c.SetContent(right, b.y, tcell.RuneURCorner, nil, style)
	c.SetContent(b.x, b.y+2, tcell.RuneLTee, nil, style)
	c.SetContent(right, b.y+2, tcell.RuneRTee, nil, style)
	c.SetContent(b.x, bottom, tcell.RuneLLCorner, nil, style)
	c.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)
}

// input draws the prompt, the query and the candidate count. It returns
// the cursor column.
func (v *View) input(c Canvas, b box, bar *palette.Bar) int {
	x, w := b.inner()
	y := b.y + 1
	v.fill(c, x, y, w, v.Theme.Input)

	count := fmt.Sprintf("%d/%d", len(bar.Candidates()), len(bar.Commands()))
	countW := Width(count)
	prompt := layout([]span{{text: v.Prompt, style: v.Theme.Prompt}})

	// One cell of padding on each side plus one for the cursor.
	avail := w - 3 - cellsWidth(prompt)
	if avail > countW+1 {
		put(c, x+w-1-countW, y, layout([]span{{text: count, style: v.Theme.Dim}}))
		avail -= countW + 1
	}

	query := TrimLeft(bar.Input(), max(avail, 0))
	end := put(c, x+1, y, prompt)
	return put(c, end, y, layout([]span{{text: query, style: v.Theme.Input}}))
}

// row draws one candidate: kind symbol, title, breadcrumb and shortcut.
func (v *View) row(c Canvas, x, y, w int, cand match.Candidate, selected bool) {
	t := v.Theme
	style := func(s tcell.Style) tcell.Style {
		if selected {
			return t.selectedStyle(s)
		}
		return s
	}
	v.fill(c, x, y, w, style(t.Text))

	cmd := cand.Command
	avail := w - 2
	if shortcut := cmd.Shortcut; shortcut != "" && Width(shortcut)+minWidth/2 < avail {
		sc := layout([]span{{text: shortcut, style: style(t.Shortcut)}})
		put(c, x+w-1-cellsWidth(sc), y, sc)
		avail -= cellsWidth(sc) + 2
	}

	spans := []span{{text: string(cmd.Kind.Symbol()) + " ", style: style(t.Symbol)}}
	spans = append(spans, segmentSpans(cand.Segments, style(t.Text), style(t.Dim), style(t.Match))...)
	put(c, x+1, y, fit(layout(spans), avail))
}

// segmentSpans orders the matched segments for display: the title,
// then the breadcrumb from the outermost segment inward.
func segmentSpans(segs []match.Segment, text, dim, hit tcell.Style) []span {
	if len(segs) == 0 {
		return nil
	}
	spans := []span{{text: segs[0].Text, ranges: segs[0].Ranges, style: text, hit: hit}}
	if len(segs) == 1 {
		return spans
	}
	spans = append(spans, span{text: "  ", style: dim})
	for i := len(segs) - 1; i >= 1; i-- {
		spans = append(spans, span{text: segs[i].Text, ranges: segs[i].Ranges, style: dim, hit: hit})
		if i > 1 {
			spans = append(spans, span{text: pathSeparator, style: dim})
		}
	}
	return spans
}

// fill paints w blank cells starting at x.
func (v *View) fill(c Canvas, x, y, w int, style tcell.Style) {
	for i := 0; i < w; i++ {
		c.SetContent(x+i, y, ' ', nil, style)
	}
}

// RowText renders a candidate as plain text, marking matched ranges
// with open and close.
func RowText(cand match.Candidate, open, close string) string {
	segs := cand.Segments
	if len(segs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(match.Highlight(segs[0], open, close))
	if len(segs) > 1 {
		parts := make([]string, 0, len(segs)-1)
		for i := len(segs) - 1; i >= 1; i-- {
			parts = append(parts, match.Highlight(segs[i], open, close))
		}
		b.WriteString("  (")
		b.WriteString(strings.Join(parts, pathSeparator))
		b.WriteString(")")
	}
	return b.String()
}
