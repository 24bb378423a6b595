package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/cmdbar/internal/match"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		width += runewidth.StringWidth(g.Str())
	}
	return width
}

// Truncate shortens s to at most w cells without splitting graphemes,
// ending it with Ellipsis when anything was cut.
func Truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if Width(s) <= w {
		return s
	}
	cells := fit(layout([]span{{text: s}}), w)
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.str)
	}
	return b.String()
}

// TrimLeft drops leading graphemes of s until it fits in w cells.
func TrimLeft(s string, w int) string {
	cells := layout([]span{{text: s}})
	used := cellsWidth(cells)
	var b strings.Builder
	for _, c := range cells {
		if used <= w {
			b.WriteString(c.str)
			continue
		}
		used -= c.width
	}
	return b.String()
}

// dropLastGrapheme removes the final user-perceived character of s.
func dropLastGrapheme(s string) string {
	last := -1
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		last, _ = g.Positions()
	}
	if last < 0 {
		return s
	}
	return s[:last]
}

// dropLastWord removes trailing spaces and then the word before them.
func dropLastWord(s string) string {
	s = strings.TrimRight(s, " ")
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		return s[:i+1]
	}
	return ""
}

// span is a run of text drawn in one style, with matched rune ranges
// drawn in the hit style.
type span struct {
	text   string
	ranges []match.Range
	style  tcell.Style
	hit    tcell.Style
}

// cell is one grapheme ready to be put on a canvas.
type cell struct {
	str   string
	width int
	style tcell.Style
}

// layout splits spans into styled graphemes. A grapheme is highlighted
// when its first rune lies in a matched range.
func layout(spans []span) []cell {
	var cells []cell
	for _, sp := range spans {
		offset := 0
		g := uniseg.NewGraphemes(sp.text)
		for g.Next() {
			style := sp.style
			if match.Contains(sp.ranges, offset) {
				style = sp.hit
			}
			cells = append(cells, cell{
				str:   g.Str(),
				width: runewidth.StringWidth(g.Str()),
				style: style,
			})
			offset += len(g.Runes())
		}
	}
	return cells
}

// fit truncates cells to w columns, replacing the tail with Ellipsis
// in the style of the last kept cell.
func fit(cells []cell, w int) []cell {
	if cellsWidth(cells) <= w {
		return cells
	}
	ellipsis := runewidth.StringWidth(Ellipsis)
	if ellipsis > w {
		return nil
	}

	used := 0
	n := 0
	for n < len(cells) && used+cells[n].width+ellipsis <= w {
		used += cells[n].width
		n++
	}
	style := tcell.StyleDefault
	if n > 0 {
		style = cells[n-1].style
	} else if len(cells) > 0 {
		style = cells[0].style
	}
	out := append(cells[:n:n], cell{str: Ellipsis, width: ellipsis, style: style})
	return out
}

// put draws cells starting at x and returns the column after the last one.
func put(c Canvas, x, y int, cells []cell) int {
	for _, cl := range cells {
		if cl.width == 0 {
			continue
		}
		runes := []rune(cl.str)
		c.SetContent(x, y, runes[0], runes[1:], cl.style)
		x += cl.width
	}
	return x
}

// cellsWidth returns the total width of cells.
func cellsWidth(cells []cell) int {
	w := 0
	for _, c := range cells {
		w += c.width
	}
	return w
}
