package ui

import "github.com/gdamore/tcell/v2"

// Theme holds the styles used to draw the bar.
type Theme struct {
	Border   tcell.Style
	Input    tcell.Style
	Prompt   tcell.Style
	Text     tcell.Style
	Match    tcell.Style
	Dim      tcell.Style
	Shortcut tcell.Style
	Symbol   tcell.Style

	// Selected is laid over the row of the selected candidate.
	Selected tcell.Style
}

// DefaultTheme returns the theme used when none is configured.
func DefaultTheme() Theme {
	return NewTheme("yellow", "navy")
}

// NewTheme builds a theme from color names such as "yellow" or
// "#ffaf00". Unknown names fall back to the terminal default.
func NewTheme(highlight, selected string) Theme {
	base := tcell.StyleDefault
	return Theme{
		Border:   base.Foreground(tcell.ColorGray),
		Input:    base.Bold(true),
		Prompt:   base.Foreground(tcell.ColorGray),
		Text:     base,
		Match:    base.Foreground(tcell.GetColor(highlight)).Bold(true),
		Dim:      base.Dim(true),
		Shortcut: base.Foreground(tcell.ColorGray),
		Symbol:   base.Foreground(tcell.ColorTeal),
		Selected: base.Background(tcell.GetColor(selected)),
	}
}

// selectedStyle lays the Selected background over s.
func (t Theme) selectedStyle(s tcell.Style) tcell.Style {
	_, bg, _ := t.Selected.Decompose()
	return s.Background(bg)
}
