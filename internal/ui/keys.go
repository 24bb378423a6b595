package ui

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cmdbar/internal/palette"
)

// outcome is the effect of a key on the bar.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeEdit
	outcomeMove
	outcomeConfirm
	outcomeCancel
)

// handleKey applies a key event to bar. page is the number of rows a
// page movement skips.
func handleKey(bar *palette.Bar, ev *tcell.EventKey, page int) outcome {
	key, r := ev.Key(), ev.Rune()

	// Some terminals report control chords as a rune with ModCtrl.
	if key == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 {
		switch unicode.ToLower(r) {
		case 'c':
			key = tcell.KeyCtrlC
		case 'n':
			key = tcell.KeyCtrlN
		case 'p':
			key = tcell.KeyCtrlP
		case 'u':
			key = tcell.KeyCtrlU
		case 'w':
			key = tcell.KeyCtrlW
		}
	}

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return outcomeCancel
	case tcell.KeyEnter:
		return outcomeConfirm
	case tcell.KeyUp, tcell.KeyCtrlP:
		return moved(bar.Move(false))
	case tcell.KeyDown, tcell.KeyCtrlN:
		return moved(bar.Move(true))
	case tcell.KeyPgUp:
		return moved(moveBy(bar, false, page))
	case tcell.KeyPgDn:
		return moved(moveBy(bar, true, page))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return edit(bar, dropLastGrapheme(bar.Input()))
	case tcell.KeyCtrlW:
		return edit(bar, dropLastWord(bar.Input()))
	case tcell.KeyCtrlU:
		return edit(bar, "")
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0 || !unicode.IsPrint(r) {
			return outcomeNone
		}
		return edit(bar, bar.Input()+string(r))
	}
	return outcomeNone
}

func edit(bar *palette.Bar, query string) outcome {
	if query == bar.Input() {
		return outcomeNone
	}
	bar.SetInput(query)
	return outcomeEdit
}

func moved(ok bool) outcome {
	if ok {
		return outcomeMove
	}
	return outcomeNone
}

// moveBy moves up to n rows, stopping at either end.
func moveBy(bar *palette.Bar, down bool, n int) bool {
	ok := false
	for i := 0; i < max(n, 1); i++ {
		if !bar.Move(down) {
			break
		}
		ok = true
	}
	return ok
}
