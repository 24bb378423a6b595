// Package ui is the terminal frontend of the command bar.
//
// A UI owns a tcell screen and a palette.Bar. It draws a bordered box
// holding the input line and the ranked candidates, and translates key
// events into bar operations:
//
//	printable keys     edit the query
//	Backspace          delete the last character
//	Ctrl-W             delete the last word
//	Ctrl-U             clear the query
//	Up, Ctrl-P         previous candidate
//	Down, Ctrl-N       next candidate
//	PgUp, PgDn         move by a page
//	Enter              confirm the selection
//	Esc, Ctrl-C        cancel
//
// Drawing goes through the Canvas interface so it can be exercised
// without a terminal. Other goroutines request a catalog refresh with
// Notify; the refresh itself happens on the goroutine running Run.
package ui
