package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of w, or fallback when w is not a
// terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// BarWidthFor sizes the progress bar to leave room for the step and label.
func BarWidthFor(w io.Writer) int {
	width := TerminalWidth(w, 0)
	if width == 0 {
		return DefaultBarWidth
	}
	bar := width - 56
	if bar < 10 {
		return 10
	}
	if bar > 40 {
		return 40
	}
	return bar
}
