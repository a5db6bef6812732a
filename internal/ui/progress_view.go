package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/hublink/internal/progress"
)

// DefaultBarWidth is the bar width used when the terminal width is unknown.
const DefaultBarWidth = 24

// ProgressView draws animator frames. On a terminal it redraws one line in
// place every frame. Otherwise it prints a line each time the visible step
// changes and once more at 100%.
type ProgressView struct {
	mu       sync.Mutex
	out      io.Writer
	animated bool
	barWidth int

	drawnWidth int
	lastStep   progress.Step
	finished   bool
	closed     bool
}

// NewProgressView creates a view writing to out.
func NewProgressView(out io.Writer, animated bool) *ProgressView {
	return &ProgressView{
		out:      out,
		animated: animated,
		barWidth: DefaultBarWidth,
	}
}

// SetBarWidth changes the bar width. Values below 1 are ignored.
func (v *ProgressView) SetBarWidth(w int) {
	if w < 1 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.barWidth = w
}

// Begin readies the view for a new run after Clear.
func (v *ProgressView) Begin() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = false
}

// Render draws one frame. Frames arriving after Clear and before the next
// Begin are dropped.
func (v *ProgressView) Render(st progress.State) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}

	line := FormatProgressLine(st, v.barWidth)
	if v.animated {
		v.redrawLocked(line)
		return
	}

	done := st.Rounded() >= 100
	if st.Step == v.lastStep && !(done && !v.finished) {
		return
	}
	v.lastStep = st.Step
	v.finished = v.finished || done
	fmt.Fprintln(v.out, line)
}

// Clear erases the animated line and forgets plain-mode state. The view stays
// silent until Begin.
func (v *ProgressView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.animated && v.drawnWidth > 0 {
		fmt.Fprint(v.out, "\r"+strings.Repeat(" ", v.drawnWidth)+"\r")
	}
	v.drawnWidth = 0
	v.lastStep = 0
	v.finished = false
	v.closed = true
}

func (v *ProgressView) redrawLocked(line string) {
	w := lipgloss.Width(line)
	pad := ""
	if v.drawnWidth > w {
		pad = strings.Repeat(" ", v.drawnWidth-w)
	}
	fmt.Fprint(v.out, "\r"+line+pad)
	v.drawnWidth = w
}

// FormatProgressLine renders a state as
// "◐ Step 2/4  Connecting chat bot…  [██████░░░░]  55%".
func FormatProgressLine(st progress.State, barWidth int) string {
	symbol := styleFor(ColorSecondary).Render(SymbolProgress)
	if st.Rounded() >= 100 {
		symbol = SuccessStyle().Render(SymbolSuccess)
	}
	step := MutedStyle().Render(fmt.Sprintf("Step %d/%d", int(st.Step), len(progress.Steps)))
	bar := RenderBar(st.Percent, ProgressBarConfig(barWidth))
	return fmt.Sprintf("%s %s  %s  %s", symbol, step, st.Label, bar)
}
