package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

// Braille scan pattern
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows an indeterminate wait, such as fetching the target list.
// When not animated it prints only the final line.
type Spinner struct {
	mu        sync.Mutex
	out       io.Writer
	animated  bool
	label     string
	state     SpinnerState
	frame     int
	startTime time.Time
	drawn     int
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, label string, animated bool) *Spinner {
	return &Spinner{out: out, label: label, animated: animated}
}

// Start begins the animation. It is a no-op while running.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	if !s.animated {
		s.mu.Unlock()
		return
	}
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	stop, done := s.stopChan, s.doneChan
	s.renderLocked()
	s.mu.Unlock()

	go s.animate(stop, done)
}

// Success stops the spinner with a check mark.
func (s *Spinner) Success() {
	s.finish(SpinnerSuccess)
}

// Fail stops the spinner with a cross.
func (s *Spinner) Fail() {
	s.finish(SpinnerFailed)
}

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetLabel updates the label shown next to the spinner.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

func (s *Spinner) finish(state SpinnerState) {
	s.mu.Lock()
	if s.state != SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopChan, s.doneChan
	s.stopChan, s.doneChan = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.renderFinalLocked()
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.renderLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) renderLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := fmt.Sprintf("%s %s...", lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]), s.label)
	s.writeLineLocked(line, false)
}

func (s *Spinner) renderFinalLocked() {
	symbol := ErrorStyle().Render(SymbolFail)
	if s.state == SpinnerSuccess {
		symbol = SuccessStyle().Render(SymbolSuccess)
	}
	timing := MutedStyle().Render(formatDuration(time.Since(s.startTime)))
	s.writeLineLocked(fmt.Sprintf("%s %s %s", symbol, s.label, timing), true)
}

func (s *Spinner) writeLineLocked(line string, final bool) {
	w := lipgloss.Width(line)
	if s.animated {
		pad := ""
		if s.drawn > w {
			pad = strings.Repeat(" ", s.drawn-w)
		}
		fmt.Fprint(s.out, "\r"+line+pad)
	} else if !final {
		return
	} else {
		fmt.Fprint(s.out, line)
	}
	s.drawn = w
	if final {
		fmt.Fprintln(s.out)
		s.drawn = 0
	}
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
