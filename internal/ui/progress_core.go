package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Progress bar block characters.
const (
	BarFilled = '█'
	BarEmpty  = '░'
)

// ProgressColorFunc picks the bar color for a percentage.
type ProgressColorFunc func(percent float64) lipgloss.Color

// ProgressColorProgress colors a connection bar: blue while access is being
// requested, cyan through configuration, green once the run is finishing.
func ProgressColorProgress(percent float64) lipgloss.Color {
	switch {
	case percent >= 94:
		return ColorSuccess
	case percent >= 55:
		return ColorInfo
	default:
		return ColorSecondary
	}
}

// BarConfig configures progress bar rendering.
type BarConfig struct {
	Width       int               // Width of the bar in characters
	Brackets    bool              // Whether to wrap bar in [ ]
	ColorFunc   ProgressColorFunc // Function to determine bar color
	ShowPercent bool              // Whether to append the rounded percentage
}

// ProgressBarConfig returns the config used by the connection progress line.
func ProgressBarConfig(width int) BarConfig {
	return BarConfig{
		Width:       width,
		Brackets:    true,
		ColorFunc:   ProgressColorProgress,
		ShowPercent: true,
	}
}

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// BuildBarString builds the raw bar string (without styling) from filled/empty counts.
// If brackets is true, wraps in [ ].
func BuildBarString(filledCount, emptyCount int, brackets bool) string {
	var sb strings.Builder
	sb.Grow((filledCount + emptyCount + 2) * 3)

	if brackets {
		sb.WriteRune('[')
	}
	sb.WriteString(strings.Repeat(string(BarFilled), filledCount))
	sb.WriteString(strings.Repeat(string(BarEmpty), emptyCount))
	if brackets {
		sb.WriteRune(']')
	}
	return sb.String()
}

// CalculateBarCounts returns the number of filled and empty characters for a
// bar. A partially filled cell counts as empty, so the bar is only full at 100.
func CalculateBarCounts(percent float64, width int) (filled, empty int) {
	filled = int((ClampPercent(percent) / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	empty = width - filled
	return
}

// RenderBar renders a progress bar with the given configuration.
// Percent should be 0-100.
func RenderBar(percent float64, config BarConfig) string {
	if config.Width <= 0 {
		return ""
	}

	percent = ClampPercent(percent)
	filled, empty := CalculateBarCounts(percent, config.Width)
	bar := BuildBarString(filled, empty, config.Brackets)

	if config.ColorFunc != nil {
		bar = styleFor(config.ColorFunc(percent)).Render(bar)
	}
	if config.ShowPercent {
		bar += fmt.Sprintf(" %3d%%", int(percent+0.5))
	}
	return bar
}
