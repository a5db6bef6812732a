package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication. ANSI codes keep the palette
// readable on both light and dark terminals.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
	ColorAccent    lipgloss.Color = "5" // Magenta
)

// GradientColors is the spinner cycle.
var GradientColors = []lipgloss.Color{ColorAccent, ColorSecondary, ColorInfo, ColorSuccess}

// Color modes accepted by ConfigureColors.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ConfigureColors sets the global color profile. Auto detects the profile of
// w, which honors NO_COLOR and CLICOLOR_FORCE.
func ConfigureColors(mode string, w io.Writer) {
	switch strings.ToLower(mode) {
	case ColorNever:
		DisableColors()
	case ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
	default:
		lipgloss.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	}
}

// DisableColors switches to monochrome output (--no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsEnabled reports whether styled output will carry color codes.
func ColorsEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}

func styleFor(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// SuccessStyle renders positive outcomes.
func SuccessStyle() lipgloss.Style { return styleFor(ColorSuccess) }

// ErrorStyle renders failures.
func ErrorStyle() lipgloss.Style { return styleFor(ColorError) }

// WarningStyle renders limits and cautions.
func WarningStyle() lipgloss.Style { return styleFor(ColorWarning) }

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style { return styleFor(ColorMuted) }

// TitleStyle renders headings.
func TitleStyle() lipgloss.Style { return styleFor(ColorPrimary).Bold(true) }
