package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // e.g. "v0.3.0"
	Tagline string // Optional
	Detail  string // Optional muted line, such as the API endpoint
}

// HeaderWidth is the width of the header divider.
const HeaderWidth = 44

// RenderHeader renders the branded header used by version and connect.
func RenderHeader(info HeaderInfo) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("hublink"))
	if info.Version != "" {
		b.WriteString(" " + styleFor(ColorInfo).Render(info.Version))
	}
	b.WriteString("\n")

	if info.Tagline != "" {
		b.WriteString(styleFor(ColorSecondary).Render(info.Tagline) + "\n")
	}
	if info.Detail != "" {
		b.WriteString(MutedStyle().Render(info.Detail) + "\n")
	}

	b.WriteString(MutedStyle().Render(strings.Repeat("━", HeaderWidth)) + "\n")
	return b.String()
}
