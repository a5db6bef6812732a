package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	// Apply styling
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
		Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	// Create the table
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// ConnectionRow is one saved connection in the list output.
type ConnectionRow struct {
	TargetID    int64
	Name        string // Empty when the target name is unknown
	Fingerprint string // Short credential fingerprint, never the credential
	Enabled     bool
	Connected   time.Time
	Updated     time.Time // Zero when never updated
}

const timeLayout = "2006-01-02 15:04"

// RenderConnectionsTable renders saved connections, newest first.
func RenderConnectionsTable(rows []ConnectionRow) string {
	if len(rows) == 0 {
		return "No communities connected\n"
	}

	mutedStyle := MutedStyle()
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var b strings.Builder
	b.WriteString(headerStyle.Render("  STATE  ID            NAME                  KEY       CONNECTED         UPDATED") + "\n")

	for _, row := range rows {
		icon := SuccessStyle().Render(SymbolComplete)
		if !row.Enabled {
			icon = mutedStyle.Render(SymbolSkipped)
		}
		name := row.Name
		if name == "" {
			name = mutedStyle.Render("-")
		}
		updated := mutedStyle.Render("-")
		if !row.Updated.IsZero() {
			updated = row.Updated.Local().Format(timeLayout)
		}

		b.WriteString("  " + padRight(icon, 7) +
			padRight(strconv.FormatInt(row.TargetID, 10), 14) +
			padRight(name, 22) +
			padRight(mutedStyle.Render(row.Fingerprint), 10) +
			padRight(row.Connected.Local().Format(timeLayout), 18) +
			updated + "\n")
	}
	return b.String()
}

// RenderTargetsTable renders the communities the user administers.
func RenderTargetsTable(targets []TargetInfo) string {
	if len(targets) == 0 {
		return "No administered communities found\n"
	}
	rows := make([][]string, len(targets))
	for i, t := range targets {
		state := ""
		if t.Connected {
			state = SymbolComplete + " connected"
		}
		rows[i] = []string{strconv.FormatInt(t.Target.ID, 10), t.Target.DisplayName(), state}
	}
	return RenderSimpleTable([]TableColumn{
		{Title: "ID", Width: 14},
		{Title: "NAME", Width: 32},
		{Title: "STATE", Width: 12},
	}, rows) + "\n"
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-visible)
}
