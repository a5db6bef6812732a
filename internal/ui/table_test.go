package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/rileyhilliard/hublink/internal/remote"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 20},
		{Title: "Status", Width: 10},
	}
	rows := []table.Row{
		{"item1", "ok"},
		{"item2", "fail"},
	}

	tbl := NewTable(columns, rows)
	assert.Len(t, tbl.Rows(), 2)
	assert.Len(t, tbl.Columns(), 2)
}

func TestRenderSimpleTable(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "A", Width: 3}}, nil))

	out := RenderSimpleTable([]TableColumn{{Title: "ID", Width: 6}}, [][]string{{"42"}})
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "42")
}

func TestRenderConnectionsTable(t *testing.T) {
	assert.Equal(t, "No communities connected\n", RenderConnectionsTable(nil))

	connected := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	out := RenderConnectionsTable([]ConnectionRow{
		{TargetID: 42, Name: "Coffee Lovers", Fingerprint: "a1b2c3d4", Enabled: true, Connected: connected},
		{TargetID: 7, Fingerprint: "deadbeef", Enabled: false, Connected: connected, Updated: connected.Add(time.Hour)},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "Coffee Lovers")
	assert.Contains(t, out, "a1b2c3d4")
	assert.Contains(t, out, "2025-03-01 12:00")
	assert.Contains(t, out, "2025-03-01 13:00")
	assert.Contains(t, out, SymbolComplete)
	assert.Contains(t, out, SymbolSkipped)
}

func TestRenderTargetsTable(t *testing.T) {
	assert.Equal(t, "No administered communities found\n", RenderTargetsTable(nil))

	out := RenderTargetsTable([]TargetInfo{
		{Target: remote.Target{ID: 42, Name: "Coffee Lovers"}, Connected: true},
		{Target: remote.Target{ID: 43}},
	})
	assert.Contains(t, out, "Coffee Lovers")
	assert.Contains(t, out, "community 43")
	assert.Contains(t, out, "connected")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef ", padRight("abcdef", 3))
}
