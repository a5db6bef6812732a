package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Connected
	SymbolFail     = "✗" // Failed
	SymbolPending  = "○" // Not started
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Enabled connection
	SymbolSkipped  = "⊘" // Cancelled or disabled
	SymbolWarning  = "!" // Limit or caution
)
