package ui

// Unicode symbols for status indicators, shared by the doctor report
// and the snapshot/alert command output.
const (
	SymbolSuccess  = "✓" // Check passed / delivery succeeded
	SymbolFail     = "✗" // Check failed
	SymbolPending  = "○" // Not yet evaluated
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Done (alternative to success)
	SymbolSkipped  = "⊘" // Skipped
)
