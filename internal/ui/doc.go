// Package ui provides the shared terminal output vocabulary for the
// vitals CLI: the color palette, status symbols, human-readable value
// formatting, and terminal detection.
//
// The full-screen dashboard keeps its own truecolor styles in
// internal/dashboard; this package covers the plain line-oriented
// output of commands like snapshot, alerts and doctor.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations, healthy values
//	ColorError     (red)    - Failures and critical values
//	ColorWarning   (yellow) - Warnings and partial samples
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timestamps
//	ColorSecondary (blue)   - In-progress indicators
//
// # Symbols
//
// Unicode symbols provide visual status indicators:
//
//	SymbolSuccess  (checkmark)  - Check passed
//	SymbolFail     (X)          - Check failed
//	SymbolPending  (circle)     - Not yet evaluated
//	SymbolProgress (half-fill)  - In progress
//	SymbolComplete (filled)     - Done (alternative)
//	SymbolSkipped  (slashed)    - Skipped
//
// # Formatting
//
// Metric values render according to their unit:
//
//	ui.HumanBytes(16.5e9)            // "15.4 GiB"
//	ui.HumanDuration(93784)          // "1d 2h"
//	ui.FormatValue(42.5, "pct")      // "42.5%"
//
// FormatValue understands every unit the sampler emits, so command
// output and notification templates agree on how a value reads.
package ui
