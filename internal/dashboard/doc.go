// Package dashboard implements the full-screen TUI for live host metrics.
//
// The dashboard renders the collector core's published state: gauge cards
// with sparkline history for CPU, memory, disk and network, a sortable
// process table, an alert strip, and overlays for process detail, alert
// management and keyboard help.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm
// Architecture (Model-Update-View pattern):
//
//   - Model: holds display state (view mode, selection, layout, overlays)
//   - Update: processes messages (keystrokes, redraw ticks, command results)
//   - View: renders the current state to a string for display
//
// The model never samples anything itself. The collector core runs its
// own tick loop on a separate goroutine; the dashboard only calls the
// core's non-blocking read API (Snapshot, Values, ActiveAlerts) and its
// Refresh hint. A redraw tick fires once per second independently of the
// collection interval, so a slow sample never freezes the display — the
// previous snapshot simply stays on screen with its age in the header.
//
// # Message Flow
//
//  1. redrawMsg fires every second
//  2. Update pulls the latest snapshot from the core and rebuilds the
//     process table rows
//  3. View re-renders cards, table and alert strip from that state
//  4. Command results (kill, renice, export, acknowledge) arrive as
//     one-shot messages and surface in the status line
//
// # Layout Modes
//
// The dashboard adapts to terminal width with three layout modes:
//
//	LayoutMinimal (<80 cols)  - single-line gauges, no graphs
//	LayoutCompact (80-119)    - 2x2 cards with single-row sparklines
//	LayoutFull    (120+)      - one card row with two-row braille graphs
//
// # Keyboard Shortcuts
//
// Bindings are defined in keybindings.go using bubbles/key:
//
//	q, Ctrl+C   - Quit
//	r           - Request an immediate collection tick
//	s           - Cycle process sort (cpu, mem, pid, name)
//	j/k, ↑/↓    - Move process selection
//	Enter       - Process detail overlay
//	x / X       - Terminate (SIGTERM) / kill (SIGKILL) with confirmation
//	+ / -       - Renice the selected process (detail view)
//	a           - Alert view (list episodes, acknowledge)
//	e           - Export snapshot and history to a timestamped JSON file
//	?           - Toggle help overlay
//	Esc         - Close overlay / back
package dashboard
