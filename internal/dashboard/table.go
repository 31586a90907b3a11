package dashboard

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// Fixed column widths; NAME absorbs whatever is left.
const (
	colWidthPID   = 7
	colWidthUser  = 10
	colWidthCPU   = 6
	colWidthMem   = 6
	colWidthRSS   = 10
	colWidthState = 5
	minNameWidth  = 12
)

// newProcessTable builds the focused process table with dashboard styling.
func newProcessTable() table.Model {
	t := table.New(
		table.WithColumns(processColumns(BreakpointCompact)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorTextSecondary)
	s.Cell = s.Cell.
		Foreground(ColorTextPrimary)
	s.Selected = s.Selected.
		Foreground(ColorTextPrimary).
		Background(ColorBorder).
		Bold(false)
	t.SetStyles(s)

	return t
}

// processColumns sizes the column set for a total terminal width.
func processColumns(width int) []table.Column {
	// Each column costs its width plus the cell padding bubbles applies.
	fixed := colWidthPID + colWidthUser + colWidthCPU + colWidthMem + colWidthRSS + colWidthState
	nameWidth := width - fixed - 16
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return []table.Column{
		{Title: "PID", Width: colWidthPID},
		{Title: "USER", Width: colWidthUser},
		{Title: "CPU%", Width: colWidthCPU},
		{Title: "MEM%", Width: colWidthMem},
		{Title: "RSS", Width: colWidthRSS},
		{Title: "S", Width: colWidthState},
		{Title: "NAME", Width: nameWidth},
	}
}

// resizeTable refits the table to the terminal after a WindowSizeMsg.
func (m *Model) resizeTable() {
	m.procTable.SetColumns(processColumns(m.width))
	h := m.tableHeight()
	m.procTable.SetHeight(h)
}

// tableHeight is the row budget left for the table after the header,
// cards, alert strip, status line and footer take theirs.
func (m Model) tableHeight() int {
	overhead := 2 // header + blank
	switch m.LayoutMode() {
	case LayoutFull:
		overhead += cardHeightFull + 1
	case LayoutCompact:
		overhead += cardHeightCompact + 1
	default:
		overhead += 6
	}
	overhead += 2 // alert strip + status
	if m.ShowFooter() {
		overhead += 1
	}
	h := m.height - overhead - 1 // table header row
	if h < 3 {
		h = 3
	}
	if h > 20 {
		h = 20
	}
	return h
}

// rebuildRows re-sorts the process list and rebuilds the table rows,
// keeping the cursor on the same pid across refreshes so a selection
// doesn't jump when CPU ordering shuffles.
func (m *Model) rebuildRows() {
	if m.snap == nil {
		return
	}

	var selectedPID int
	if p, ok := m.selectedProcess(); ok {
		selectedPID = p.PID
	}

	procs := make([]metrics.ProcessInfo, len(m.snap.Processes))
	copy(procs, m.snap.Processes)
	sortProcesses(procs, m.sortOrder)
	m.procs = procs

	rows := make([]table.Row, len(procs))
	for i, p := range procs {
		rows[i] = table.Row{
			fmt.Sprintf("%d", p.PID),
			truncate(p.User, colWidthUser),
			fmt.Sprintf("%5.1f", p.CPUPercent),
			fmt.Sprintf("%5.1f", p.MemPercent),
			ui.HumanBytes(float64(p.RSSBytes)),
			p.State,
			p.Name,
		}
	}
	m.procTable.SetRows(rows)

	if selectedPID != 0 {
		for i, p := range procs {
			if p.PID == selectedPID {
				m.procTable.SetCursor(i)
				return
			}
		}
	}
	if m.procTable.Cursor() >= len(procs) && len(procs) > 0 {
		m.procTable.SetCursor(len(procs) - 1)
	}
}

// sortProcesses orders the table rows. Usage sorts are descending,
// identity sorts ascending; pid breaks every tie so the order is stable
// across ticks.
func sortProcesses(procs []metrics.ProcessInfo, order SortOrder) {
	sort.SliceStable(procs, func(i, j int) bool {
		a, b := procs[i], procs[j]
		switch order {
		case SortByCPU:
			if a.CPUPercent != b.CPUPercent {
				return a.CPUPercent > b.CPUPercent
			}
		case SortByMem:
			if a.MemPercent != b.MemPercent {
				return a.MemPercent > b.MemPercent
			}
		case SortByPID:
			return a.PID < b.PID
		case SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.PID < b.PID
	})
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
