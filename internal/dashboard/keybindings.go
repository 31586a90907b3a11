package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// SortOrder defines how the process table is sorted.
type SortOrder int

const (
	SortByCPU SortOrder = iota
	SortByMem
	SortByPID
	SortByName
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByCPU:
		return "cpu"
	case SortByMem:
		return "mem"
	case SortByPID:
		return "pid"
	case SortByName:
		return "name"
	default:
		return "cpu"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return SortOrder((int(s) + 1) % 4)
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewDetail
	ViewAlerts
)

// keyMap holds every binding the dashboard responds to. Help text on the
// bindings feeds both the footer and the help overlay.
type keyMap struct {
	Quit     key.Binding
	Refresh  key.Binding
	Sort     key.Binding
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Select   key.Binding
	Back     key.Binding
	Kill     key.Binding
	KillHard key.Binding
	NiceUp   key.Binding
	NiceDown key.Binding
	Alerts   key.Binding
	Export   key.Binding
	Help     key.Binding
	Confirm  key.Binding
	Deny     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Kill: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "terminate"),
		),
		KillHard: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "kill -9"),
		),
		NiceUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "nice +1"),
		),
		NiceDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "nice -1"),
		),
		Alerts: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "alerts"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

// handleKey dispatches a key press. It returns true when the key was
// consumed; anything else falls through to Update.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	// A pending confirmation swallows every key except its answers.
	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			req := *m.confirm
			m.confirm = nil
			return true, killCmd(req)
		case key.Matches(msg, m.keys.Deny):
			m.confirm = nil
			return true, nil
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return true, nil
		}
		return true, nil
	}

	// Help toggle takes priority; while the overlay is up, any key
	// closes it.
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, nil

	case key.Matches(msg, m.keys.Refresh):
		m.provider.Refresh()
		return true, nil

	case key.Matches(msg, m.keys.Export):
		return true, m.exportCmd()

	case key.Matches(msg, m.keys.Alerts):
		if m.viewMode == ViewAlerts {
			m.viewMode = ViewDashboard
		} else {
			m.viewMode = ViewAlerts
			m.alertCursor = 0
		}
		return true, nil

	case key.Matches(msg, m.keys.Back):
		switch {
		case m.viewMode != ViewDashboard:
			m.viewMode = ViewDashboard
		case m.status.text != "":
			m.status = statusMessage{}
		}
		return true, nil
	}

	switch m.viewMode {
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewAlerts:
		return m.handleAlertsKey(msg)
	}
	return false, nil
}

// handleDashboardKey handles keys that act on the process table.
func (m *Model) handleDashboardKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.procTable.MoveUp(1)
		return true, nil

	case key.Matches(msg, m.keys.Down):
		m.procTable.MoveDown(1)
		return true, nil

	case key.Matches(msg, m.keys.Top):
		m.procTable.GotoTop()
		return true, nil

	case key.Matches(msg, m.keys.Bottom):
		m.procTable.GotoBottom()
		return true, nil

	case key.Matches(msg, m.keys.Sort):
		m.sortOrder = m.sortOrder.Next()
		m.rebuildRows()
		return true, nil

	case key.Matches(msg, m.keys.Select):
		if p, ok := m.selectedProcess(); ok {
			m.detailPID = p.PID
			m.viewMode = ViewDetail
		}
		return true, nil

	case key.Matches(msg, m.keys.Kill):
		if p, ok := m.selectedProcess(); ok {
			m.confirm = &killRequest{pid: p.PID, name: p.Name}
		}
		return true, nil

	case key.Matches(msg, m.keys.KillHard):
		if p, ok := m.selectedProcess(); ok {
			m.confirm = &killRequest{pid: p.PID, name: p.Name, force: true}
		}
		return true, nil

	case key.Matches(msg, m.keys.NiceUp):
		if p, ok := m.selectedProcess(); ok {
			return true, reniceCmd(p.PID, 1)
		}
		return true, nil

	case key.Matches(msg, m.keys.NiceDown):
		if p, ok := m.selectedProcess(); ok {
			return true, reniceCmd(p.PID, -1)
		}
		return true, nil
	}
	return false, nil
}

// handleDetailKey handles keys that act on the pinned process.
func (m *Model) handleDetailKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	p, alive := m.detailProcess()
	switch {
	case key.Matches(msg, m.keys.Kill):
		if alive {
			m.confirm = &killRequest{pid: p.PID, name: p.Name}
		}
		return true, nil

	case key.Matches(msg, m.keys.KillHard):
		if alive {
			m.confirm = &killRequest{pid: p.PID, name: p.Name, force: true}
		}
		return true, nil

	case key.Matches(msg, m.keys.NiceUp):
		if alive {
			return true, reniceCmd(p.PID, 1)
		}
		return true, nil

	case key.Matches(msg, m.keys.NiceDown):
		if alive {
			return true, reniceCmd(p.PID, -1)
		}
		return true, nil
	}
	return false, nil
}

// handleAlertsKey handles selection and acknowledgement in the alerts
// view.
func (m *Model) handleAlertsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	active := m.provider.ActiveAlerts()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.alertCursor > 0 {
			m.alertCursor--
		}
		return true, nil

	case key.Matches(msg, m.keys.Down):
		if m.alertCursor < len(active)-1 {
			m.alertCursor++
		}
		return true, nil

	case key.Matches(msg, m.keys.Select):
		if m.alertCursor >= 0 && m.alertCursor < len(active) {
			return true, m.ackCmd(active[m.alertCursor])
		}
		return true, nil
	}
	return false, nil
}
