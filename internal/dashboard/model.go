package dashboard

import (
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/core"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/ledger"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
)

// LayoutMode selects the responsive layout based on terminal width.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: gauges only, no
	// sparklines, no process table.
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-119 columns: stacked cards with
	// block sparklines and a short process table.
	LayoutCompact
	// LayoutFull is for terminals 120+ columns: card grid with braille
	// sparklines and the full process table.
	LayoutFull
)

// Width breakpoints for layout modes.
const (
	BreakpointCompact = 80
	BreakpointFull    = 120
)

// HeightMinimal is the minimum height at which the footer is shown.
const HeightMinimal = 14

// redrawInterval is the UI repaint rate. The collection loop ticks on
// its own schedule; the dashboard just repaints once a second from
// whatever the loop last published.
const redrawInterval = time.Second

// statusTTL is how long a transient status line stays visible.
const statusTTL = 5 * time.Second

// Provider is the read side of the collection loop. *core.Core is the
// production implementation; dashboard tests substitute fixed data.
// Every method must be safe to call from the UI goroutine while the
// loop is ticking.
type Provider interface {
	Snapshot() *metrics.Snapshot
	TickCount() uint64
	Values(key string, n int) []float64
	ActiveAlerts() []alerting.Event
	RecentEvents(n int) []alerting.Event
	Rules() []alerting.Rule
	Interval() time.Duration
	Refresh()
	Export() (*core.ExportDoc, error)
}

// Options assembles a dashboard Model.
type Options struct {
	Core    Provider
	Ledger  *ledger.Ledger // optional; nil disables acknowledgements
	Version string
	Logger  logger.Logger
}

// killRequest is a pending signal confirmation. The dashboard never
// signals a process without an explicit y.
type killRequest struct {
	pid   int
	name  string
	force bool // true for SIGKILL
}

// statusMessage is a transient one-line notice above the footer.
type statusMessage struct {
	text    string
	isError bool
	expires time.Time
}

// redrawMsg is the once-a-second repaint pulse.
type redrawMsg time.Time

// procResultMsg reports the outcome of a signal or renice command.
type procResultMsg struct {
	status string // ready-made status line on success
	err    error
}

// exportDoneMsg reports the outcome of a snapshot export.
type exportDoneMsg struct {
	path string
	err  error
}

// ackDoneMsg reports the outcome of an alert acknowledgement.
type ackDoneMsg struct {
	id  string
	err error
}

// Model is the Bubble Tea model for the dashboard. It owns no metric
// state of its own: every repaint pulls fresh data from the Provider,
// so the model is only cursor positions, view flags and pending
// confirmations.
type Model struct {
	provider Provider
	ledger   *ledger.Ledger
	version  string
	log      logger.Logger
	keys     keyMap

	width  int
	height int

	snap      *metrics.Snapshot
	procs     []metrics.ProcessInfo // sorted row source for the table
	sortOrder SortOrder
	viewMode  ViewMode
	showHelp  bool

	procTable table.Model
	spin      spinner.Model
	waiting   bool // no snapshot published yet

	confirm *killRequest
	status  statusMessage

	alertCursor int
	detailPID   int

	quitting bool

	now func() time.Time
}

// New builds the dashboard model. The returned model is run with
// tea.NewProgram(m, tea.WithAltScreen()).
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent)),
	)

	m := Model{
		provider:  opts.Core,
		ledger:    opts.Ledger,
		version:   opts.Version,
		log:       opts.Logger,
		keys:      defaultKeyMap(),
		sortOrder: SortByCPU,
		viewMode:  ViewDashboard,
		procTable: newProcessTable(),
		spin:      sp,
		waiting:   true,
		now:       time.Now,
	}

	// The loop may already have published a snapshot by the time the
	// program starts; pull it so the first frame is not a spinner.
	m.refreshData()
	return m
}

// Init starts the repaint pulse and the waiting spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.redrawCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if handled {
			if m.quitting {
				return m, tea.Quit
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()

	case redrawMsg:
		m.refreshData()
		return m, m.redrawCmd()

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case procResultMsg:
		if msg.err != nil {
			m.setStatus(errors.Message(msg.err), true)
		} else {
			m.setStatus(msg.status, false)
			// Pull a fresh sample so the table reflects the change
			// without waiting out the interval.
			m.provider.Refresh()
		}

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus(errors.Message(msg.err), true)
		} else {
			m.setStatus("exported to "+msg.path, false)
		}

	case ackDoneMsg:
		if msg.err != nil {
			m.setStatus(errors.Message(msg.err), true)
		} else {
			m.setStatus("acknowledged "+msg.id, false)
		}
	}

	return m, nil
}

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// redrawCmd schedules the next repaint pulse.
func (m Model) redrawCmd() tea.Cmd {
	return tea.Tick(redrawInterval, func(t time.Time) tea.Msg {
		return redrawMsg(t)
	})
}

// refreshData pulls the latest published state from the provider and
// rebuilds anything derived from it. Called on every repaint pulse and
// after any action that changes process state.
func (m *Model) refreshData() {
	snap := m.provider.Snapshot()
	if snap != nil {
		m.snap = snap
		m.waiting = false
		m.rebuildRows()
	}
	if !m.status.expires.IsZero() && m.now().After(m.status.expires) {
		m.status = statusMessage{}
	}
	if n := len(m.provider.ActiveAlerts()); m.alertCursor >= n {
		m.alertCursor = n - 1
	}
	if m.alertCursor < 0 {
		m.alertCursor = 0
	}
}

// setStatus replaces the transient status line.
func (m *Model) setStatus(text string, isError bool) {
	m.status = statusMessage{
		text:    text,
		isError: isError,
		expires: m.now().Add(statusTTL),
	}
}

// LayoutMode returns the layout for the current terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointFull:
		return LayoutFull
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// ShowFooter reports whether the terminal is tall enough for the footer.
func (m Model) ShowFooter() bool {
	return m.height >= HeightMinimal
}

// selectedProcess returns the process under the table cursor.
func (m Model) selectedProcess() (metrics.ProcessInfo, bool) {
	idx := m.procTable.Cursor()
	if idx < 0 || idx >= len(m.procs) {
		return metrics.ProcessInfo{}, false
	}
	return m.procs[idx], true
}

// detailProcess returns the process pinned in the detail view. The pid
// stays pinned across repaints; ok is false once it exits.
func (m Model) detailProcess() (metrics.ProcessInfo, bool) {
	if m.snap == nil {
		return metrics.ProcessInfo{}, false
	}
	for _, p := range m.snap.Processes {
		if p.PID == m.detailPID {
			return p, true
		}
	}
	return metrics.ProcessInfo{}, false
}

// sampleAge returns how long ago the displayed snapshot was taken.
func (m Model) sampleAge() time.Duration {
	if m.snap == nil {
		return 0
	}
	age := m.now().Sub(m.snap.Timestamp)
	if age < 0 {
		return 0
	}
	return age
}

// hostname is shown in the header; the dashboard monitors the machine
// it runs on.
func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}
