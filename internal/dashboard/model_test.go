package dashboard

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/core"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/metrics"
)

// fakeProvider feeds the model fixed data without a running collection
// loop.
type fakeProvider struct {
	snap      *metrics.Snapshot
	ticks     uint64
	values    map[string][]float64
	active    []alerting.Event
	recent    []alerting.Event
	rules     []alerting.Rule
	interval  time.Duration
	refreshes int
	exportDoc *core.ExportDoc
	exportErr error
}

func (f *fakeProvider) Snapshot() *metrics.Snapshot { return f.snap }
func (f *fakeProvider) TickCount() uint64           { return f.ticks }

func (f *fakeProvider) Values(key string, n int) []float64 {
	return f.values[key]
}

func (f *fakeProvider) ActiveAlerts() []alerting.Event      { return f.active }
func (f *fakeProvider) RecentEvents(n int) []alerting.Event { return f.recent }
func (f *fakeProvider) Rules() []alerting.Rule              { return f.rules }

func (f *fakeProvider) Interval() time.Duration {
	if f.interval == 0 {
		return 2 * time.Second
	}
	return f.interval
}

func (f *fakeProvider) Refresh() { f.refreshes++ }

func (f *fakeProvider) Export() (*core.ExportDoc, error) {
	return f.exportDoc, f.exportErr
}

var snapTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testSnapshot is a full snapshot with three processes whose cpu, mem
// and name orderings all differ, so sort tests can tell them apart.
func testSnapshot() *metrics.Snapshot {
	samples := make(map[string]metrics.Sample)
	add := func(key string, value float64, unit string) {
		samples[key] = metrics.Sample{Timestamp: snapTime, Key: key, Value: value, Unit: unit}
	}
	add(metrics.KeyCPUUsage, 42.5, metrics.UnitPercent)
	add(metrics.KeyLoad1, 0.51, metrics.UnitLoad)
	add(metrics.KeyLoad5, 0.48, metrics.UnitLoad)
	add(metrics.KeyLoad15, 0.45, metrics.UnitLoad)
	add(metrics.KeyMemUsed, 61.2, metrics.UnitPercent)
	add(metrics.KeyMemUsedB, 9.8e9, metrics.UnitBytes)
	add(metrics.KeyMemTotalB, 16e9, metrics.UnitBytes)
	add(metrics.KeyDiskUsed, 43.0, metrics.UnitPercent)
	add(metrics.KeyDiskUsedB, 215e9, metrics.UnitBytes)
	add(metrics.KeyDiskTotB, 500e9, metrics.UnitBytes)
	add(metrics.KeyNetRxBps, 1.2e6, metrics.UnitBytesPerSec)
	add(metrics.KeyNetTxBps, 3.4e5, metrics.UnitBytesPerSec)
	add(metrics.KeyNetErrs, 0, metrics.UnitPerSec)
	add(metrics.KeyProcCount, 3, metrics.UnitCount)
	add(metrics.KeyUptime, 93784, metrics.UnitSeconds)

	return &metrics.Snapshot{
		Timestamp: snapTime,
		Samples:   samples,
		Processes: []metrics.ProcessInfo{
			{PID: 100, User: "www", Name: "nginx", Command: "/usr/sbin/nginx -g daemon off", State: "S", CPUPercent: 12.5, MemPercent: 80.0, RSSBytes: 128 << 20, Threads: 4},
			{PID: 200, User: "postgres", Name: "postgres", Command: "/usr/bin/postgres -D /var/lib/pg", State: "S", CPUPercent: 50.0, MemPercent: 30.0, RSSBytes: 512 << 20, Threads: 8},
			{PID: 50, User: "root", Name: "sshd", Command: "sshd: /usr/sbin/sshd", State: "S", CPUPercent: 1.0, MemPercent: 1.5, RSSBytes: 8 << 20, Threads: 1},
		},
	}
}

// newTestModel builds a model against the fake provider and sizes it
// through the same WindowSizeMsg the runtime would deliver.
func newTestModel(t *testing.T, width, height int) (Model, *fakeProvider) {
	t.Helper()
	fp := &fakeProvider{
		snap:  testSnapshot(),
		ticks: 3,
		values: map[string][]float64{
			metrics.KeyCPUUsage: {10, 20, 30, 42.5},
			metrics.KeyMemUsed:  {60, 61, 61.2},
		},
	}
	m := New(Options{Core: fp})
	m.now = func() time.Time { return snapTime.Add(2 * time.Second) }

	nm, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return nm.(Model), fp
}

// press runs key presses through Update and returns the final model and
// the last command.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		nm, c := m.Update(msg)
		m = nm.(Model)
		cmd = c
	}
	return m, cmd
}

func TestNew_PullsExistingSnapshot(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	assert.False(t, m.waiting)
	require.Len(t, m.procs, 3)
	// Default sort is cpu descending.
	assert.Equal(t, 200, m.procs[0].PID)
	assert.Equal(t, 100, m.procs[1].PID)
	assert.Equal(t, 50, m.procs[2].PID)
}

func TestNew_WaitsWithoutSnapshot(t *testing.T) {
	fp := &fakeProvider{}
	m := New(Options{Core: fp})

	assert.True(t, m.waiting)

	nm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = nm.(Model)
	assert.Contains(t, stripANSI(m.View()), "waiting for first sample")
}

func TestUpdate_RedrawPullsNewSnapshot(t *testing.T) {
	m, fp := newTestModel(t, 120, 40)

	next := testSnapshot()
	next.Timestamp = snapTime.Add(2 * time.Second)
	next.Processes = next.Processes[:1]
	fp.snap = next
	fp.ticks = 4

	nm, cmd := m.Update(redrawMsg(time.Now()))
	m = nm.(Model)

	assert.Same(t, next, m.snap)
	assert.Len(t, m.procs, 1)
	assert.NotNil(t, cmd, "redraw must schedule the next pulse")
}

func TestSortCycle(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	m, _ = press(m, "s") // cpu -> mem
	assert.Equal(t, SortByMem, m.sortOrder)
	assert.Equal(t, 100, m.procs[0].PID, "nginx has the highest mem")

	m, _ = press(m, "s") // mem -> pid
	assert.Equal(t, SortByPID, m.sortOrder)
	assert.Equal(t, 50, m.procs[0].PID)

	m, _ = press(m, "s") // pid -> name
	assert.Equal(t, SortByName, m.sortOrder)
	assert.Equal(t, "nginx", m.procs[0].Name)

	m, _ = press(m, "s") // name -> cpu, full cycle
	assert.Equal(t, SortByCPU, m.sortOrder)
}

func TestSortPreservesSelection(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	// Cursor starts on postgres (highest cpu). After switching to mem
	// sort, postgres moves to row 1 and the cursor must follow it.
	p, ok := m.selectedProcess()
	require.True(t, ok)
	require.Equal(t, 200, p.PID)

	m, _ = press(m, "s")

	p, ok = m.selectedProcess()
	require.True(t, ok)
	assert.Equal(t, 200, p.PID)
	assert.Equal(t, 1, m.procTable.Cursor())
}

func TestKillConfirmFlow(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	m, _ = press(m, "x")
	require.NotNil(t, m.confirm)
	assert.Equal(t, 200, m.confirm.pid)
	assert.False(t, m.confirm.force)
	assert.Contains(t, stripANSI(m.View()), "Send SIGTERM to postgres (pid 200)?")

	// n cancels without a command.
	m, cmd := press(m, "n")
	assert.Nil(t, m.confirm)
	assert.Nil(t, cmd)

	// X asks for SIGKILL; y dispatches the signal command.
	m, _ = press(m, "X")
	require.NotNil(t, m.confirm)
	assert.True(t, m.confirm.force)
	assert.Contains(t, stripANSI(m.View()), "SIGKILL")

	m, cmd = press(m, "y")
	assert.Nil(t, m.confirm)
	assert.NotNil(t, cmd, "confirming must produce the kill command")
}

func TestConfirmSwallowsOtherKeys(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	m, _ = press(m, "x")
	require.NotNil(t, m.confirm)

	// Sort key is ignored while the prompt is open.
	m, _ = press(m, "s")
	assert.Equal(t, SortByCPU, m.sortOrder)
	assert.NotNil(t, m.confirm)
}

func TestQuit(t *testing.T) {
	m, cmd := press(newTestModelOnly(t), "q")

	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestRefreshKeyRequestsSample(t *testing.T) {
	m, fp := newTestModel(t, 120, 40)

	_, _ = press(m, "r")

	assert.Equal(t, 1, fp.refreshes)
}

func TestAlertsViewToggle(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	m, _ = press(m, "a")
	assert.Equal(t, ViewAlerts, m.viewMode)

	m, _ = press(m, "a")
	assert.Equal(t, ViewDashboard, m.viewMode)
}

func TestDetailFlow(t *testing.T) {
	m, fp := newTestModel(t, 120, 40)

	m, _ = press(m, "enter")
	assert.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, 200, m.detailPID)
	assert.Contains(t, stripANSI(m.View()), "postgres")

	// The pinned process exiting flips the view to a notice.
	next := testSnapshot()
	next.Processes = next.Processes[2:] // drop postgres and nginx
	fp.snap = next
	nm, _ := m.Update(redrawMsg(time.Now()))
	m = nm.(Model)
	assert.Contains(t, stripANSI(m.View()), "Process 200 has exited")

	m, _ = press(m, "esc")
	assert.Equal(t, ViewDashboard, m.viewMode)
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	m, _ = press(m, "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, stripANSI(m.View()), "Keyboard Shortcuts")

	// Any key dismisses the overlay.
	m, _ = press(m, "j")
	assert.False(t, m.showHelp)
}

func TestProcResultUpdatesStatusAndRefreshes(t *testing.T) {
	m, fp := newTestModel(t, 120, 40)

	nm, _ := m.Update(procResultMsg{status: "SIGTERM sent to nginx (pid 100)"})
	m = nm.(Model)

	assert.Equal(t, "SIGTERM sent to nginx (pid 100)", m.status.text)
	assert.False(t, m.status.isError)
	assert.Equal(t, 1, fp.refreshes)
}

func TestStatusLineExpires(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	clock := snapTime.Add(2 * time.Second)
	m.now = func() time.Time { return clock }

	nm, _ := m.Update(procResultMsg{err: errors.New(errors.ErrProc, "Not allowed to signal pid 1", "")})
	m = nm.(Model)
	assert.Contains(t, stripANSI(m.View()), "Not allowed to signal pid 1")

	clock = clock.Add(statusTTL + time.Second)
	nm, _ = m.Update(redrawMsg(time.Now()))
	m = nm.(Model)
	assert.Empty(t, m.status.text)
}

func TestExportCmd_WritesDocument(t *testing.T) {
	t.Chdir(t.TempDir())

	m, fp := newTestModel(t, 120, 40)
	fp.exportDoc = &core.ExportDoc{
		ExportedAt: snapTime,
		Interval:   "2s",
		Snapshot:   testSnapshot(),
		Series: map[string][]metrics.Sample{
			metrics.KeyCPUUsage: {{Timestamp: snapTime, Key: metrics.KeyCPUUsage, Value: 42.5, Unit: metrics.UnitPercent}},
		},
	}

	cmd := m.exportCmd()
	msg := cmd()
	done, ok := msg.(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, "vitals-20250601-120002.json", done.path)

	data, err := os.ReadFile(done.path)
	require.NoError(t, err)
	var doc core.ExportDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2s", doc.Interval)
	assert.Len(t, doc.Snapshot.Processes, 3)
}

func TestExportCmd_PropagatesError(t *testing.T) {
	m, fp := newTestModel(t, 120, 40)
	fp.exportErr = errors.New(errors.ErrExport, "No samples collected yet", "")

	msg := m.exportCmd()()
	done, ok := msg.(exportDoneMsg)
	require.True(t, ok)
	assert.True(t, errors.IsCode(done.err, errors.ErrExport))
}

func TestAckCmd_RequiresLedger(t *testing.T) {
	m, _ := newTestModel(t, 120, 40)

	msg := m.ackCmd(alerting.Event{ID: "abc"})()
	done, ok := msg.(ackDoneMsg)
	require.True(t, ok)
	assert.True(t, errors.IsCode(done.err, errors.ErrLedger))
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{width: 60, want: LayoutMinimal},
		{width: 79, want: LayoutMinimal},
		{width: 80, want: LayoutCompact},
		{width: 119, want: LayoutCompact},
		{width: 120, want: LayoutFull},
		{width: 200, want: LayoutFull},
	}

	for _, tt := range tests {
		m := Model{width: tt.width}
		assert.Equal(t, tt.want, m.LayoutMode(), "width %d", tt.width)
	}
}

// newTestModelOnly drops the provider return for tests that don't need it.
func newTestModelOnly(t *testing.T) Model {
	t.Helper()
	m, _ := newTestModel(t, 120, 40)
	return m
}
