package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/proc"
)

// ackTimeout bounds the ledger write for an acknowledgement so a stuck
// database cannot freeze the UI goroutine pool.
const ackTimeout = 3 * time.Second

// exportCmd writes the current snapshot plus the retained history to a
// timestamped JSON file in the working directory.
func (m Model) exportCmd() tea.Cmd {
	provider := m.provider
	path := fmt.Sprintf("vitals-%s.json", m.now().Format("20060102-150405"))
	return func() tea.Msg {
		doc, err := provider.Export()
		if err != nil {
			return exportDoneMsg{err: err}
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return exportDoneMsg{err: errors.WrapWithCode(err, errors.ErrExport,
				"Could not encode the export document", "")}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: errors.WrapWithCode(err, errors.ErrExport,
				"Could not write "+path,
				"Check that the working directory is writable.")}
		}
		return exportDoneMsg{path: path}
	}
}

// killCmd delivers the confirmed signal.
func killCmd(req killRequest) tea.Cmd {
	return func() tea.Msg {
		if req.force {
			if err := proc.Kill(req.pid); err != nil {
				return procResultMsg{err: err}
			}
			return procResultMsg{status: fmt.Sprintf("SIGKILL sent to %s (pid %d)", req.name, req.pid)}
		}
		if err := proc.Terminate(req.pid); err != nil {
			return procResultMsg{err: err}
		}
		return procResultMsg{status: fmt.Sprintf("SIGTERM sent to %s (pid %d)", req.name, req.pid)}
	}
}

// reniceCmd shifts a process's niceness by delta, clamped to the valid
// range. Raising priority (negative delta) usually needs privileges;
// the resulting error lands in the status line.
func reniceCmd(pid, delta int) tea.Cmd {
	return func() tea.Msg {
		nice, err := proc.GetPriority(pid)
		if err != nil {
			return procResultMsg{err: err}
		}
		nice += delta
		if nice < proc.MinNice {
			nice = proc.MinNice
		}
		if nice > proc.MaxNice {
			nice = proc.MaxNice
		}
		if err := proc.SetPriority(pid, nice); err != nil {
			return procResultMsg{err: err}
		}
		return procResultMsg{status: fmt.Sprintf("pid %d nice set to %d", pid, nice)}
	}
}

// ackCmd marks the selected firing alert as acknowledged in the ledger.
func (m Model) ackCmd(ev alerting.Event) tea.Cmd {
	led := m.ledger
	return func() tea.Msg {
		if led == nil {
			return ackDoneMsg{err: errors.New(errors.ErrLedger,
				"Alert ledger is disabled",
				"Enable 'ledger.enabled' in the config to acknowledge alerts.")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
		defer cancel()
		if err := led.Acknowledge(ctx, ev.ID, ackUser()); err != nil {
			return ackDoneMsg{err: err}
		}
		return ackDoneMsg{id: shortID(ev.ID)}
	}
}

// ackUser resolves who acknowledged: $USER, or "unknown" in stripped
// environments like containers.
func ackUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// shortID trims an episode id for display. Ledger lookups accept the
// prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
