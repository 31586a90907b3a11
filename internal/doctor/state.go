package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/vitals/internal/ledger"
)

// StateDirCheck verifies the state directory is writable by creating and
// removing a probe file.
type StateDirCheck struct {
	Dir string
}

func (c *StateDirCheck) Name() string     { return "state_dir" }
func (c *StateDirCheck) Category() string { return "STATE" }

func (c *StateDirCheck) Run() CheckResult {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot create state directory %s", c.Dir),
			Suggestion: "Set state_dir in vitals.yaml to a writable location",
		}
	}

	probe := filepath.Join(c.Dir, ".vitals-doctor")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("State directory %s is not writable", c.Dir),
			Suggestion: "Set state_dir in vitals.yaml to a writable location",
		}
	}
	_ = os.Remove(probe)

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("State directory writable (%s)", c.Dir),
	}
}

func (c *StateDirCheck) Fix() error { return nil }

// LedgerCheck opens the alert ledger and counts stored episodes. It only
// runs when the database file already exists so that doctor never creates
// state as a side effect.
type LedgerCheck struct {
	Path string
}

func (c *LedgerCheck) Name() string     { return "ledger" }
func (c *LedgerCheck) Category() string { return "STATE" }

func (c *LedgerCheck) Run() CheckResult {
	if _, err := os.Stat(c.Path); os.IsNotExist(err) {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No alert ledger yet (created on first alert)",
		}
	}

	led, err := ledger.Open(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot open alert ledger %s", c.Path),
			Suggestion: "The database may be corrupt; move it aside and let vitals recreate it",
			Fixable:    true,
		}
	}
	defer led.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	open, err := led.Active(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Alert ledger opens but cannot be queried",
			Suggestion: "The database may be corrupt; move it aside and let vitals recreate it",
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Alert ledger healthy (%d open alerts)", len(open)),
	}
}

// Fix moves the unreadable database aside so the next run starts fresh.
// The episodes are kept in the .corrupt copy rather than deleted. The
// WAL sidecars move with it; a stale -wal would poison the recreated
// database.
func (c *LedgerCheck) Fix() error {
	if err := os.Rename(c.Path, c.Path+".corrupt"); err != nil {
		return err
	}
	for _, ext := range []string{"-wal", "-shm"} {
		_ = os.Rename(c.Path+ext, c.Path+ext+".corrupt")
	}
	return nil
}

// NewStateChecks creates persistence checks for the given ledger path.
func NewStateChecks(ledgerPath string) []Check {
	return []Check{
		&StateDirCheck{Dir: filepath.Dir(ledgerPath)},
		&LedgerCheck{Path: ledgerPath},
	}
}
