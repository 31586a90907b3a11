package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/vitals/internal/ledger"
)

func TestStateDirCheck(t *testing.T) {
	t.Run("writable directory", func(t *testing.T) {
		check := &StateDirCheck{Dir: filepath.Join(t.TempDir(), "state")}
		result := check.Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		tmpDir := t.TempDir()
		blocked := filepath.Join(tmpDir, "state")
		if err := os.WriteFile(blocked, []byte("not a dir"), 0644); err != nil {
			t.Fatal(err)
		}

		check := &StateDirCheck{Dir: blocked}
		result := check.Run()

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
	})

	t.Run("name and category", func(t *testing.T) {
		check := &StateDirCheck{}
		if check.Name() != "state_dir" {
			t.Errorf("expected name 'state_dir', got %s", check.Name())
		}
		if check.Category() != "STATE" {
			t.Errorf("expected category 'STATE', got %s", check.Category())
		}
	})
}

func TestLedgerCheck(t *testing.T) {
	t.Run("no ledger yet", func(t *testing.T) {
		check := &LedgerCheck{Path: filepath.Join(t.TempDir(), "alerts.db")}
		result := check.Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("healthy ledger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "alerts.db")
		led, err := ledger.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := led.Close(); err != nil {
			t.Fatal(err)
		}

		check := &LedgerCheck{Path: path}
		result := check.Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("corrupt ledger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "alerts.db")
		if err := os.WriteFile(path, []byte("definitely not sqlite"), 0644); err != nil {
			t.Fatal(err)
		}

		check := &LedgerCheck{Path: path}
		result := check.Run()

		if result.Status == StatusPass {
			t.Errorf("expected a failure for a corrupt database, got %v: %s", result.Status, result.Message)
		}
		if !result.Fixable {
			t.Error("a corrupt database should be reported as fixable")
		}
	})

	t.Run("fix moves the database aside", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "alerts.db")
		if err := os.WriteFile(path, []byte("definitely not sqlite"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path+"-wal", []byte("stale"), 0644); err != nil {
			t.Fatal(err)
		}

		check := &LedgerCheck{Path: path}
		if err := check.Fix(); err != nil {
			t.Fatalf("Fix() error: %v", err)
		}

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("database should have been moved aside")
		}
		if _, err := os.Stat(path + ".corrupt"); err != nil {
			t.Errorf("corrupt copy should exist: %v", err)
		}
		if _, err := os.Stat(path + "-wal.corrupt"); err != nil {
			t.Errorf("wal sidecar should move too: %v", err)
		}

		result := check.Run()
		if result.Status != StatusPass {
			t.Errorf("check should pass after the fix, got %v: %s", result.Status, result.Message)
		}
	})
}

func TestNewStateChecks(t *testing.T) {
	checks := NewStateChecks("/tmp/vitals/alerts.db")

	if len(checks) != 2 {
		t.Errorf("expected 2 state checks, got %d", len(checks))
	}

	for _, check := range checks {
		if check.Category() != "STATE" {
			t.Errorf("expected STATE category, got %s", check.Category())
		}
	}
}
