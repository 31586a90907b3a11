package doctor

import (
	"os"
	"strings"
	"testing"

	"golang.org/x/term"
)

func TestTTYCheck(t *testing.T) {
	t.Run("name and category", func(t *testing.T) {
		check := &TTYCheck{}
		if check.Name() != "tty" {
			t.Errorf("expected name 'tty', got %s", check.Name())
		}
		if check.Category() != "TERMINAL" {
			t.Errorf("expected category 'TERMINAL', got %s", check.Category())
		}
	})

	t.Run("piped stdout warns", func(t *testing.T) {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			t.Skip("stdout is a terminal")
		}

		check := &TTYCheck{}
		result := check.Run()

		if result.Status != StatusWarn {
			t.Errorf("expected StatusWarn without a TTY, got %v", result.Status)
		}
		if !strings.Contains(result.Message, "not a terminal") {
			t.Errorf("unexpected message: %s", result.Message)
		}
		if !strings.Contains(result.Suggestion, "snapshot and export") {
			t.Errorf("suggestion should mention the piped commands, got: %s", result.Suggestion)
		}
	})

	t.Run("fix is a no-op", func(t *testing.T) {
		check := &TTYCheck{}
		if err := check.Fix(); err != nil {
			t.Errorf("unexpected fix error: %v", err)
		}
	})
}

func TestColorProfileCheck(t *testing.T) {
	t.Run("name and category", func(t *testing.T) {
		check := &ColorProfileCheck{}
		if check.Name() != "color_profile" {
			t.Errorf("expected name 'color_profile', got %s", check.Name())
		}
		if check.Category() != "TERMINAL" {
			t.Errorf("expected category 'TERMINAL', got %s", check.Category())
		}
	})

	t.Run("piped stdout reports no color", func(t *testing.T) {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			t.Skip("stdout is a terminal")
		}

		check := &ColorProfileCheck{}
		result := check.Run()

		if result.Status != StatusWarn {
			t.Errorf("expected StatusWarn without a TTY, got %v", result.Status)
		}
		if !strings.Contains(result.Suggestion, "TERM=") {
			t.Errorf("suggestion should name TERM, got: %s", result.Suggestion)
		}
	})
}

func TestNewTerminalChecks(t *testing.T) {
	checks := NewTerminalChecks()

	if len(checks) != 2 {
		t.Fatalf("expected 2 terminal checks, got %d", len(checks))
	}
	wantNames := []string{"tty", "color_profile"}
	for i, check := range checks {
		if check.Name() != wantNames[i] {
			t.Errorf("check %d: expected %s, got %s", i, wantNames[i], check.Name())
		}
		if check.Category() != "TERMINAL" {
			t.Errorf("check %d: expected category TERMINAL, got %s", i, check.Category())
		}
	}
}
