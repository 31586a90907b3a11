package doctor

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TTYCheck verifies stdout is an interactive terminal. The dashboard
// refuses to start without one; snapshot and export still work.
type TTYCheck struct{}

func (c *TTYCheck) Name() string     { return "tty" }
func (c *TTYCheck) Category() string { return "TERMINAL" }

func (c *TTYCheck) Run() CheckResult {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "stdout is not a terminal",
			Suggestion: "The dashboard needs a TTY; snapshot and export still work when piped",
		}
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Interactive terminal (size unknown)",
		}
	}

	if width < 80 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Terminal is %dx%d", width, height),
			Suggestion: "The dashboard works best at 80 columns or wider",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Interactive terminal (%dx%d)", width, height),
	}
}

func (c *TTYCheck) Fix() error { return nil }

// ColorProfileCheck reports the color depth the dashboard will render with.
type ColorProfileCheck struct{}

func (c *ColorProfileCheck) Name() string     { return "color_profile" }
func (c *ColorProfileCheck) Category() string { return "TERMINAL" }

func (c *ColorProfileCheck) Run() CheckResult {
	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "24-bit color (truecolor)"}
	case termenv.ANSI256:
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "256 colors"}
	case termenv.ANSI:
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "16 colors"}
	default:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No color support detected",
			Suggestion: fmt.Sprintf("TERM=%q; the dashboard will render without color", os.Getenv("TERM")),
		}
	}
}

func (c *ColorProfileCheck) Fix() error { return nil }

// NewTerminalChecks creates the terminal environment checks.
func NewTerminalChecks() []Check {
	return []Check{
		&TTYCheck{},
		&ColorProfileCheck{},
	}
}
