package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
)

// DesktopNotifier shells out to notify-send for desktop notifications.
// Alert level maps to libnotify urgency so critical alerts stay on
// screen until dismissed.
type DesktopNotifier struct {
	run func(ctx context.Context, name string, args ...string) error
}

// NewDesktopNotifier fails when notify-send is not on PATH so the
// dispatcher can disable the channel instead of failing every delivery.
func NewDesktopNotifier() (*DesktopNotifier, error) {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return nil, errors.New(errors.ErrNotify,
			"notify-send not found on PATH",
			"Install libnotify (notify-send) or set notifications.desktop: false.")
	}
	return &DesktopNotifier{run: runCommand}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %s", err, msg)
		}
		return err
	}
	return nil
}

func (n *DesktopNotifier) Name() string { return ChannelDesktop }

func (n *DesktopNotifier) Send(ctx context.Context, msg Message) error {
	args := []string{
		"-u", urgencyFor(msg.Event),
		"-a", "vitals",
		msg.Title,
		msg.Body,
	}
	return n.run(ctx, "notify-send", args...)
}

func (n *DesktopNotifier) Close() error { return nil }

func urgencyFor(ev alerting.Event) string {
	if ev.Resolved() {
		return "low"
	}
	switch ev.Level {
	case alerting.LevelInfo:
		return "low"
	case alerting.LevelWarning:
		return "normal"
	default:
		return "critical"
	}
}
