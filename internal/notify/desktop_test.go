package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vitals/internal/alerting"
)

func TestDesktopNotifier_Send(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := &DesktopNotifier{run: func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}}

	msg := Message{
		Event: alerting.Event{Kind: alerting.KindFiring, Level: alerting.LevelCritical},
		Title: "[CRITICAL] vitals: disk-critical",
		Body:  "Disk usage is at 95.5% (threshold: 90%)",
	}
	require.NoError(t, n.Send(context.Background(), msg))

	assert.Equal(t, "notify-send", gotName)
	assert.Equal(t, []string{
		"-u", "critical",
		"-a", "vitals",
		"[CRITICAL] vitals: disk-critical",
		"Disk usage is at 95.5% (threshold: 90%)",
	}, gotArgs)
}

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		kind     alerting.Kind
		level    string
		expected string
	}{
		{alerting.KindFiring, alerting.LevelInfo, "low"},
		{alerting.KindFiring, alerting.LevelWarning, "normal"},
		{alerting.KindFiring, alerting.LevelError, "critical"},
		{alerting.KindFiring, alerting.LevelCritical, "critical"},
		{alerting.KindResolved, alerting.LevelCritical, "low"},
	}
	for _, tt := range tests {
		ev := alerting.Event{Kind: tt.kind, Level: tt.level}
		assert.Equal(t, tt.expected, urgencyFor(ev), "%s/%s", tt.kind, tt.level)
	}
}
