package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/vitals/internal/alerting"
)

func TestExpand(t *testing.T) {
	vars := map[string]string{"value": "85.5", "threshold": "80"}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"plain text", "no placeholders here", "no placeholders here"},
		{"single", "value is {value}", "value is 85.5"},
		{"repeated", "{value} {value}", "85.5 85.5"},
		{"adjacent", "{value}{threshold}", "85.580"},
		{"unknown renders empty", "cpu {nope} high", "cpu  high"},
		{"empty name renders empty", "a{}b", "ab"},
		{"unterminated brace kept", "tail {value", "tail {value"},
		{"closing brace alone kept", "a } b", "a } b"},
		{"empty template", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.template, vars))
		})
	}
}

func TestRender_TwoLevelResolution(t *testing.T) {
	tmpls := NewTemplates(nil)
	ev := alerting.Event{
		Kind:      alerting.KindFiring,
		RuleID:    "cpu-high",
		MetricKey: "cpu.usage_pct",
		Level:     alerting.LevelWarning,
		Value:     91.25,
		Threshold: 80,
		Timestamp: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Message:   "fallback message",
		Template:  "cpu_high",
	}

	assert.Equal(t, "CPU usage is at 91.25% (threshold: 80%)", tmpls.Render(ev))

	// Unknown template name falls back to the event message.
	ev.Template = "does-not-exist"
	assert.Equal(t, "fallback message", tmpls.Render(ev))

	// No template at all behaves the same.
	ev.Template = ""
	assert.Equal(t, "fallback message", tmpls.Render(ev))
}

func TestRender_ResolvedUsesResolvedTemplate(t *testing.T) {
	tmpls := NewTemplates(nil)
	ev := alerting.Event{
		Kind:     alerting.KindResolved,
		RuleID:   "cpu-high",
		Message:  "cpu-high: cpu.usage_pct recovered at 42.0",
		Template: "cpu_high", // ignored for resolved events
	}
	assert.Equal(t, "Resolved: cpu-high: cpu.usage_pct recovered at 42.0", tmpls.Render(ev))
}

func TestNewTemplates_Overrides(t *testing.T) {
	tmpls := NewTemplates(map[string]string{
		"cpu_high": "custom {rule}",
		"my_own":   "metric {metric} at {value}",
	})

	body, ok := tmpls.Lookup("cpu_high")
	assert.True(t, ok)
	assert.Equal(t, "custom {rule}", body)

	// New names are usable by rules.
	ev := alerting.Event{
		Kind:      alerting.KindFiring,
		RuleID:    "r",
		MetricKey: "mem.used_pct",
		Value:     50,
		Template:  "my_own",
	}
	assert.Equal(t, "metric mem.used_pct at 50", tmpls.Render(ev))

	// Untouched built-ins survive.
	_, ok = tmpls.Lookup("memory_high")
	assert.True(t, ok)
}

func TestPlaceholders(t *testing.T) {
	ev := alerting.Event{
		RuleID:    "proc-count",
		MetricKey: "proc.count",
		Level:     alerting.LevelWarning,
		Value:     512,
		Threshold: 500,
		Timestamp: time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC),
		Message:   "m",
	}
	vars := Placeholders(ev)
	assert.Equal(t, "512", vars["value"], "whole numbers render without decimals")
	assert.Equal(t, "500", vars["threshold"])
	assert.Equal(t, "warning", vars["level"])
	assert.Equal(t, "2025-06-01 09:05:00", vars["timestamp"])
	assert.Equal(t, "proc-count", vars["rule"])
	assert.Equal(t, "proc.count", vars["metric"])
	assert.Equal(t, "m", vars["message"])
}
