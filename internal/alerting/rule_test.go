package alerting

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/metrics"
)

func validRule() Rule {
	return Rule{
		ID:         "cpu-high",
		MetricKey:  metrics.KeyCPUUsage,
		Comparator: CompGE,
		Threshold:  80,
		Sustain:    5 * time.Minute,
		Level:      LevelWarning,
		Actions:    []string{ActionNotify, ActionLog},
		Template:   "cpu_high",
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Rule)
		wantErr bool
	}{
		{"valid", func(r *Rule) {}, false},
		{"zero sustain ok", func(r *Rule) { r.Sustain = 0 }, false},
		{"no template ok", func(r *Rule) { r.Template = "" }, false},
		{"missing id", func(r *Rule) { r.ID = "" }, true},
		{"missing metric", func(r *Rule) { r.MetricKey = "" }, true},
		{"bad comparator", func(r *Rule) { r.Comparator = "=~" }, true},
		{"equality comparator rejected", func(r *Rule) { r.Comparator = "==" }, true},
		{"nan threshold", func(r *Rule) { r.Threshold = math.NaN() }, true},
		{"inf threshold", func(r *Rule) { r.Threshold = math.Inf(1) }, true},
		{"pct threshold above 100", func(r *Rule) { r.Threshold = 120 }, true},
		{"pct threshold negative", func(r *Rule) { r.Threshold = -5 }, true},
		{"large threshold ok on non-pct metric", func(r *Rule) {
			r.MetricKey = metrics.KeyProcCount
			r.Threshold = 500
		}, false},
		{"negative sustain", func(r *Rule) { r.Sustain = -time.Second }, true},
		{"bad level", func(r *Rule) { r.Level = "severe" }, true},
		{"no actions", func(r *Rule) { r.Actions = nil }, true},
		{"bad action", func(r *Rule) { r.Actions = []string{"pager"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRuleHasAction(t *testing.T) {
	r := validRule()
	assert.True(t, r.HasAction(ActionNotify))
	assert.True(t, r.HasAction(ActionLog))
	assert.False(t, r.HasAction(ActionEmail))
}

func TestCompare(t *testing.T) {
	assert.True(t, Compare(81, CompGT, 80))
	assert.False(t, Compare(80, CompGT, 80))
	assert.True(t, Compare(80, CompGE, 80))
	assert.True(t, Compare(79, CompLT, 80))
	assert.False(t, Compare(80, CompLT, 80))
	assert.True(t, Compare(80, CompLE, 80))
	assert.False(t, Compare(1, "??", 0), "unknown comparator never matches")
}
