package alerting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// Comparators accepted by rules. Comparison is exact: >= fires at
// equality, > does not. No rounding is applied before comparing.
const (
	CompGT = ">"
	CompGE = ">="
	CompLT = "<"
	CompLE = "<="
)

// Severity levels, lowest to highest.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

// Delivery actions a rule may request. "notify" is the desktop channel.
const (
	ActionLog    = "log"
	ActionNotify = "notify"
	ActionEmail  = "email"
)

// Rule is one alert definition. Immutable after load; the config layer
// owns construction and validation, the engine only reads it. The zero
// value of Disabled keeps a hand-built rule active.
type Rule struct {
	ID         string        `json:"id" yaml:"id" mapstructure:"id"`
	MetricKey  string        `json:"metric" yaml:"metric" mapstructure:"metric"`
	Comparator string        `json:"comparator" yaml:"comparator" mapstructure:"comparator"`
	Threshold  float64       `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	Sustain    time.Duration `json:"sustain" yaml:"sustain" mapstructure:"sustain"`
	Level      string        `json:"level" yaml:"level" mapstructure:"level"`
	Actions    []string      `json:"actions" yaml:"actions" mapstructure:"actions"`
	Template   string        `json:"template,omitempty" yaml:"template,omitempty" mapstructure:"template"`
	Disabled   bool          `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// Validate checks a single rule. An invalid rule is disabled at load
// with a warning rather than rejecting the whole config.
func (r Rule) Validate() error {
	if r.ID == "" {
		return errors.New(errors.ErrConfig,
			"Alert rule has no id",
			"Give every rule under 'alerts:' a unique 'id' field.")
	}
	if r.MetricKey == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has no metric key", r.ID),
			"Set 'metric' to a key like cpu.usage_pct or mem.used_pct.")
	}
	switch r.Comparator {
	case CompGT, CompGE, CompLT, CompLE:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has unknown comparator %q", r.ID, r.Comparator),
			"Use one of: > >= < <=")
	}
	if math.IsNaN(r.Threshold) || math.IsInf(r.Threshold, 0) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has a non-finite threshold", r.ID),
			"Set 'threshold' to a finite number.")
	}
	if strings.HasSuffix(r.MetricKey, "_pct") && (r.Threshold < 0 || r.Threshold > 100) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has threshold %g, but %s is a percentage", r.ID, r.Threshold, r.MetricKey),
			"Percent metrics take thresholds between 0 and 100.")
	}
	if r.Sustain < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has a negative sustain duration", r.ID),
			"Set 'sustain' to 0 for immediate firing, or a duration like 5m.")
	}
	switch r.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has unknown level %q", r.ID, r.Level),
			"Use one of: info, warning, error, critical")
	}
	if len(r.Actions) == 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Alert rule %q has no actions", r.ID),
			"List at least one of: log, notify, email")
	}
	for _, a := range r.Actions {
		switch a {
		case ActionLog, ActionNotify, ActionEmail:
		default:
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Alert rule %q has unknown action %q", r.ID, a),
				"Use one of: log, notify, email")
		}
	}
	return nil
}

// HasAction reports whether the rule requests the given delivery action.
func (r Rule) HasAction(action string) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Compare evaluates value against threshold with the given comparator.
// Unknown comparators never match; Validate rejects them at load.
func Compare(value float64, comparator string, threshold float64) bool {
	switch comparator {
	case CompGT:
		return value > threshold
	case CompGE:
		return value >= threshold
	case CompLT:
		return value < threshold
	case CompLE:
		return value <= threshold
	default:
		return false
	}
}
