package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/util"
)

// MinInterval is the floor for the collection interval. It also catches
// bare numbers in the file: `interval: 2` parses as 2 nanoseconds, not
// 2 seconds.
const MinInterval = 100 * time.Millisecond

// Validate checks the config and returns a structured error for the
// first fatal problem. Invalid alert rules are not fatal: each one is
// disabled and a warning is written to log.
func Validate(cfg *Config, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}

	if cfg.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("interval must be greater than zero (got %v)", cfg.Interval),
			"Use a duration like 2s or 5s.")
	}
	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("interval %v is below the %v floor", cfg.Interval, MinInterval),
			"Write durations with a unit: 'interval: 2s'. Bare numbers parse as nanoseconds.")
	}
	if cfg.History <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history must be at least 1 sample (got %d)", cfg.History),
			"300 samples keeps ten minutes of data at a 2s interval.")
	}
	if cfg.SampleTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("sample_timeout must be greater than zero (got %v)", cfg.SampleTimeout),
			"2s is plenty for procfs reads.")
	}
	if cfg.SampleTimeout > cfg.Interval {
		log.Warn("sample_timeout %v exceeds the %v interval; a slow collection will skip ticks", cfg.SampleTimeout, cfg.Interval)
	}
	if cfg.ProcessLimit < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("process_limit can't be negative (got %d)", cfg.ProcessLimit),
			"Use 0 to keep every process.")
	}
	if !cfg.Metrics.AnyEnabled() {
		return errors.New(errors.ErrConfig,
			"All metric families are disabled",
			"Enable at least one of: cpu, memory, disk, network, processes.")
	}

	if err := validateNotifications(cfg.Notifications); err != nil {
		return err
	}

	validateRules(cfg, log)

	// Email settings only matter once an active rule can reach the
	// channel.
	if emailReachable(cfg.Alerts) {
		if !cfg.Notifications.Email.Configured() {
			return errors.New(errors.ErrConfig,
				"A rule requests email delivery but notifications.email is empty",
				"Fill in host, from and to under notifications.email, or drop the email action.")
		}
		if err := cfg.Notifications.Email.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func validateNotifications(n NotifyConfig) error {
	if n.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("notifications.timeout must be greater than zero (got %v)", n.Timeout),
			"5s covers a slow SMTP server; use a duration like 5s.")
	}
	if n.RateLimit < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("notifications.rate_limit can't be negative (got %d)", n.RateLimit),
			"Use 0 for the default cap of 10 per minute.")
	}
	return nil
}

// validateRules disables invalid rules and duplicate ids. Rule state is
// keyed by id, so two active rules sharing one would corrupt each
// other; the later occurrence loses.
func validateRules(cfg *Config, log logger.Logger) {
	seen := make(map[string]bool, len(cfg.Alerts))
	for i := range cfg.Alerts {
		r := &cfg.Alerts[i]
		if r.Disabled {
			continue
		}
		if err := r.Validate(); err != nil {
			r.Disabled = true
			log.Warn("%s; the rule is disabled", errors.Message(err))
			continue
		}
		if seen[r.ID] {
			r.Disabled = true
			log.Warn("alert rule id %q appears more than once; the duplicate is disabled", r.ID)
			continue
		}
		seen[r.ID] = true

		// A rule on a key the sampler never emits stays enabled but can
		// never fire; flag likely typos at load instead of leaving the
		// engine to warn at runtime.
		if !metrics.IsPerProcess(r.MetricKey) && !knownHostKey(r.MetricKey) {
			if hints := util.SuggestSimilar(r.MetricKey, metrics.HostKeys(), 3); len(hints) > 0 {
				log.Warn("alert rule %q watches unknown metric %q; did you mean %s?", r.ID, r.MetricKey, hints[0])
			} else {
				log.Warn("alert rule %q watches unknown metric %q; it will never fire", r.ID, r.MetricKey)
			}
		}
	}
}

func knownHostKey(key string) bool {
	for _, k := range metrics.HostKeys() {
		if k == key {
			return true
		}
	}
	return false
}

func emailReachable(rules []alerting.Rule) bool {
	for _, r := range rules {
		if !r.Disabled && r.HasAction(alerting.ActionEmail) {
			return true
		}
	}
	return false
}
