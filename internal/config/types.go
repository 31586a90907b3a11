package config

import (
	"time"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/notify"
)

// Config represents the complete vitals.yaml configuration file. It is
// built once at load, validated, and never consulted as a free-form map
// afterwards.
type Config struct {
	// Interval is the collection tick period.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// History is the per-metric ring buffer capacity, in samples.
	History int `yaml:"history" mapstructure:"history"`

	// SampleTimeout bounds a single collection pass.
	SampleTimeout time.Duration `yaml:"sample_timeout" mapstructure:"sample_timeout"`

	// Metrics toggles the collector families.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// DiskPath is the mount point the disk family measures.
	DiskPath string `yaml:"disk_path" mapstructure:"disk_path"`

	// ProcessLimit caps the per-process rows kept per snapshot; 0 keeps all.
	ProcessLimit int `yaml:"process_limit" mapstructure:"process_limit"`

	// Alerts replaces the built-in rule set when present.
	Alerts []alerting.Rule `yaml:"alerts" mapstructure:"alerts"`

	// Notifications configures the delivery channels.
	Notifications NotifyConfig `yaml:"notifications" mapstructure:"notifications"`

	// Templates overrides built-in notification templates by name.
	Templates map[string]string `yaml:"templates" mapstructure:"templates"`

	// LogFile receives log output while the dashboard owns the terminal.
	// Empty means stderr.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// StateDir overrides the XDG state directory for the alert ledger.
	StateDir string `yaml:"state_dir" mapstructure:"state_dir"`

	// Path is where this config was loaded from; empty for built-in
	// defaults. Not part of the file schema.
	Path string `yaml:"-" mapstructure:"-"`
}

// MetricsConfig toggles collection per metric family. Unknown family
// names in the file are rejected at load.
type MetricsConfig struct {
	CPU       bool `yaml:"cpu" mapstructure:"cpu"`
	Memory    bool `yaml:"memory" mapstructure:"memory"`
	Disk      bool `yaml:"disk" mapstructure:"disk"`
	Network   bool `yaml:"network" mapstructure:"network"`
	Processes bool `yaml:"processes" mapstructure:"processes"`
}

// AnyEnabled reports whether at least one family is collected.
func (m MetricsConfig) AnyEnabled() bool {
	return m.CPU || m.Memory || m.Disk || m.Network || m.Processes
}

// NotifyConfig is the notifications section of the file.
type NotifyConfig struct {
	// Desktop enables notify-send delivery for the "notify" action.
	Desktop bool `yaml:"desktop" mapstructure:"desktop"`

	// Email configures SMTP delivery; the zero value disables the channel.
	Email notify.EmailConfig `yaml:"email" mapstructure:"email"`

	// Timeout bounds one channel delivery.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RateLimit caps desktop/email deliveries per minute; 0 uses the
	// built-in default. The log channel is never limited.
	RateLimit int `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DefaultConfig returns the configuration vitals runs with when no file
// exists.
func DefaultConfig() *Config {
	return &Config{
		Interval:      2 * time.Second,
		History:       300,
		SampleTimeout: 2 * time.Second,
		Metrics: MetricsConfig{
			CPU:       true,
			Memory:    true,
			Disk:      true,
			Network:   true,
			Processes: true,
		},
		DiskPath:     "/",
		ProcessLimit: 0,
		Alerts:       DefaultRules(),
		Notifications: NotifyConfig{
			Desktop:   true,
			Timeout:   notify.DefaultTimeout,
			RateLimit: notify.DefaultRatePerMinute,
		},
		Templates: map[string]string{},
	}
}

// DefaultRules is the built-in alert set: sustained CPU, memory and
// process pressure warnings, immediate disk-full criticals, and a
// network error-rate warning.
func DefaultRules() []alerting.Rule {
	return []alerting.Rule{
		{
			ID:         "cpu-high",
			MetricKey:  metrics.KeyCPUUsage,
			Comparator: alerting.CompGE,
			Threshold:  80,
			Sustain:    5 * time.Minute,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionNotify, alerting.ActionLog},
			Template:   "cpu_high",
		},
		{
			ID:         "memory-high",
			MetricKey:  metrics.KeyMemUsed,
			Comparator: alerting.CompGE,
			Threshold:  80,
			Sustain:    5 * time.Minute,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionNotify, alerting.ActionLog},
			Template:   "memory_high",
		},
		{
			ID:         "disk-critical",
			MetricKey:  metrics.KeyDiskUsed,
			Comparator: alerting.CompGE,
			Threshold:  90,
			Sustain:    0,
			Level:      alerting.LevelCritical,
			Actions:    []string{alerting.ActionNotify, alerting.ActionLog},
			Template:   "disk_critical",
		},
		{
			ID:         "process-count",
			MetricKey:  metrics.KeyProcCount,
			Comparator: alerting.CompGE,
			Threshold:  500,
			Sustain:    10 * time.Minute,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionLog},
			Template:   "process_count_high",
		},
		{
			ID:         "network-errors",
			MetricKey:  metrics.KeyNetErrs,
			Comparator: alerting.CompGE,
			Threshold:  10,
			Sustain:    5 * time.Minute,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionLog},
			Template:   "network_errors",
		},
	}
}
