package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/notify"
)

// configDoc mirrors Config for writing. Durations become strings so the
// file reads "5m", not 300000000000.
type configDoc struct {
	Interval      string            `yaml:"interval"`
	History       int               `yaml:"history"`
	SampleTimeout string            `yaml:"sample_timeout"`
	Metrics       MetricsConfig     `yaml:"metrics"`
	DiskPath      string            `yaml:"disk_path"`
	ProcessLimit  int               `yaml:"process_limit"`
	Alerts        []ruleDoc         `yaml:"alerts"`
	Notifications notifyDoc         `yaml:"notifications"`
	Templates     map[string]string `yaml:"templates,omitempty"`
	LogFile       string            `yaml:"log_file,omitempty"`
	StateDir      string            `yaml:"state_dir,omitempty"`
}

type notifyDoc struct {
	Desktop   bool               `yaml:"desktop"`
	Email     notify.EmailConfig `yaml:"email"`
	Timeout   string             `yaml:"timeout"`
	RateLimit int                `yaml:"rate_limit"`
}

type ruleDoc struct {
	ID         string   `yaml:"id"`
	Metric     string   `yaml:"metric"`
	Comparator string   `yaml:"comparator"`
	Threshold  float64  `yaml:"threshold"`
	Sustain    string   `yaml:"sustain"`
	Level      string   `yaml:"level"`
	Actions    []string `yaml:"actions,flow"`
	Template   string   `yaml:"template,omitempty"`
	Disabled   bool     `yaml:"disabled,omitempty"`
}

const fileHeader = `# vitals configuration
# Metrics are collected every 'interval'; alert rules evaluate each
# snapshot and fire after breaching for their 'sustain' duration.
# Run 'vitals doctor' to check this file.

`

// Write renders cfg as a commented YAML file at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(docOf(cfg))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}

func docOf(cfg *Config) configDoc {
	doc := configDoc{
		Interval:      formatDuration(cfg.Interval),
		History:       cfg.History,
		SampleTimeout: formatDuration(cfg.SampleTimeout),
		Metrics:       cfg.Metrics,
		DiskPath:      cfg.DiskPath,
		ProcessLimit:  cfg.ProcessLimit,
		Notifications: notifyDoc{
			Desktop:   cfg.Notifications.Desktop,
			Email:     cfg.Notifications.Email,
			Timeout:   formatDuration(cfg.Notifications.Timeout),
			RateLimit: cfg.Notifications.RateLimit,
		},
		Templates: cfg.Templates,
		LogFile:   cfg.LogFile,
		StateDir:  cfg.StateDir,
	}
	if len(doc.Templates) == 0 {
		doc.Templates = nil
	}
	for _, r := range cfg.Alerts {
		doc.Alerts = append(doc.Alerts, ruleDocOf(r))
	}
	return doc
}

func ruleDocOf(r alerting.Rule) ruleDoc {
	return ruleDoc{
		ID:         r.ID,
		Metric:     r.MetricKey,
		Comparator: r.Comparator,
		Threshold:  r.Threshold,
		Sustain:    formatDuration(r.Sustain),
		Level:      r.Level,
		Actions:    r.Actions,
		Template:   r.Template,
		Disabled:   r.Disabled,
	}
}

// formatDuration trims the zero tails time.Duration.String adds, so 5
// minutes round-trips as "5m" rather than "5m0s".
func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
