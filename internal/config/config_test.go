package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resolved follows symlinks so paths derived from os.Getwd compare
// equal to paths built from t.TempDir.
func resolved(t *testing.T, path string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return r
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 300, cfg.History)
	assert.True(t, cfg.Metrics.AnyEnabled())
	assert.Equal(t, "/", cfg.DiskPath)
	require.Len(t, cfg.Alerts, 5)

	log := logger.NewBufferLogger()
	require.NoError(t, Validate(cfg, log))
	for _, r := range cfg.Alerts {
		assert.False(t, r.Disabled, "default rule %s must survive validation", r.ID)
	}
	assert.Empty(t, log.Messages)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, `
interval: 5s
history: 120
sample_timeout: 1s
metrics:
  cpu: true
  memory: true
  disk: false
  network: false
  processes: true
disk_path: /data
process_limit: 50
alerts:
  - id: cpu-spike
    metric: cpu.usage_pct
    comparator: ">"
    threshold: 95
    sustain: 30s
    level: critical
    actions: [notify, log]
templates:
  cpu_high: "custom {value}"
notifications:
  desktop: false
  email:
    host: smtp.example.com
    port: 587
    from: vitals@example.com
    to: ops@example.com
  timeout: 10s
  rate_limit: 3
log_file: /var/log/vitals.log
`)

	cfg, err := Load(path, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, 120, cfg.History)
	assert.Equal(t, time.Second, cfg.SampleTimeout)
	assert.False(t, cfg.Metrics.Disk)
	assert.True(t, cfg.Metrics.Processes)
	assert.Equal(t, "/data", cfg.DiskPath)
	assert.Equal(t, 50, cfg.ProcessLimit)
	assert.Equal(t, path, cfg.Path)

	require.Len(t, cfg.Alerts, 1)
	rule := cfg.Alerts[0]
	assert.Equal(t, "cpu-spike", rule.ID)
	assert.Equal(t, metrics.KeyCPUUsage, rule.MetricKey)
	assert.Equal(t, alerting.CompGT, rule.Comparator)
	assert.Equal(t, 95.0, rule.Threshold)
	assert.Equal(t, 30*time.Second, rule.Sustain)
	assert.Equal(t, alerting.LevelCritical, rule.Level)
	assert.Equal(t, []string{"notify", "log"}, rule.Actions)
	assert.Empty(t, rule.Template)
	assert.False(t, rule.Disabled)

	assert.Equal(t, "custom {value}", cfg.Templates["cpu_high"])
	assert.False(t, cfg.Notifications.Desktop)
	assert.Equal(t, "smtp.example.com", cfg.Notifications.Email.Host)
	assert.Equal(t, 587, cfg.Notifications.Email.Port)
	assert.Equal(t, 10*time.Second, cfg.Notifications.Timeout)
	assert.Equal(t, 3, cfg.Notifications.RateLimit)
	assert.Equal(t, "/var/log/vitals.log", cfg.LogFile)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, "interval: 10s\n")

	cfg, err := Load(path, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 300, cfg.History)
	assert.True(t, cfg.Metrics.Network)
	assert.Len(t, cfg.Alerts, 5, "absent alerts section keeps the built-in rules")
	assert.True(t, cfg.Notifications.Desktop)
	assert.Equal(t, 5*time.Second, cfg.Notifications.Timeout)
}

func TestLoad_AlertsSectionReplacesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, `
alerts:
  - id: only-rule
    metric: mem.used_pct
    comparator: ">="
    threshold: 70
    sustain: 1m
    level: info
    actions: [log]
`)

	cfg, err := Load(path, logger.Noop())
	require.NoError(t, err)
	require.Len(t, cfg.Alerts, 1)
	assert.Equal(t, "only-rule", cfg.Alerts[0].ID)
	assert.Empty(t, cfg.Alerts[0].Template, "file rules must not inherit fields from the built-ins")
	assert.Equal(t, time.Minute, cfg.Alerts[0].Sustain)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileName, "interval: [unclosed\n")
	_, err := Load(path, logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_UnknownKeysRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keyHint string
	}{
		{"top level", "intervall: 2s\n", "intervall"},
		{"metric family", "metrics:\n  gpu: true\n", "gpu"},
		{"notifications", "notifications:\n  slack: true\n", "slack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), FileName, tt.content)
			_, err := Load(path, logger.Noop())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.keyHint)
		})
	}
}

func TestValidate_FatalProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }, "interval"},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }, "interval"},
		{"sub-floor interval", func(c *Config) { c.Interval = 2 * time.Nanosecond }, "floor"},
		{"zero history", func(c *Config) { c.History = 0 }, "history"},
		{"zero sample timeout", func(c *Config) { c.SampleTimeout = 0 }, "sample_timeout"},
		{"negative process limit", func(c *Config) { c.ProcessLimit = -1 }, "process_limit"},
		{"all families disabled", func(c *Config) { c.Metrics = MetricsConfig{} }, "metric families"},
		{"zero notify timeout", func(c *Config) { c.Notifications.Timeout = 0 }, "notifications.timeout"},
		{"negative rate limit", func(c *Config) { c.Notifications.RateLimit = -1 }, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg, logger.Noop())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_SlowSampleTimeoutWarns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleTimeout = 10 * time.Second

	log := logger.NewBufferLogger()
	require.NoError(t, Validate(cfg, log))
	assert.True(t, log.Contains("warn", "skip ticks"))
}

func TestValidate_InvalidRuleDisabledNotFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alerts = []alerting.Rule{
		{
			ID:         "bad-rule",
			MetricKey:  metrics.KeyCPUUsage,
			Comparator: "==",
			Threshold:  80,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionLog},
		},
		{
			ID:         "good-rule",
			MetricKey:  metrics.KeyCPUUsage,
			Comparator: alerting.CompGE,
			Threshold:  80,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionLog},
		},
	}

	log := logger.NewBufferLogger()
	require.NoError(t, Validate(cfg, log))
	assert.True(t, cfg.Alerts[0].Disabled)
	assert.False(t, cfg.Alerts[1].Disabled)
	assert.True(t, log.Contains("warn", "bad-rule"))
}

func TestValidate_UnknownMetricKeyWarnsWithHint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alerts = []alerting.Rule{
		{
			ID:         "cpu-typo",
			MetricKey:  "cpu.usage",
			Comparator: alerting.CompGT,
			Threshold:  90,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionLog},
		},
	}

	log := logger.NewBufferLogger()
	require.NoError(t, Validate(cfg, log))
	// The rule stays enabled; it just can never fire.
	assert.False(t, cfg.Alerts[0].Disabled)
	assert.True(t, log.Contains("warn", "did you mean cpu.usage_pct"))
}

func TestValidate_PerProcessKeyNotFlagged(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alerts = []alerting.Rule{
		{
			ID:         "pid-watch",
			MetricKey:  metrics.ProcCPUKey(1234),
			Comparator: alerting.CompGT,
			Threshold:  50,
			Level:      alerting.LevelWarning,
			Actions:    []string{alerting.ActionLog},
		},
	}

	log := logger.NewBufferLogger()
	require.NoError(t, Validate(cfg, log))
	assert.False(t, log.HasLevel("warn"))
}

func TestValidate_DuplicateRuleIDDisablesLater(t *testing.T) {
	cfg := DefaultConfig()
	rule := DefaultRules()[0]
	cfg.Alerts = []alerting.Rule{rule, rule}

	log := logger.NewBufferLogger()
	require.NoError(t, Validate(cfg, log))
	assert.False(t, cfg.Alerts[0].Disabled)
	assert.True(t, cfg.Alerts[1].Disabled)
	assert.True(t, log.Contains("warn", "more than once"))
}

func TestValidate_EmailActionNeedsEmailConfig(t *testing.T) {
	mailRule := alerting.Rule{
		ID:         "mail-me",
		MetricKey:  metrics.KeyDiskUsed,
		Comparator: alerting.CompGE,
		Threshold:  95,
		Level:      alerting.LevelCritical,
		Actions:    []string{alerting.ActionEmail},
	}

	cfg := DefaultConfig()
	cfg.Alerts = []alerting.Rule{mailRule}
	err := Validate(cfg, logger.Noop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")

	// A disabled rule does not make the channel reachable.
	cfg = DefaultConfig()
	mailRule.Disabled = true
	cfg.Alerts = []alerting.Rule{mailRule}
	assert.NoError(t, Validate(cfg, logger.Noop()))

	// Complete email settings satisfy the requirement.
	cfg = DefaultConfig()
	mailRule.Disabled = false
	cfg.Alerts = []alerting.Rule{mailRule}
	cfg.Notifications.Email.Host = "smtp.example.com"
	cfg.Notifications.Email.Port = 587
	cfg.Notifications.Email.From = "vitals@example.com"
	cfg.Notifications.Email.To = "ops@example.com"
	assert.NoError(t, Validate(cfg, logger.Noop()))
}

func TestFind(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("explicit path wins", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "custom.yaml", "interval: 2s\n")
		got, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, FileName, "interval: 2s\n")
		t.Chdir(dir)
		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, resolved(t, path), resolved(t, got))
	})

	t.Run("home config dir fallback", func(t *testing.T) {
		home := t.TempDir()
		cfgDir := filepath.Join(home, UserConfigDir)
		require.NoError(t, os.MkdirAll(cfgDir, 0o755))
		path := writeFile(t, cfgDir, FileName, "interval: 2s\n")

		t.Chdir(t.TempDir())
		t.Setenv("HOME", home)
		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HOME", t.TempDir())
		got, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrDefault("", logger.Noop())
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Len(t, cfg.Alerts, 5)
	assert.Equal(t, "/", cfg.DiskPath)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Templates = map[string]string{"cpu_high": "cpu at {value}%"}
	require.NoError(t, Write(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# vitals configuration")
	assert.Contains(t, text, "interval: 2s")
	assert.Contains(t, text, "sustain: 5m")
	assert.NotContains(t, text, "300000000000", "durations are written as strings")

	loaded, err := Load(path, logger.Noop())
	require.NoError(t, err)
	assert.Equal(t, cfg.Interval, loaded.Interval)
	assert.Equal(t, cfg.History, loaded.History)
	assert.Equal(t, cfg.Metrics, loaded.Metrics)
	require.Len(t, loaded.Alerts, len(cfg.Alerts))
	for i, r := range cfg.Alerts {
		assert.Equal(t, r.ID, loaded.Alerts[i].ID)
		assert.Equal(t, r.Sustain, loaded.Alerts[i].Sustain)
		assert.Equal(t, r.Threshold, loaded.Alerts[i].Threshold)
		assert.Equal(t, r.Actions, loaded.Alerts[i].Actions)
	}
	assert.Equal(t, "cpu at {value}%", loaded.Templates["cpu_high"])
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{2 * time.Second, "2s"},
		{90 * time.Second, "1m30s"},
		{5 * time.Minute, "5m"},
		{10 * time.Minute, "10m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h30m"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		assert.Equal(t, tt.want, got)
		back, err := time.ParseDuration(got)
		require.NoError(t, err)
		assert.Equal(t, tt.d, back, "formatted duration must parse back")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VITALS_TEST_DIR", "/opt/vitals")

	assert.Empty(t, ExpandPath(""))
	assert.Equal(t, "/var/log/v.log", ExpandPath("/var/log/v.log"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "logs"), ExpandPath("~/logs"))
	assert.Equal(t, "/opt/vitals/state", ExpandPath("$VITALS_TEST_DIR/state"))
	assert.Equal(t, "/opt/vitals/state", ExpandPath("${VITALS_TEST_DIR}/state"))
}
