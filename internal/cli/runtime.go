package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/core"
	"github.com/rileyhilliard/vitals/internal/ledger"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/notify"
	"github.com/rileyhilliard/vitals/internal/sampler"
)

// ledgerOpTimeout bounds one-shot ledger queries from the CLI.
const ledgerOpTimeout = 5 * time.Second

// newSampler builds the production /proc sampler from the file config.
func newSampler(cfg *config.Config, log logger.Logger) *sampler.Sampler {
	return sampler.New(sampler.Config{
		DiskPath:     cfg.DiskPath,
		ProcessLimit: cfg.ProcessLimit,
		CPU:          cfg.Metrics.CPU,
		Memory:       cfg.Metrics.Memory,
		Disk:         cfg.Metrics.Disk,
		Network:      cfg.Metrics.Network,
		Processes:    cfg.Metrics.Processes,
		Logger:       log,
	})
}

// newCore assembles the collector core. led may be nil for commands that
// do not persist alert episodes.
func newCore(cfg *config.Config, led *ledger.Ledger, log logger.Logger) *core.Core {
	return core.New(core.Config{
		Interval:      cfg.Interval,
		SampleTimeout: cfg.SampleTimeout,
		HistorySize:   cfg.History,
		Sampler:       newSampler(cfg, log),
		Rules:         cfg.Alerts,
		Ledger:        led,
		Logger:        log,
	})
}

// notifyConfig maps the notifications section onto the dispatcher config.
func notifyConfig(cfg *config.Config, log logger.Logger) notify.Config {
	return notify.Config{
		Desktop:       cfg.Notifications.Desktop,
		Email:         cfg.Notifications.Email,
		Templates:     cfg.Templates,
		Timeout:       cfg.Notifications.Timeout,
		RatePerMinute: cfg.Notifications.RateLimit,
		Logger:        log,
	}
}

// ledgerPath resolves where the episode database lives: the configured
// state_dir when set, the XDG default otherwise.
func ledgerPath(cfg *config.Config) string {
	if cfg.StateDir != "" {
		return filepath.Join(cfg.StateDir, "alerts.db")
	}
	return ledger.DefaultPath()
}

// openLedger opens the episode database for commands that need it.
func openLedger(cfg *config.Config) (*ledger.Ledger, error) {
	return ledger.Open(ledgerPath(cfg))
}

// loadConfig loads the discovered or flagged config file, falling back
// to built-in defaults when no file exists.
func loadConfig(log logger.Logger) (*config.Config, error) {
	return config.LoadOrDefault(Config(), log)
}

// opCtx returns a context for one-shot ledger operations.
func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ledgerOpTimeout)
}
