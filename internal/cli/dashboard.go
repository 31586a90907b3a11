package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/core"
	"github.com/rileyhilliard/vitals/internal/dashboard"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/notify"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// dashboardCommand wires the full pipeline — sampler, core, dispatcher,
// ledger, config watcher — and hands the terminal to the TUI.
func dashboardCommand(intervalFlag string, historyFlag int) error {
	if !ui.IsTerminal(os.Stdout) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'vitals snapshot' or 'vitals export' for non-interactive output.")
	}

	// Config load warnings go to stderr; the alternate screen is not up yet.
	bootLog := logger.NewEnvLogger("vitals")
	cfg, err := loadConfig(bootLog)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cfg, intervalFlag, historyFlag); err != nil {
		return err
	}

	// Once the TUI owns the terminal all logging moves to a file.
	runLog, closeLog := openRunLogger(cfg)
	defer closeLog()

	led, err := openLedger(cfg)
	if err != nil {
		// The dashboard is still useful without episode persistence.
		runLog.Warn("alert ledger unavailable: %s", errors.Message(err))
		led = nil
	}

	c := newCore(cfg, led, runLog)
	if err := c.Check(); err != nil {
		return err
	}
	disp := notify.NewDispatcher(notifyConfig(cfg, runLog))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Run(gctx) })
	g.Go(func() error { return disp.Run(gctx, c.Events()) })

	if cfg.Path != "" {
		watcher, werr := config.NewWatcher(cfg.Path, runLog)
		if werr != nil {
			runLog.Warn("config hot reload disabled: %s", errors.Message(werr))
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
			g.Go(func() error {
				applyReloads(gctx, watcher.Changes(), cfg, c, disp, runLog)
				return nil
			})
			defer watcher.Close()
		}
	}

	model := dashboard.New(dashboard.Options{
		Core:    c,
		Ledger:  led,
		Version: version,
		Logger:  runLog,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, tuiErr := p.Run()

	cancel()
	_ = g.Wait()
	_ = disp.Close()
	if led != nil {
		_ = led.Close()
	}
	return tuiErr
}

// applyFlagOverrides lets --interval and --history shadow the file values
// for this run.
func applyFlagOverrides(cfg *config.Config, intervalFlag string, historyFlag int) error {
	if intervalFlag != "" {
		parsed, err := time.ParseDuration(intervalFlag)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid --interval value: "+intervalFlag,
				"Use a duration like 2s, 5s, or 1m.")
		}
		if parsed < config.MinInterval {
			return errors.New(errors.ErrConfig,
				"--interval is below the 100ms minimum",
				"Sampling faster than 100ms burns CPU measuring the measurement.")
		}
		cfg.Interval = parsed
	}
	if historyFlag < 0 {
		return errors.New(errors.ErrConfig,
			"--history cannot be negative",
			"Pass the number of samples to retain per metric, e.g. 300.")
	}
	if historyFlag > 0 {
		cfg.History = historyFlag
	}
	return nil
}

// openRunLogger opens the file logger the dashboard logs to. Falling back
// to a silent logger beats writing onto the alternate screen.
func openRunLogger(cfg *config.Config) (logger.Logger, func()) {
	path := cfg.LogFile
	if path == "" {
		path = filepath.Join(filepath.Dir(ledgerPath(cfg)), "vitals.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return logger.Noop(), func() {}
	}
	fl, err := logger.NewFileLogger(path)
	if err != nil {
		return logger.Noop(), func() {}
	}
	return fl, func() { _ = fl.Close() }
}

// applyReloads consumes validated configs from the hot-reload watcher.
// Rules and notification settings apply live; interval and history are
// wired through the core's constructor and need a restart.
func applyReloads(ctx context.Context, changes <-chan *config.Config, running *config.Config, c *core.Core, disp *notify.Dispatcher, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-changes:
			if !ok {
				return
			}
			c.SetRules(next.Alerts)
			disp.Reconfigure(notifyConfig(next, log))
			if next.Interval != running.Interval || next.History != running.History {
				log.Info("interval/history changed in %s; restart vitals to apply", next.Path)
			}
			running = next
		}
	}
}
