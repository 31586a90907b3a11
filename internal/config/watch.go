package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
)

// debounceWindow collapses the event bursts editors produce when
// saving (write-rename dances, multiple partial writes).
const debounceWindow = 200 * time.Millisecond

// Watcher re-reads the config file when it changes and emits validated
// snapshots on Changes. An edit that fails to load is logged and
// dropped; the running config stays in effect. Only the latest pending
// snapshot is kept when the consumer lags.
type Watcher struct {
	path    string
	fw      *fsnotify.Watcher
	changes chan *Config
	log     logger.Logger
}

// NewWatcher watches the config file at path. The parent directory is
// watched rather than the file itself so editors that replace the file
// by rename keep triggering events.
func NewWatcher(path string, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Noop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot resolve config path: "+path,
			"Check the working directory still exists")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to start the config watcher",
			"Hot reload needs inotify; check fs.inotify limits")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot watch config directory: "+filepath.Dir(abs),
			"Check directory permissions")
	}
	return &Watcher{
		path:    abs,
		fw:      fw,
		changes: make(chan *Config, 1),
		log:     log,
	}, nil
}

// Changes delivers validated config snapshots after file edits.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

// Run processes file events until the context is cancelled or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(debounceWindow)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher: %v", err)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// Close stops the watcher; a blocked Run returns.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path, w.log)
	if err != nil {
		w.log.Warn("config change ignored: %s", errors.Message(err))
		return
	}
	w.log.Info("config reloaded from %s", w.path)
	// Latest wins: drop an unconsumed snapshot before offering the new
	// one. Run is the only sender.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- cfg:
	default:
	}
}
