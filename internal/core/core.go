// Package core drives the sampling tick loop and owns the pieces the
// rest of the program reads from: the sampler, the history store, the
// alert engine and the notification queue.
//
// One goroutine (Run) performs every mutation: sample, build the
// snapshot, record history, evaluate alerts, enqueue events. Everything
// else — the dashboard, the CLI, the dispatcher — only reads through the
// accessor methods or consumes the event channel, so there is exactly
// one writer and no tick can observe another tick half-applied.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/history"
	"github.com/rileyhilliard/vitals/internal/ledger"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/sampler"
)

// Defaults applied by New when the config leaves fields zero.
const (
	DefaultInterval      = 2 * time.Second
	DefaultSampleTimeout = 2 * time.Second
	DefaultQueueSize     = 64
)

// Sampler is the metric source. *sampler.Sampler is the production
// implementation; tests substitute deterministic fakes.
type Sampler interface {
	Sample(ctx context.Context) (*sampler.Result, error)
	Check() error
}

// Config assembles a Core. Sampler is required; everything else has a
// usable default.
type Config struct {
	Interval      time.Duration
	SampleTimeout time.Duration
	HistorySize   int
	QueueSize     int

	Sampler Sampler
	Rules   []alerting.Rule

	// Ledger is optional; nil disables episode persistence.
	Ledger *ledger.Ledger

	Logger logger.Logger
}

// Core owns the tick loop state. Construct with New, start with Run,
// stop by cancelling the context.
type Core struct {
	interval      time.Duration
	sampleTimeout time.Duration

	smp    Sampler
	store  *history.Store
	engine *alerting.Engine
	ledger *ledger.Ledger
	log    logger.Logger

	// events feeds the notification dispatcher. Enqueue never blocks;
	// a full queue drops the event with a warning.
	events chan alerting.Event

	// refresh coalesces out-of-schedule tick requests: holding one
	// pending request is enough, more add nothing.
	refresh chan struct{}

	mu        sync.RWMutex
	current   *metrics.Snapshot
	tickCount uint64

	// lastStamp enforces strictly increasing snapshot timestamps. Only
	// the tick goroutine touches it.
	lastStamp time.Time

	// sampleErrs rate-limits repeated failure logging per reason.
	sampleErrs map[string]time.Time

	now func() time.Time
}

// New wires a Core from the config.
func New(cfg Config) *Core {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SampleTimeout <= 0 {
		cfg.SampleTimeout = DefaultSampleTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	store := history.New(cfg.HistorySize)
	return &Core{
		interval:      cfg.Interval,
		sampleTimeout: cfg.SampleTimeout,
		smp:           cfg.Sampler,
		store:         store,
		engine:        alerting.NewEngine(cfg.Rules, cfg.Interval, store.Capacity(), cfg.Logger),
		ledger:        cfg.Ledger,
		log:           cfg.Logger,
		events:        make(chan alerting.Event, cfg.QueueSize),
		refresh:       make(chan struct{}, 1),
		sampleErrs:    make(map[string]time.Time),
		now:           time.Now,
	}
}

// Check verifies that sampling can work at all. A failure here is fatal
// at startup; after startup the loop degrades instead.
func (c *Core) Check() error {
	return c.smp.Check()
}

// Run executes the tick loop until ctx is cancelled. The first sample is
// taken immediately so consumers are not left staring at an empty screen
// for a full interval. An in-flight tick always finishes; no partial
// snapshot is ever published.
func (c *Core) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.tick(ctx)
			// A tick slower than the interval skips the tick that
			// queued behind it instead of running back-to-back.
			select {
			case <-ticker.C:
			default:
			}
		case <-c.refresh:
			c.tick(ctx)
		}
	}
}

// Refresh requests an immediate out-of-schedule tick. Requests coalesce:
// asking while one is pending is a no-op.
func (c *Core) Refresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Events returns the queue the notification dispatcher consumes.
func (c *Core) Events() <-chan alerting.Event {
	return c.events
}

// tick performs one full sample → record → evaluate → enqueue pass.
// Errors are absorbed: a failed tick logs and leaves the previous state
// visible, it never stops the loop.
func (c *Core) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, c.sampleTimeout)
	res, err := c.smp.Sample(sctx)
	cancel()
	if err != nil {
		c.logSampleError(err)
		return
	}

	snap := c.buildSnapshot(res)

	// History is written before evaluation so an alert reading
	// "breaching since" can always see the sample that breached.
	c.store.Record(snap)
	events := c.engine.Evaluate(snap)

	c.mu.Lock()
	c.current = snap
	c.tickCount++
	c.mu.Unlock()

	for _, ev := range events {
		select {
		case c.events <- ev:
		default:
			c.log.Warn("notification queue full, dropping %s event for %s", ev.Kind, ev.RuleID)
		}
		if c.ledger != nil {
			if err := c.ledger.RecordEvent(ctx, ev); err != nil {
				c.log.Warn("alert ledger write failed: %v", err)
			}
		}
	}
}

// buildSnapshot merges a sampler result into a published snapshot. The
// snapshot timestamp is guarded to be strictly increasing even if the
// wall clock steps backwards, and every sample is restamped with it so
// history rows and the snapshot agree.
func (c *Core) buildSnapshot(res *sampler.Result) *metrics.Snapshot {
	ts := c.now()
	if !ts.After(c.lastStamp) {
		ts = c.lastStamp.Add(time.Nanosecond)
	}
	c.lastStamp = ts

	snap := &metrics.Snapshot{
		Timestamp: ts,
		Samples:   make(map[string]metrics.Sample, len(res.Samples)),
		Processes: res.Processes,
		Partial:   len(res.Errs) > 0,
		Errs:      res.Errs,
	}
	for _, sm := range res.Samples {
		sm.Timestamp = ts
		snap.Samples[sm.Key] = sm
	}
	return snap
}

// logSampleError logs a total sampling failure, repeating a given reason
// at most once per minute so a persistent failure does not flood the log.
func (c *Core) logSampleError(err error) {
	reason := err.Error()
	now := c.now()
	if last, ok := c.sampleErrs[reason]; ok && now.Sub(last) < time.Minute {
		return
	}
	c.sampleErrs[reason] = now
	c.log.Error("sample failed: %v", err)
}

// Snapshot returns the most recent published snapshot, or nil before the
// first successful tick.
func (c *Core) Snapshot() *metrics.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// TickCount reports how many ticks have published a snapshot.
func (c *Core) TickCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickCount
}

// History returns the retained samples for key no older than window.
// A zero window returns the whole retained series.
func (c *Core) History(key string, window time.Duration) []metrics.Sample {
	series := c.store.Series(key, 0)
	if window <= 0 || len(series) == 0 {
		return series
	}
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current == nil {
		return series
	}
	cutoff := current.Timestamp.Add(-window)
	for i, sm := range series {
		if !sm.Timestamp.Before(cutoff) {
			return series[i:]
		}
	}
	return nil
}

// Values returns up to n recent values for key, oldest first — the
// sparkline feed.
func (c *Core) Values(key string, n int) []float64 {
	return c.store.Values(key, n)
}

// ActiveAlerts returns the currently firing alerts.
func (c *Core) ActiveAlerts() []alerting.Event {
	return c.engine.ActiveAlerts()
}

// RecentEvents returns up to n alert events, newest first.
func (c *Core) RecentEvents(n int) []alerting.Event {
	return c.engine.RecentEvents(n)
}

// SetRules swaps the alert rule set (config hot reload).
func (c *Core) SetRules(rules []alerting.Rule) {
	c.engine.SetRules(rules)
}

// Rules returns a copy of the active alert rule set.
func (c *Core) Rules() []alerting.Rule {
	return c.engine.Rules()
}

// Interval returns the collection interval.
func (c *Core) Interval() time.Duration {
	return c.interval
}

// ExportDoc is the JSON document written by Export.
type ExportDoc struct {
	ExportedAt time.Time                   `json:"exported_at"`
	Interval   string                      `json:"interval"`
	Snapshot   *metrics.Snapshot           `json:"snapshot"`
	Series     map[string][]metrics.Sample `json:"series"`
}

// Export assembles the current snapshot and full retained history.
// Export reads published state only, so calling it twice without an
// intervening tick yields identical documents.
func (c *Core) Export() (*ExportDoc, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current == nil {
		return nil, errors.New(errors.ErrExport,
			"No samples collected yet",
			"The export document is built from collected samples; wait for at least one tick.")
	}
	return &ExportDoc{
		ExportedAt: current.Timestamp,
		Interval:   c.interval.String(),
		Snapshot:   current,
		Series:     c.store.Dump(),
	}, nil
}
