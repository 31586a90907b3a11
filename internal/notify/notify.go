// Package notify fans alert events out to delivery channels.
//
// The Dispatcher consumes events from the core's queue on its own
// goroutine and routes each event to the channels its rule's actions
// request: "log" (always available), "notify" (desktop via notify-send),
// "email" (SMTP). Every delivery runs as an independent task with its
// own timeout; one channel failing never affects the others and is
// logged tagged with the channel name. Exactly-once delivery is not a
// goal — a dropped notification is preferable to a blocked tick loop.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/util"
)

// Channel names used in delivery logs and registration.
const (
	ChannelLog     = "log"
	ChannelDesktop = "desktop"
	ChannelEmail   = "email"
)

// DefaultTimeout bounds a single channel delivery.
const DefaultTimeout = 5 * time.Second

// Message is one rendered notification handed to a channel.
type Message struct {
	Event alerting.Event
	Title string // one-line summary: "[WARNING] vitals: cpu-high"
	Body  string // rendered template text
}

// Notifier is one delivery channel.
type Notifier interface {
	// Name returns the channel name ("log", "desktop", "email").
	Name() string
	// Send delivers one message. The context carries the per-channel
	// timeout.
	Send(ctx context.Context, msg Message) error
	// Close releases channel resources.
	Close() error
}

// Config assembles a dispatcher from the notification section of the
// config file.
type Config struct {
	Desktop bool
	Email   EmailConfig // zero value leaves the email channel disabled

	// Templates overrides built-in templates by name.
	Templates map[string]string

	// Timeout bounds each channel delivery; zero means DefaultTimeout.
	Timeout time.Duration

	// RatePerMinute caps deliveries on non-log channels; zero means
	// DefaultRatePerMinute, negative disables limiting.
	RatePerMinute int

	Logger logger.Logger
}

// Dispatcher routes events to registered channels.
type Dispatcher struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	templates *Templates
	timeout   time.Duration
	limiter   *Limiter
	log       logger.Logger

	wg sync.WaitGroup
}

// NewDispatcher builds a dispatcher with the channels the config
// enables. The log channel is always registered; desktop and email are
// skipped (with a warning) when unavailable or unconfigured.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	d := &Dispatcher{
		notifiers: make(map[string]Notifier),
		templates: NewTemplates(cfg.Templates),
		timeout:   cfg.Timeout,
		limiter:   NewLimiter(cfg.RatePerMinute),
		log:       cfg.Logger,
	}
	d.Register(NewLogNotifier(cfg.Logger))
	d.configureOptional(cfg)
	d.log.Info("notification channels: %s", util.JoinOrNone(d.Channels()))
	return d
}

// Channels returns the registered channel names, sorted.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.notifiers))
	for name := range d.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) configureOptional(cfg Config) {
	if cfg.Desktop {
		desk, err := NewDesktopNotifier()
		if err != nil {
			d.log.Warn("desktop notifications disabled: %v", err)
		} else {
			d.Register(desk)
		}
	}
	if cfg.Email.Configured() {
		mail, err := NewEmailNotifier(cfg.Email)
		if err != nil {
			d.log.Warn("email notifications disabled: %v", err)
		} else {
			d.Register(mail)
		}
	}
}

// Register adds (or replaces) a channel under its name.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers[n.Name()] = n
}

// Unregister removes a channel.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.notifiers[name]; ok {
		_ = n.Close()
		delete(d.notifiers, name)
	}
}

// Reconfigure swaps templates, timeout and the optional channels after a
// config reload. The rate limiter keeps its state so a reload cannot be
// used to burst past the cap.
func (d *Dispatcher) Reconfigure(cfg Config) {
	d.mu.Lock()
	d.templates = NewTemplates(cfg.Templates)
	if cfg.Timeout > 0 {
		d.timeout = cfg.Timeout
	}
	for name, n := range d.notifiers {
		if name == ChannelLog {
			continue
		}
		_ = n.Close()
		delete(d.notifiers, name)
	}
	d.mu.Unlock()
	d.configureOptional(cfg)
}

// Run consumes events until the context is cancelled or the channel is
// closed. In-flight deliveries are waited for before returning.
func (d *Dispatcher) Run(ctx context.Context, events <-chan alerting.Event) error {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			d.Dispatch(ctx, ev)
		}
	}
}

// Dispatch fans one event out to the channels its actions request.
// Deliveries run concurrently; Dispatch returns once they are launched.
func (d *Dispatcher) Dispatch(ctx context.Context, ev alerting.Event) {
	msg := Message{
		Event: ev,
		Title: Title(ev),
	}
	d.mu.RLock()
	msg.Body = d.templates.Render(ev)
	timeout := d.timeout
	targets := make([]Notifier, 0, len(ev.Actions))
	for _, action := range ev.Actions {
		name := channelFor(action)
		n, ok := d.notifiers[name]
		if !ok {
			continue // channel disabled or unconfigured
		}
		if name != ChannelLog && !d.limiter.Allow() {
			d.log.Warn("notify %s: rate limit reached, dropping delivery for %s", name, ev.RuleID)
			continue
		}
		targets = append(targets, n)
	}
	d.mu.RUnlock()

	for _, n := range targets {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := n.Send(cctx, msg); err != nil {
				d.log.Error("notify %s: delivery failed for %s: %v", n.Name(), ev.RuleID, err)
			}
		}(n)
	}
}

// Dropped reports how many deliveries the rate limiter has discarded.
func (d *Dispatcher) Dropped() int64 {
	return d.limiter.Dropped()
}

// Close shuts down all channels.
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []string
	for name, n := range d.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	d.notifiers = make(map[string]Notifier)
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// channelFor maps a rule action to its delivery channel.
func channelFor(action string) string {
	switch action {
	case alerting.ActionNotify:
		return ChannelDesktop
	case alerting.ActionEmail:
		return ChannelEmail
	default:
		return ChannelLog
	}
}

// Title builds the one-line summary used as desktop header and email
// subject.
func Title(ev alerting.Event) string {
	tag := strings.ToUpper(ev.Level)
	if ev.Resolved() {
		tag = "RESOLVED"
	}
	return fmt.Sprintf("[%s] vitals: %s", tag, ev.RuleID)
}
