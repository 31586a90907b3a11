// Package alerting evaluates alert rules against metric snapshots.
//
// Each rule runs an independent state machine: Normal → (breach observed)
// Breaching → (breach sustained) Firing → (recovery) Normal. Entering
// Firing emits one firing Event with a fresh episode ID; returning to
// Normal from Firing emits one resolved Event with the same ID. While a
// rule keeps breaching it emits nothing further, so a long breach is one
// episode, not a notification per tick.
//
// Evaluate is called from the core's tick goroutine only. The read
// accessors (ActiveAlerts, RecentEvents, Rules) are safe to call from
// other goroutines; a mutex guards the shared state.
package alerting

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
)

type phase int

const (
	phaseNormal phase = iota
	phaseBreaching
	phaseFiring
)

// ruleState is the per-rule machine. firstBreach and episode are only
// meaningful outside phaseNormal.
type ruleState struct {
	phase        phase
	firstBreach  time.Time
	episode      string
	firingEvent  Event // kept while phase == phaseFiring for ActiveAlerts
	warnedUnseen bool
}

// Engine evaluates rules against snapshots and owns the bounded event log
// backing ActiveAlerts and RecentEvents.
type Engine struct {
	mu       sync.RWMutex
	rules    []Rule
	states   map[string]*ruleState
	interval time.Duration

	// seen records every metric key that has appeared in any snapshot.
	// A rule whose key was never seen is inert (logged once); a rule
	// whose key was seen but is absent this tick returns to Normal.
	seen map[string]bool

	events *eventRing
	log    logger.Logger
}

// NewEngine creates an engine for the given rule set. interval is the
// collection interval used in sustain arithmetic; logCap bounds the
// in-memory event log (same budget as the history length).
func NewEngine(rules []Rule, interval time.Duration, logCap int, log logger.Logger) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	if logCap <= 0 {
		logCap = 128
	}
	if log == nil {
		log = logger.Noop()
	}
	e := &Engine{
		interval: interval,
		seen:     make(map[string]bool),
		events:   newEventRing(logCap),
		log:      log,
	}
	e.setRulesLocked(rules)
	return e
}

// Evaluate runs every enabled rule against the snapshot and returns the
// events produced this tick, in rule order. State transitions use the
// snapshot's timestamp, not the wall clock, so evaluation is
// deterministic and replayable.
func (e *Engine) Evaluate(snap *metrics.Snapshot) []Event {
	if snap == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range snap.Samples {
		e.seen[key] = true
	}

	now := snap.Timestamp
	var out []Event
	for i := range e.rules {
		rule := e.rules[i]
		if rule.Disabled {
			continue
		}
		st := e.states[rule.ID]
		value, present := snap.Value(rule.MetricKey)

		if !present {
			if !e.seen[rule.MetricKey] {
				if !st.warnedUnseen {
					st.warnedUnseen = true
					e.log.Warn("alert rule %s watches %s, which no snapshot has reported yet", rule.ID, rule.MetricKey)
				}
				continue
			}
			// Key known but missing this tick: treat as recovered.
			if st.phase == phaseFiring {
				ev := e.resolveEvent(rule, st, now, st.firingEvent.Value)
				ev.Message = fmt.Sprintf("%s: %s is no longer reported", rule.ID, rule.MetricKey)
				out = append(out, ev)
				e.events.push(ev)
			}
			st.phase = phaseNormal
			continue
		}

		if Compare(value, rule.Comparator, rule.Threshold) {
			if st.phase == phaseNormal {
				st.phase = phaseBreaching
				st.firstBreach = now
			}
			// Each breaching tick covers one interval of breach, so the
			// first qualifying tick is the one where elapsed+interval
			// reaches the sustain window. Sustain 0 fires immediately.
			if st.phase == phaseBreaching && now.Sub(st.firstBreach)+e.interval >= rule.Sustain {
				st.phase = phaseFiring
				st.episode = uuid.NewString()
				ev := Event{
					ID:        st.episode,
					Kind:      KindFiring,
					RuleID:    rule.ID,
					MetricKey: rule.MetricKey,
					Level:     rule.Level,
					Value:     value,
					Threshold: rule.Threshold,
					Timestamp: now,
					Message:   fmt.Sprintf("%s: %s is %.1f (%s %.1f)", rule.ID, rule.MetricKey, value, rule.Comparator, rule.Threshold),
					Actions:   rule.Actions,
					Template:  rule.Template,
				}
				st.firingEvent = ev
				out = append(out, ev)
				e.events.push(ev)
			}
			continue
		}

		if st.phase == phaseFiring {
			ev := e.resolveEvent(rule, st, now, value)
			out = append(out, ev)
			e.events.push(ev)
		}
		st.phase = phaseNormal
	}
	return out
}

func (e *Engine) resolveEvent(rule Rule, st *ruleState, now time.Time, value float64) Event {
	return Event{
		ID:        st.episode,
		Kind:      KindResolved,
		RuleID:    rule.ID,
		MetricKey: rule.MetricKey,
		Level:     rule.Level,
		Value:     value,
		Threshold: rule.Threshold,
		Timestamp: now,
		Message:   fmt.Sprintf("%s: %s recovered at %.1f", rule.ID, rule.MetricKey, value),
		Actions:   rule.Actions,
		Template:  rule.Template,
	}
}

// ActiveAlerts returns the firing events of all currently-firing rules,
// in rule order.
func (e *Engine) ActiveAlerts() []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []Event
	for i := range e.rules {
		st, ok := e.states[e.rules[i].ID]
		if ok && st.phase == phaseFiring {
			out = append(out, st.firingEvent)
		}
	}
	return out
}

// RecentEvents returns up to n events, newest first. n <= 0 returns all
// retained events.
func (e *Engine) RecentEvents(n int) []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.events.last(n)
}

// Rules returns a copy of the current rule set.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// SetRules swaps the rule set, typically after a config reload. Rules
// whose evaluation terms (key, comparator, threshold, sustain) are
// unchanged keep their state machine so an in-progress breach is not
// reset; new or modified rules start at Normal.
func (e *Engine) SetRules(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setRulesLocked(rules)
}

func (e *Engine) setRulesLocked(rules []Rule) {
	prevRules := make(map[string]Rule, len(e.rules))
	for _, r := range e.rules {
		prevRules[r.ID] = r
	}
	states := make(map[string]*ruleState, len(rules))
	for _, r := range rules {
		if prev, ok := prevRules[r.ID]; ok && sameTerms(prev, r) {
			states[r.ID] = e.states[r.ID]
			continue
		}
		states[r.ID] = &ruleState{}
	}
	e.rules = make([]Rule, len(rules))
	copy(e.rules, rules)
	e.states = states
}

func sameTerms(a, b Rule) bool {
	return a.MetricKey == b.MetricKey &&
		a.Comparator == b.Comparator &&
		a.Threshold == b.Threshold &&
		a.Sustain == b.Sustain
}

// eventRing is a fixed-capacity event log. Oldest entries are overwritten
// once full.
type eventRing struct {
	buf  []Event
	head int
	n    int
}

func newEventRing(capacity int) *eventRing {
	return &eventRing{buf: make([]Event, capacity)}
}

func (r *eventRing) push(ev Event) {
	r.buf[r.head] = ev
	r.head = (r.head + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// last returns up to n events, newest first.
func (r *eventRing) last(n int) []Event {
	if n <= 0 || n > r.n {
		n = r.n
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.head - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
