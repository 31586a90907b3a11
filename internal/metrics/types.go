// Package metrics defines the sample and snapshot types shared by the
// sampler, history store, alert engine, and dashboard.
package metrics

import "time"

// Sample is one observed value for one metric key. Immutable once created.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Key       string    `json:"key"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// Snapshot is the complete set of samples captured at one sampling tick.
// It is built by the aggregator and shared read-only afterwards; nothing
// mutates a snapshot once published.
type Snapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Samples   map[string]Sample `json:"samples"`
	Processes []ProcessInfo     `json:"processes,omitempty"`

	// Partial is set when one or more metric families could not be read
	// this tick. Errs carries one reason per failed family.
	Partial bool     `json:"partial,omitempty"`
	Errs    []string `json:"errors,omitempty"`
}

// ProcessInfo is one row of the process table. Display-only: per-process
// values also appear as proc.<pid>.* samples for alert evaluation.
type ProcessInfo struct {
	PID        int     `json:"pid"`
	User       string  `json:"user"`
	Name       string  `json:"name"`
	Command    string  `json:"command"`
	State      string  `json:"state"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	RSSBytes   int64   `json:"rss_bytes"`
	Threads    int     `json:"threads"`
}

// Value returns the value for key, or false when the key is absent from
// this snapshot (metrics appear and disappear across ticks).
func (s *Snapshot) Value(key string) (float64, bool) {
	if s == nil || s.Samples == nil {
		return 0, false
	}
	sm, ok := s.Samples[key]
	return sm.Value, ok
}

// Get returns the full sample for key.
func (s *Snapshot) Get(key string) (Sample, bool) {
	if s == nil || s.Samples == nil {
		return Sample{}, false
	}
	sm, ok := s.Samples[key]
	return sm, ok
}

// Empty reports whether the snapshot carries no samples at all
// (a fully degraded tick).
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Samples) == 0
}
