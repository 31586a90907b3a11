// Package history keeps a bounded in-memory window of recent samples per
// metric key. It backs the dashboard sparklines and the export command;
// nothing here is persisted.
package history

import (
	"sort"
	"sync"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// DefaultSize is the default number of samples retained per metric key.
const DefaultSize = 120

// Store holds one fixed-capacity ring buffer per metric key. All methods
// are safe for concurrent use; reads return copies, never internal slices.
type Store struct {
	mu     sync.RWMutex
	size   int
	gen    uint64
	series map[string]*series
}

// series pairs a ring with the generation it last received a sample, so
// keys that stop appearing can be dropped.
type series struct {
	ring    *ring
	unit    string
	lastGen uint64
}

// ring is a fixed-size circular buffer of samples.
type ring struct {
	data  []metrics.Sample
	head  int
	count int
	size  int
}

// New creates a Store retaining size samples per key.
func New(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{
		size:   size,
		series: make(map[string]*series),
	}
}

// Record appends every host-level sample in the snapshot to its series.
// Per-process keys are skipped: pids churn too fast to be worth a window,
// and rules evaluate them against the live snapshot instead. A key that
// misses a full window of consecutive records is pruned.
func (s *Store) Record(snap *metrics.Snapshot) {
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	for key, sm := range snap.Samples {
		if metrics.IsPerProcess(key) {
			continue
		}
		ser, ok := s.series[key]
		if !ok {
			ser = &series{ring: newRing(s.size), unit: sm.Unit}
			s.series[key] = ser
		}
		ser.ring.push(sm)
		ser.lastGen = s.gen
	}

	for key, ser := range s.series {
		if s.gen-ser.lastGen >= uint64(s.size) {
			delete(s.series, key)
		}
	}
}

// Series returns up to n samples for key in chronological order (oldest
// first). Fewer are returned when less history exists; nil when the key
// is unknown.
func (s *Store) Series(key string, n int) []metrics.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ser, ok := s.series[key]
	if !ok {
		return nil
	}
	return ser.ring.last(n)
}

// Values returns up to n values for key in chronological order. This is
// the sparkline feed: renderers want bare float64s.
func (s *Store) Values(key string, n int) []float64 {
	samples := s.Series(key, n)
	if samples == nil {
		return nil
	}
	vals := make([]float64, len(samples))
	for i, sm := range samples {
		vals[i] = sm.Value
	}
	return vals
}

// Latest returns the most recent sample for key.
func (s *Store) Latest(key string) (metrics.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ser, ok := s.series[key]
	if !ok || ser.ring.count == 0 {
		return metrics.Sample{}, false
	}
	got := ser.ring.last(1)
	return got[0], true
}

// Keys returns every key with recorded history, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns how many samples are stored for key.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ser, ok := s.series[key]
	if !ok {
		return 0
	}
	return ser.ring.count
}

// Capacity returns the per-key retention limit.
func (s *Store) Capacity() int {
	return s.size
}

// Dump returns every series in full, keyed by metric, each in
// chronological order. Used by the export command.
func (s *Store) Dump() map[string][]metrics.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]metrics.Sample, len(s.series))
	for key, ser := range s.series {
		out[key] = ser.ring.last(ser.ring.count)
	}
	return out
}

// Clear removes the series for key.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.series, key)
}

// ClearAll removes every series.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string]*series)
}

func newRing(size int) *ring {
	return &ring{
		data: make([]metrics.Sample, size),
		size: size,
	}
}

// push overwrites the oldest sample once the ring is full.
func (r *ring) push(sm metrics.Sample) {
	r.data[r.head] = sm
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// last returns the newest n samples in chronological order (oldest first).
func (r *ring) last(n int) []metrics.Sample {
	if n <= 0 || r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}

	result := make([]metrics.Sample, n)

	// head is the next write slot, so the newest sample sits at head-1.
	start := (r.head - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
