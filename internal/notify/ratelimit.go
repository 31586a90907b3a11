package notify

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRatePerMinute caps non-log deliveries when the config does not
// set notifications.rate_limit.
const DefaultRatePerMinute = 10

// Limiter is a token-bucket rate limit over all non-log deliveries.
// Tokens refill evenly across the minute with a burst of one window.
type Limiter struct {
	lim *rate.Limiter // nil when limiting is disabled

	mu      sync.Mutex
	dropped int64

	// now is swappable so tests can drive the window deterministically.
	now func() time.Time
}

// NewLimiter allows perMinute deliveries per minute. Zero applies
// DefaultRatePerMinute; negative disables limiting.
func NewLimiter(perMinute int) *Limiter {
	if perMinute == 0 {
		perMinute = DefaultRatePerMinute
	}
	l := &Limiter{now: time.Now}
	if perMinute > 0 {
		l.lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return l
}

// Allow consumes one token, or reports false and counts the drop.
func (l *Limiter) Allow() bool {
	if l.lim == nil {
		return true
	}
	if l.lim.AllowN(l.now(), 1) {
		return true
	}
	l.mu.Lock()
	l.dropped++
	l.mu.Unlock()
	return false
}

// Dropped returns how many deliveries were discarded.
func (l *Limiter) Dropped() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
