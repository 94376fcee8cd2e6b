package telemetry

import (
	"sync"
	"time"
)

// RateLimiter throttles high-frequency debug-path logging (per-frame scroll
// and gesture callbacks run well above any sane log rate). It is a plain
// token bucket built on the standard library; no suitable third-party rate
// limiter appears anywhere in the retrieval pack, so this stays stdlib-only.
type RateLimiter struct {
	mu       sync.Mutex
	rate     time.Duration
	burst    int
	tokens   int
	lastFill time.Time
}

// NewRateLimiter returns a limiter that allows up to burst events
// immediately, then refills one token every rate.
func NewRateLimiter(rate time.Duration, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rate:     rate,
		burst:    burst,
		tokens:   burst,
		lastFill: time.Now(),
	}
}

// Allow reports whether the caller may proceed (e.g. emit a log line) right
// now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	return r.AllowAt(time.Now())
}

// AllowAt is Allow with an explicit clock reading, for deterministic tests.
func (r *RateLimiter) AllowAt(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rate > 0 {
		elapsed := now.Sub(r.lastFill)
		if refill := int(elapsed / r.rate); refill > 0 {
			r.tokens += refill
			if r.tokens > r.burst {
				r.tokens = r.burst
			}
			r.lastFill = r.lastFill.Add(time.Duration(refill) * r.rate)
		}
	}

	if r.tokens <= 0 {
		return false
	}
	r.tokens--
	return true
}
