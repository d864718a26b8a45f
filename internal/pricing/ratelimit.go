package pricing

import (
	"sync"
	"time"
)

// TokenBucket is a best-effort, process-local rate limiter in front of
// outbound marketplace queries. Refill is all-or-nothing: once the interval
// has elapsed since the last refill, the bucket resets to full capacity.
//
// State is in-memory only. Multiple instances of the service each hold a
// full bucket, which under-throttles in aggregate; a shared store would be
// needed for true multi-instance limiting.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	interval   time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket creates a full bucket with the given capacity and refill
// interval.
func NewTokenBucket(capacity int, interval time.Duration) *TokenBucket {
	b := &TokenBucket{
		capacity: capacity,
		tokens:   capacity,
		interval: interval,
		now:      time.Now,
	}
	b.lastRefill = b.now()
	return b
}

// TryAcquire takes n tokens from the bucket. It never blocks: false means
// the caller should treat the request as rate-limited and try later.
func (b *TokenBucket) TryAcquire(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastRefill) > b.interval {
		b.tokens = b.capacity
		b.lastRefill = now
	}
	if b.tokens >= n {
		b.tokens -= n
		return true
	}
	return false
}

// IntervalGate enforces a minimum spacing between successive calls,
// independent of the token bucket. It gates only the most expensive
// external call: the live marketplace query.
type IntervalGate struct {
	mu   sync.Mutex
	min  time.Duration
	last time.Time
	now  func() time.Time
}

// NewIntervalGate creates a gate that lets the first call through
// immediately.
func NewIntervalGate(min time.Duration) *IntervalGate {
	return &IntervalGate{min: min, now: time.Now}
}

// TryPass reports whether enough time has elapsed since the last allowed
// call, and records the call time when it has.
func (g *IntervalGate) TryPass() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.min {
		return false
	}
	g.last = now
	return true
}
