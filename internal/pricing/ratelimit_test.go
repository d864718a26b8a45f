package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketDrainAndRefill(t *testing.T) {
	now := time.Now()
	b := NewTokenBucket(3, time.Minute)
	b.now = func() time.Time { return now }
	b.lastRefill = now

	for i := 0; i < 3; i++ {
		assert.True(t, b.TryAcquire(1), "acquire %d should succeed", i+1)
	}
	assert.False(t, b.TryAcquire(1), "bucket should be empty")

	// Before the interval elapses the bucket stays empty.
	now = now.Add(30 * time.Second)
	assert.False(t, b.TryAcquire(1))

	// After the interval, refill is all-or-nothing: back to full capacity.
	now = now.Add(31 * time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, b.TryAcquire(1), "post-refill acquire %d should succeed", i+1)
	}
	assert.False(t, b.TryAcquire(1))
}

func TestTokenBucketAcquireMoreThanAvailable(t *testing.T) {
	b := NewTokenBucket(2, time.Minute)
	assert.False(t, b.TryAcquire(3))
	// The failed acquisition consumed nothing.
	assert.True(t, b.TryAcquire(2))
}

func TestIntervalGate(t *testing.T) {
	now := time.Now()
	g := NewIntervalGate(10 * time.Second)
	g.now = func() time.Time { return now }

	assert.True(t, g.TryPass(), "first call passes immediately")
	assert.False(t, g.TryPass(), "second call within interval is gated")

	now = now.Add(9 * time.Second)
	assert.False(t, g.TryPass())

	now = now.Add(time.Second)
	assert.True(t, g.TryPass())
	assert.False(t, g.TryPass())
}
