package pricing

import (
	"strings"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long a computed price is served from cache
	// before the pipeline recomputes it.
	DefaultCacheTTL = 24 * time.Hour

	fingerprintMaxLen = 100
)

type cacheEntry struct {
	price    string
	storedAt time.Time
}

// Cache maps description fingerprints to previously computed prices. Stale
// entries are ignored rather than removed: the map lives for the process
// lifetime and keys are bounded-length strings, so growth is limited by
// distinct-fingerprint cardinality.
//
// The cache is process-local. Multiple instances of the service hold
// independent caches, so a multi-instance deployment recomputes more often
// than a single instance would.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache with the given TTL. A non-positive TTL falls
// back to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Fingerprint normalizes a description into a cache key: lower-cased,
// trimmed, truncated to 100 characters. Descriptions differing only beyond
// the truncation point collide intentionally.
func Fingerprint(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	if len(s) > fingerprintMaxLen {
		s = s[:fingerprintMaxLen]
	}
	return s
}

// Get returns the cached price for a fingerprint, or false when there is
// no entry or the entry has gone stale.
func (c *Cache) Get(fingerprint string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		return "", false
	}
	return entry.price, true
}

// Put stores a price for a fingerprint, overwriting any previous entry.
func (c *Cache) Put(fingerprint, price string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = cacheEntry{price: price, storedAt: c.now()}
}
