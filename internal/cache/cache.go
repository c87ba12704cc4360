package cache

import (
	"sync"
	"time"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
)

// entry is a cached value with its expiry deadline
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache for read-path query results. Entries expire after a
// fixed TTL; a bounded capacity evicts expired entries first, then the entry
// closest to expiry.
type Cache[V any] struct {
	ttl        time.Duration
	maxEntries int
	clock      adapter.Clock

	mu      sync.RWMutex
	entries map[string]entry[V]
}

// New creates a TTL cache. maxEntries <= 0 means unbounded.
func New[V any](ttl time.Duration, maxEntries int, clock adapter.Clock) *Cache[V] {
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if present and unexpired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.clock.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores a value under key with the cache's TTL
func (c *Cache[V]) Set(key string, value V) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictLocked(now)
		}
	}

	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

// Invalidate drops a single key
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops all entries
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of entries, expired included
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked frees one slot: expired entries go first, otherwise the entry
// closest to expiry. Caller holds the write lock.
func (c *Cache[V]) evictLocked(now time.Time) {
	var victim string
	var victimExpiry time.Time

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			return
		}
		if victim == "" || e.expiresAt.Before(victimExpiry) {
			victim = key
			victimExpiry = e.expiresAt
		}
	}

	if victim != "" {
		delete(c.entries, victim)
	}
}
