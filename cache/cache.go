// Package cache provides an in-memory result cache keyed by document
// content hash. Watch mode uses it to skip re-analyzing a file whose
// bytes have not changed between filesystem events.
package cache

import (
	"sync"
	"time"
)

// entry is one cached result.
type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e *entry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Stats are hit/miss counters for debugging.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Cache is a TTL map guarded by a mutex. Zero TTL entries never expire.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	hits    int64
	misses  int64
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get returns the value stored under key, if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired() {
		if ok {
			delete(c.entries, key)
		}
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key with an optional TTL (0 means no expiry).
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = e
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}
