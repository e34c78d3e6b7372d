package photocache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is a concurrent-safe LRU photo cache with TTL expiration.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

type memoryEntry struct {
	entry     Entry
	createdAt time.Time
}

// NewMemory creates an in-process cache with the given capacity and TTL.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	return &Memory{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// photoKey builds the cache key for a photo at a width.
func photoKey(reference string, maxWidth int) string {
	return fmt.Sprintf("%s/%d", reference, maxWidth)
}

// Get retrieves a cached photo. Returns (nil, false) on miss or expiration.
func (c *Memory) Get(_ context.Context, reference string, maxWidth int) (*Entry, bool) {
	key := photoKey(reference, maxWidth)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	// Check TTL.
	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return nil, false
	}

	// Move to back (most recently used).
	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return &entry.entry, true
}

// Put stores a photo, evicting the oldest entry if at capacity.
func (c *Memory) Put(_ context.Context, reference string, maxWidth int, e Entry) {
	key := photoKey(reference, maxWidth)

	c.mu.Lock()
	defer c.mu.Unlock()

	// If key already exists, update in place and move to back.
	if _, ok := c.entries[key]; ok {
		c.entries[key] = &memoryEntry{entry: e, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	// Evict from front if at capacity.
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &memoryEntry{entry: e, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// Close is a no-op for the in-process backend.
func (c *Memory) Close() error {
	return nil
}

// Stats returns cache performance counters.
func (c *Memory) Stats() Stats {
	c.mu.RLock()
	entries := len(c.entries)
	maxEntries := c.maxEntries
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// removeFromOrder removes a key from the LRU order slice.
func (c *Memory) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
