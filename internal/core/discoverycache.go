package core

import (
	"context"
	"sync"
	"time"
)

// discoveryCacheEntry holds one groupVersion's cached resource list plus the
// time it was populated, used to compute TTL expiry.
type discoveryCacheEntry struct {
	resources []ResourceDefinition
	loadedAt  time.Time
}

// discoveryCache is a per-Conn, write-once-per-groupVersion cache with a
// TTL. Concurrent readers may race to populate the same key; per spec §5,
// both writes produce the same value, so the race is harmless — the cache
// does not serialize loads behind a singleflight, matching the teacher's
// defaultLogger CAS-then-reload pattern (internal/core/log.go) generalized
// from a single cached value to a map of them.
type discoveryCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]discoveryCacheEntry
}

// newDiscoveryCache returns a discoveryCache whose entries expire after ttl.
// A ttl of 0 disables caching: every call reloads.
func newDiscoveryCache(ttl time.Duration) *discoveryCache {
	return &discoveryCache{ttl: ttl, entries: make(map[string]discoveryCacheEntry)}
}

// getOrLoad returns the cached resources for key if present and unexpired,
// otherwise calls load and stores the result (even if load returns an
// error, the error is not cached: a future call retries).
func (c *discoveryCache) getOrLoad(_ context.Context, key string, load func() ([]ResourceDefinition, error)) ([]ResourceDefinition, error) {
	if entry, ok := c.lookup(key); ok {
		return entry, nil
	}

	resources, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = discoveryCacheEntry{resources: resources, loadedAt: time.Now()}
	c.mu.Unlock()

	return resources, nil
}

func (c *discoveryCache) lookup(key string) ([]ResourceDefinition, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(entry.loadedAt) > c.ttl {
		return nil, false
	}
	return entry.resources, true
}

// invalidate drops every cached entry, forcing the next getOrLoad to reload.
func (c *discoveryCache) invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]discoveryCacheEntry)
	c.mu.Unlock()
}
