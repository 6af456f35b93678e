package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL keyed byte-payload cache. A read past the entry's expiry is
// a miss; a miss is never an error and callers proceed to fetch fresh data.
// Concurrent miss-then-write races are tolerated; last writer wins.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// GetStale returns an expired entry when its time past expiry is within
	// maxStaleAge. Used to serve a board optimistically while it refreshes.
	GetStale(ctx context.Context, key string, maxStaleAge time.Duration) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// InMemoryCache implements Cache with a mutex-guarded map. Expired entries
// are retained until they age out of the stale window, then removed on access.
type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string]entry
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]entry)}
}

// Get returns the value when present and not expired.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// GetStale returns the value when present, including entries past expiry by
// at most maxStaleAge. Entries staler than that are deleted.
func (c *InMemoryCache) GetStale(ctx context.Context, key string, maxStaleAge time.Duration) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt.Add(maxStaleAge)) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores the value with the given TTL, replacing any previous entry.
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.data[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
