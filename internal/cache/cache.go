package cache

import (
	"log/slog"
	"sync"
	"time"
)

// entry is a cached value with its expiration time.
type entry[T any] struct {
	value  T
	expiry time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL. Expired
// entries are removed lazily: on access, and in bulk whenever the
// cleanup interval has elapsed since the last sweep.
type Cache[T any] struct {
	name            string
	ttl             time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger

	mu          sync.Mutex
	data        map[string]entry[T]
	lastCleanup time.Time

	now func() time.Time
}

// New creates a named cache with a default TTL and cleanup interval.
func New[T any](name string, ttl, cleanupInterval time.Duration, logger *slog.Logger) *Cache[T] {
	return &Cache[T]{
		name:            name,
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		logger:          logger.With("cache", name),
		data:            make(map[string]entry[T]),
		lastCleanup:     time.Now(),
		now:             time.Now,
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeCleanupLocked()

	e, ok := c.data[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().After(e.expiry) {
		delete(c.data, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key using the cache's default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value under key with a custom TTL.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeCleanupLocked()
	c.data[key] = entry[T]{value: value, expiry: c.now().Add(ttl)}
}

// Delete removes a key from the cache.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry[T])
}

// Len returns the number of entries, expired ones included.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats describes the cache for operational tooling.
type Stats struct {
	Name            string        `json:"name"`
	Size            int           `json:"size"`
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	LastCleanup     time.Time     `json:"last_cleanup"`
}

// Stat returns current cache statistics.
func (c *Cache[T]) Stat() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:            c.name,
		Size:            len(c.data),
		TTL:             c.ttl,
		CleanupInterval: c.cleanupInterval,
		LastCleanup:     c.lastCleanup,
	}
}

// maybeCleanupLocked sweeps expired entries if the cleanup interval has
// elapsed. The caller must hold c.mu.
func (c *Cache[T]) maybeCleanupLocked() {
	now := c.now()
	if now.Sub(c.lastCleanup) <= c.cleanupInterval {
		return
	}
	c.lastCleanup = now

	removed := 0
	for key, e := range c.data {
		if now.After(e.expiry) {
			delete(c.data, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("cleaned up expired cache entries", "removed", removed)
	}
}
