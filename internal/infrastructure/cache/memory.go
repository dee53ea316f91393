package cache

import (
	"context"
	"sync"
	"time"

	"github.com/homeplate/backend/internal/domain"
)

// cacheItem represents a single cached lookup with its expiration
type cacheItem struct {
	lookup     domain.CachedLookup
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory product cache with TTL support.
// It is bounded: when maxEntries is exceeded on insert, the oldest
// entries are evicted first.
type MemoryCache struct {
	data       map[string]cacheItem
	mutex      sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a new in-memory product cache. A maxEntries of
// zero or less falls back to 10000.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cache := &MemoryCache{
		data:       make(map[string]cacheItem),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// GetProduct retrieves a cached lookup. Entries past their freshness
// window are treated as misses.
func (c *MemoryCache) GetProduct(ctx context.Context, ingredientName, locationID string) (*domain.CachedLookup, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[Key(ingredientName, locationID)]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if c.now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	lookup := item.lookup
	return &lookup, nil
}

// PutProduct stores a lookup, unconditionally overwriting any prior entry
// for the same key with a fresh timestamp.
func (c *MemoryCache) PutProduct(ctx context.Context, ingredientName, locationID string, product domain.Product) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.data[Key(ingredientName, locationID)] = cacheItem{
		lookup:     domain.CachedLookup{Product: product, CachedAt: now},
		expiration: now.Add(c.ttl),
	}

	if len(c.data) > c.maxEntries {
		c.evictOldest()
	}

	return nil
}

// evictOldest drops the entries closest to expiry until the cache is
// back under its bound. Caller must hold the write lock.
func (c *MemoryCache) evictOldest() {
	for len(c.data) > c.maxEntries {
		var oldestKey string
		var oldestExp time.Time
		for key, item := range c.data {
			if oldestKey == "" || item.expiration.Before(oldestExp) {
				oldestKey = key
				oldestExp = item.expiration
			}
		}
		delete(c.data, oldestKey)
	}
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := c.now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
