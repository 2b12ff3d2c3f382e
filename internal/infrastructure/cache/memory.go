package cache

import (
	"context"
	"sync"
	"time"

	"github.com/labelscan/labelscan/internal/domain"
)

// cacheItem represents a single record in the cache with expiration
type cacheItem struct {
	Record     domain.EnrichmentRecord
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory record cache with TTL support
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}

	// Remove expired entries every 10 minutes
	go cache.cleanupExpired(10 * time.Minute)

	return cache
}

// Get retrieves a copy of a cached record
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.EnrichmentRecord, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	record := cloneRecord(item.Record)
	return &record, nil
}

// Set stores a copy of record with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, record *domain.EnrichmentRecord, ttl time.Duration) error {
	if record == nil {
		return domain.ErrInvalidRequest
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Record:     cloneRecord(*record),
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a record from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}

	return !time.Now().After(item.Expiration), nil
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired removes expired entries periodically until Close is called
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purge(time.Now())
		}
	}
}

func (c *MemoryCache) purge(now time.Time) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
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

// cloneRecord copies the slices and pointers of a record
func cloneRecord(r domain.EnrichmentRecord) domain.EnrichmentRecord {
	out := r
	if r.BannedCountries != nil {
		out.BannedCountries = append(domain.StringList(nil), r.BannedCountries...)
	}
	if r.Health.Rating != nil {
		rating := *r.Health.Rating
		out.Health.Rating = &rating
	}
	if r.RawAIResponse != nil {
		raw := *r.RawAIResponse
		out.RawAIResponse = &raw
	}
	return out
}
