// ============================================================================
// Bayan - bilingual language with embedded logic programming
// ============================================================================
//
// Package:     cache
// Description: Thread-safe in-memory cache with sliding TTL and LRU
//              eviction. Engines share one instance to reuse compiled
//              modules; concurrent misses of one key compute it once.
// Created:     2025-10-06
// License:     MIT
// ============================================================================

package cache

import (
	"strings"
	"sync"
	"time"
)

// Entry represents a cached item with expiration
type Entry struct {
	Value      interface{}
	Expiration time.Time
	lastUsed   time.Time
	ttl        time.Duration
}

// IsExpired checks if the entry has expired
func (e *Entry) IsExpired(now time.Time) bool {
	if e.Expiration.IsZero() {
		return false // Never expires
	}
	return now.After(e.Expiration)
}

// touch extends a sliding expiration
func (e *Entry) touch(now time.Time) {
	e.lastUsed = now
	if e.ttl > 0 {
		e.Expiration = now.Add(e.ttl)
	}
}

// call is an in-flight GetOrSet computation
type call struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Cache is a thread-safe in-memory cache with TTL support
type Cache struct {
	mu       sync.Mutex
	items    map[string]*Entry
	inflight map[string]*call
	maxItems int
	ttl      time.Duration
	now      func() time.Time

	// Metrics
	hits      int64
	misses    int64
	evictions int64
}

// Config holds cache configuration
type Config struct {
	MaxItems int
	// TTL is renewed on every hit; zero selects the default
	TTL time.Duration
}

// Stats holds cache counters
type Stats struct {
	Items     int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits as a percentage of lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems: 256,
		TTL:      10 * time.Minute,
	}
}

// New creates a new cache instance. Expired entries are swept lazily,
// so a cache owns no goroutine and needs no Close.
func New(cfg Config) *Cache {
	def := DefaultConfig()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &Cache{
		items:    make(map[string]*Entry),
		inflight: make(map[string]*call),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Get retrieves a value from the cache and renews its TTL
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *Cache) get(key string) (interface{}, bool) {
	now := c.now()
	entry, exists := c.items[key]
	if !exists || entry.IsExpired(now) {
		if exists {
			delete(c.items, key)
		}
		c.misses++
		return nil, false
	}
	entry.touch(now)
	c.hits++
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL; zero never expires
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

func (c *Cache) set(key string, value interface{}, ttl time.Duration) {
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.sweep()
		if len(c.items) >= c.maxItems {
			c.evictLeastRecentlyUsed()
		}
	}
	entry := &Entry{Value: value, ttl: ttl}
	entry.touch(c.now())
	c.items[key] = entry
}

// Delete removes a value from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeletePrefix removes every key starting with prefix and returns how
// many were removed
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			n++
		}
	}
	return n
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Entry)
}

// Size returns the number of items in the cache, expired ones included
// until they are swept
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Items:     len(c.items),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictLeastRecentlyUsed removes the entry used longest ago (must be
// called with lock held)
func (c *Cache) evictLeastRecentlyUsed() {
	var oldestKey string
	var oldest time.Time

	for key, entry := range c.items {
		if oldestKey == "" || entry.lastUsed.Before(oldest) {
			oldestKey = key
			oldest = entry.lastUsed
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.evictions++
	}
}

// sweep removes all expired entries (must be called with lock held)
func (c *Cache) sweep() {
	now := c.now()
	for key, entry := range c.items {
		if entry.IsExpired(now) {
			delete(c.items, key)
		}
	}
}

// GetOrSet returns the cached value for key or computes and stores it.
// Concurrent callers missing the same key share one computation. Errors
// are returned to every waiter and not cached.
func (c *Cache) GetOrSet(key string, fn func() (interface{}, error)) (interface{}, error) {
	return c.GetOrSetWithTTL(key, c.ttl, fn)
}

// GetOrSetWithTTL is like GetOrSet but with custom TTL
func (c *Cache) GetOrSetWithTTL(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if val, ok := c.get(key); ok {
		c.mu.Unlock()
		return val, nil
	}
	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-inflight.done
		return inflight.value, inflight.err
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	// fn runs unlocked so it may use the cache itself
	cl.value, cl.err = fn()

	c.mu.Lock()
	delete(c.inflight, key)
	if cl.err == nil {
		c.set(key, cl.value, ttl)
	}
	c.mu.Unlock()
	close(cl.done)
	return cl.value, cl.err
}
