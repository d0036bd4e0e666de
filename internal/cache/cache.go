// Package cache provides the two small bounded caches the dispatch engine
// leans on: a time-expiring cache for denial-message cooldowns and a
// least-frequently-used cache for persistent-store lookups.
//
// Both are safe for concurrent use. Per-key mutations are last-writer-wins,
// which is acceptable here: contention is low and every write is an
// idempotent corrective one.
package cache

import (
	"sync"
	"time"
)

// TTL is a bounded cache whose entries expire after a fixed duration.
type TTL struct {
	mu    sync.Mutex
	limit int
	ttl   time.Duration
	now   func() time.Time
	items map[string]ttlItem
}

type ttlItem struct {
	value   any
	expires time.Time
}

// NewTTL returns a TTL cache holding at most limit entries, each living for
// the given duration.
func NewTTL(limit int, ttl time.Duration) *TTL {
	return &TTL{
		limit: limit,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]ttlItem),
	}
}

// Get returns the live value for key, dropping it when expired.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(item.expires) {
		delete(c.items, key)
		return nil, false
	}
	return item.value, true
}

// Contains reports whether key holds a live entry.
func (c *TTL) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key. At capacity, expired entries are dropped
// first; if none have expired, the entry closest to expiry is evicted.
func (c *TTL) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok && len(c.items) >= c.limit {
		c.evictLocked()
	}
	c.items[key] = ttlItem{value: value, expires: c.now().Add(c.ttl)}
}

// Add stores value under key only when no live entry exists, and reports
// whether it stored. The check and the store run under one lock, so exactly
// one of several concurrent Adds for the same key wins.
func (c *TTL) Add(key string, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item, ok := c.items[key]; ok && !c.now().After(item.expires) {
		return false
	}
	if _, ok := c.items[key]; !ok && len(c.items) >= c.limit {
		c.evictLocked()
	}
	c.items[key] = ttlItem{value: value, expires: c.now().Add(c.ttl)}
	return true
}

// Delete removes key.
func (c *TTL) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *TTL) evictLocked() {
	now := c.now()
	var oldestKey string
	var oldest time.Time
	first := true
	for k, item := range c.items {
		if now.After(item.expires) {
			delete(c.items, k)
			continue
		}
		if first || item.expires.Before(oldest) {
			oldestKey, oldest = k, item.expires
			first = false
		}
	}
	if len(c.items) >= c.limit && !first {
		delete(c.items, oldestKey)
	}
}

// LFU is a bounded cache that evicts the least-frequently-read entry when
// full.
type LFU struct {
	mu    sync.Mutex
	limit int
	items map[string]*lfuItem
}

type lfuItem struct {
	value any
	hits  int
}

// NewLFU returns an LFU cache holding at most limit entries.
func NewLFU(limit int) *LFU {
	return &LFU{limit: limit, items: make(map[string]*lfuItem)}
}

// Get returns the cached value for key, counting the read.
func (c *LFU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item.hits++
	return item.value, true
}

// Set stores value under key, evicting the least-read entry at capacity.
func (c *LFU) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item, ok := c.items[key]; ok {
		item.value = value
		return
	}
	if len(c.items) >= c.limit {
		var coldKey string
		cold := -1
		for k, item := range c.items {
			if cold == -1 || item.hits < cold {
				coldKey, cold = k, item.hits
			}
		}
		delete(c.items, coldKey)
	}
	c.items[key] = &lfuItem{value: value}
}

// Delete removes key.
func (c *LFU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of cached entries.
func (c *LFU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
