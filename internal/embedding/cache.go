package embedding

import (
	"sync"
	"time"
)

// Cache memoizes interests-text -> vector lookups so regenerating embeddings
// for an unchanged profile skips the API round-trip.
type Cache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	v  []float64
	ts time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: make(map[string]cacheEntry), ttl: ttl}
}

func (c *Cache) Get(text string) ([]float64, bool) {
	c.mu.RLock()
	e, ok := c.store[text]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, text)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *Cache) Set(text string, v []float64) {
	c.mu.Lock()
	c.store[text] = cacheEntry{v: v, ts: time.Now()}
	c.mu.Unlock()
}
