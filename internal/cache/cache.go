// Package cache provides the read-through parse cache shared by the path
// compiler, the expression parser and the jq filter.
//
// Entries are populated at most once per key even under concurrent misses,
// and failed loads are never cached. By default the cache never evicts; a
// positive size switches to a bounded LRU.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cache is a concurrency-safe read-through cache keyed by raw source strings.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	bounded *lru.Cache[string, V]
	group   singleflight.Group
}

// New creates an unbounded cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// NewBounded creates a cache holding at most size entries, evicting the least
// recently used. A non-positive size returns an unbounded cache.
func NewBounded[V any](size int) *Cache[V] {
	if size <= 0 {
		return New[V]()
	}
	l, err := lru.New[string, V](size)
	if err != nil {
		// lru.New only fails for non-positive sizes, handled above
		return New[V]()
	}
	return &Cache[V]{bounded: l}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	if c.bounded != nil {
		return c.bounded.Get(key)
	}
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	return v, ok
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Concurrent misses for the same key share a single load call.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.put(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *Cache[V]) put(key string, v V) {
	if c.bounded != nil {
		c.bounded.Add(key, v)
		return
	}
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	if c.bounded != nil {
		return c.bounded.Len()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	if c.bounded != nil {
		c.bounded.Purge()
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]V)
	c.mu.Unlock()
}
