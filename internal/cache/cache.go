// Package cache provides a small capped TTL cache. It replaces the legacy
// module-level chain cache with an injected dependency so callers can swap it
// out in tests.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is the injected cache contract
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Evict(key string)
}

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a capped, TTL-bound cache with oldest-first eviction once the
// cap is reached. Safe for concurrent use.
type TTLCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List // front = oldest
}

// NewTTLCache creates a cache holding at most maxSize entries, each valid
// for ttl.
func NewTTLCache(maxSize int, ttl time.Duration) *TTLCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &TTLCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns a live entry, expiring it on access if its TTL has passed
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.removeLocked(el)
		return nil, false
	}
	return e.value, true
}

// Set stores a value, evicting the oldest entry when the cap is reached
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}

	for c.order.Len() >= c.maxSize {
		c.removeLocked(c.order.Front())
	}

	el := c.order.PushBack(&entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.items[key] = el
}

// Evict removes an entry if present
func (c *TTLCache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Len returns the number of entries currently held, including expired ones
// not yet collected.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *TTLCache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.items, e.key)
	c.order.Remove(el)
}
