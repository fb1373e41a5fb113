package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry holds a cached value together with its bookkeeping timestamps and
// its position in the access-order list.
type entry[V any] struct {
	value      V
	insertedAt time.Time
	accessedAt time.Time
	ttl        time.Duration // per-entry write-expiry override; 0 means spec-governed
	element    *list.Element
}

// Cache is a thread-safe, size-bounded cache with time-based expiry per its
// Spec. Eviction is least-recently-used by access time once the size bound
// is hit; a background goroutine sweeps expired entries. Safe for concurrent
// use from many request goroutines.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	order   *list.List // keys in access order, least recent at front
	spec    Spec
	done    chan struct{}
	closed  bool
}

// New creates a cache governed by the given spec. Close must be called to
// stop the cleanup goroutine.
func New[V any](spec Spec) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]*entry[V]),
		order:   list.New(),
		spec:    spec,
		done:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a live entry and marks it as recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	now := time.Now()
	if c.expired(e, now) {
		c.removeLocked(key, e)
		return zero, false
	}

	e.accessedAt = now
	c.order.MoveToBack(e.element)
	return e.value, true
}

// Set stores a value under the spec-governed expiry.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores a value with a per-entry time-since-write expiry that
// overrides the spec's write window. A zero ttl falls back to the spec.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.insertedAt = now
		e.accessedAt = now
		e.ttl = ttl
		c.order.MoveToBack(e.element)
		return
	}

	if c.spec.MaximumSize > 0 && len(c.entries) >= c.spec.MaximumSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &entry[V]{
		value:      value,
		insertedAt: now,
		accessedAt: now,
		ttl:        ttl,
		element:    elem,
	}
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.done)
		c.closed = true
	}
}

// expired reports whether the entry is past any of its expiry windows.
func (c *Cache[V]) expired(e *entry[V], now time.Time) bool {
	if e.ttl > 0 && now.Sub(e.insertedAt) > e.ttl {
		return true
	}
	if c.spec.ExpireAfterWrite > 0 && now.Sub(e.insertedAt) > c.spec.ExpireAfterWrite {
		return true
	}
	if c.spec.ExpireAfterAccess > 0 && now.Sub(e.accessedAt) > c.spec.ExpireAfterAccess {
		return true
	}
	return false
}

// evictOldest removes the least recently used entry. Must be called with
// mu held.
func (c *Cache[V]) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	if e, ok := c.entries[key]; ok {
		c.removeLocked(key, e)
	}
}

// removeLocked deletes an entry. Must be called with mu held.
func (c *Cache[V]) removeLocked(key string, e *entry[V]) {
	c.order.Remove(e.element)
	delete(c.entries, key)
}

// cleanupLoop periodically sweeps expired entries.
func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep removes all expired entries.
func (c *Cache[V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if c.expired(e, now) {
			c.removeLocked(key, e)
		}
	}
}
