package lookup

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	fetched time.Time
}

// Keyed caches lookup results by their scoping key (an organization id,
// a search query). A result that arrives after the key changed may still
// be stored under its own key; callers decide whether it is displayed by
// comparing against their current key.
type Keyed[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[K]entry[V]
}

// NewKeyed creates a cache. A zero ttl keeps entries until invalidated.
func NewKeyed[K comparable, V any](ttl time.Duration) *Keyed[K, V] {
	return &Keyed[K, V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the cached value for key.
func (c *Keyed[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key.
func (c *Keyed[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, fetched: c.now()}
}

// Load returns the cached value or calls fetch and caches its result.
// Errors are not cached.
func (c *Keyed[K, V]) Load(ctx context.Context, key K, fetch func(context.Context, K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fetch(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, v)
	return v, nil
}

// Invalidate drops key.
func (c *Keyed[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops everything.
func (c *Keyed[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len is the number of stored entries, expired ones included.
func (c *Keyed[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Keyed[K, V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.fetched) > c.ttl
}
