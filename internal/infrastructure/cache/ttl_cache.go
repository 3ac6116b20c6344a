package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an entry stays visible when Set is called without a ttl.
const DefaultTTL = 5 * time.Minute

// Loader produces the payload for a missing key.
type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type options struct {
	ttl      time.Duration
	now      func() time.Time
	coalesce bool
}

type Option func(*options)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCoalescing controls whether concurrent misses for one key share a single loader
// call. When disabled every miss runs its own loader.
func WithCoalescing(enabled bool) Option {
	return func(o *options) {
		o.coalesce = enabled
	}
}

// Cache is a read-through cache keyed by string. Expiry is checked lazily on read;
// nothing sweeps in the background.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	opts    options
	flights singleflight.Group
}

func New[V any](opts ...Option) *Cache[V] {
	o := options{
		ttl:      DefaultTTL,
		now:      time.Now,
		coalesce: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[V]{
		entries: make(map[string]entry[V]),
		opts:    o,
	}
}

func (c *Cache[V]) TTL() time.Duration {
	return c.opts.ttl
}

// Get returns the payload while now <= expiresAt. An expired entry is discarded.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.getLocked(key)
}

func (c *Cache[V]) getLocked(key string) (V, bool) {
	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.opts.now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.opts.ttl)
}

// SetWithTTL installs or replaces the entry with expiresAt = now + ttl.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.opts.now().Add(ttl),
	}
}

// FetchThrough serves key from the cache, or runs loader on a miss and caches its
// result with the default ttl. Loader errors are returned as-is and never cached.
//
// With coalescing on, the shared loader runs detached from any single caller's
// cancellation; each caller stops waiting when its own ctx is done.
func (c *Cache[V]) FetchThrough(ctx context.Context, key string, loader Loader[V]) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	if !c.opts.coalesce {
		return c.load(ctx, key, loader)
	}

	loadCtx := context.WithoutCancel(ctx)
	flight := c.flights.DoChan(key, func() (any, error) {
		// another flight may have filled the key between our miss and DoChan
		if value, ok := c.Get(key); ok {
			return value, nil
		}
		return c.load(loadCtx, key, loader)
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return zero, res.Err
		}
		value, _ := res.Val.(V)
		return value, nil
	}
}

func (c *Cache[V]) load(ctx context.Context, key string, loader Loader[V]) (V, error) {
	value, err := loader(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, value)
	return value, nil
}

// Delete drops one entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}

// Len counts stored entries, including expired ones not yet read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
