package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the default time-to-live for cached entries
var DefaultTTL = 5 * time.Minute

// Entry represents a cached item
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
}

// Cache is a process-local TTL cache.
// Expired entries are dropped lazily when read, never swept in the background.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]Entry[T]
	ttl     time.Duration
	now     func() time.Time
	flight  singleflight.Group
}

// Option configures a Cache
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a cache whose entries live for ttl.
// A non-positive ttl falls back to DefaultTTL.
func New[T any](ttl time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		entries: make(map[string]Entry[T]),
		ttl:     ttl,
		now:     o.now,
	}
}

// GetOrSet retrieves a value from cache or stores the result of fn if it doesn't exist.
// Concurrent misses on the same key share a single call to fn.
// Errors returned by fn are passed through and never cached.
func (c *Cache[T]) GetOrSet(key string, fn func() (T, error), forceUpdate bool) (T, error) {
	if !forceUpdate {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		// another flight may have filled the entry while we waited
		if !forceUpdate {
			if v, ok := c.Get(key); ok {
				return v, nil
			}
		}

		value, err := fn()
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Get returns the live value stored under key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(entry.CreatedAt) >= c.ttl {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[T]{
		Value:     value,
		CreatedAt: c.now(),
	}
}

// Len returns the number of live entries. Expired entries are not counted,
// whether or not they have been read since they expired.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, entry := range c.entries {
		if now.Sub(entry.CreatedAt) < c.ttl {
			n++
		}
	}
	return n
}

// Clear removes all cached entries
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[T])
}

// TTL returns the entry lifetime.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}
