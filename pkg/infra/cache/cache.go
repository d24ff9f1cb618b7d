// Package cache provides a small in-memory TTL cache. modelscout uses it
// to memoize per-model endpoint and parameter lookups between requests;
// the catalog snapshot itself lives in the domain cache under
// pkg/unit/catalog.
package cache

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
	Size(ctx context.Context) int
}

type memCache struct {
	mu    sync.RWMutex
	items map[string]entry
	opts  *options
}

type entry struct {
	value      any
	expiration time.Time
}

type options struct {
	defaultTTL time.Duration
	maxSize    int
}

type Option func(*options)

func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = ttl
	}
}

func WithMaxSize(maxSize int) Option {
	return func(o *options) {
		o.maxSize = maxSize
	}
}

func New(opts ...Option) Cache {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &memCache{
		items: make(map[string]entry),
		opts:  o,
	}
}

func (c *memCache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found {
		return nil, false
	}

	// Expired entries are reported as misses here and reclaimed by the
	// next Set that hits the size cap. Deleting would need the write lock.
	if !it.expiration.IsZero() && time.Now().After(it.expiration) {
		return nil, false
	}

	return it.value, true
}

func (c *memCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.maxSize > 0 && len(c.items) >= c.opts.maxSize {
		c.evictOldest()
	}

	if ttl == 0 {
		ttl = c.opts.defaultTTL
	}

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}

	c.items[key] = entry{value: value, expiration: expiration}
}

func (c *memCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *memCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}

func (c *memCache) Size(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest reclaims expired entries, or failing that drops the live
// entry closest to expiry. Called with the write lock held.
func (c *memCache) evictOldest() {
	now := time.Now()

	purged := false
	for key, it := range c.items {
		if !it.expiration.IsZero() && now.After(it.expiration) {
			delete(c.items, key)
			purged = true
		}
	}
	if purged {
		return
	}

	var oldestKey string
	var oldestTime time.Time
	for key, it := range c.items {
		if it.expiration.IsZero() {
			continue
		}
		if oldestTime.IsZero() || it.expiration.Before(oldestTime) {
			oldestKey = key
			oldestTime = it.expiration
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
