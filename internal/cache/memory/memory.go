package memory

import (
	"context"
	"sync"
	"time"

	"github.com/coverly/quotes/internal/cache"
)

// entry stores one encoded value with its expiry. A zero expiresAt never expires.
type entry struct {
	expiresAt time.Time
	data      []byte
}

func (e entry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// Cache is an in-process cache.Cache. Values are stored encoded so every Get
// returns an independent copy.
type Cache struct {
	// TTL of each entry; zero disables expiry.
	TTL time.Duration
	// MaxItems caps each namespace; zero means unbounded.
	MaxItems int

	mu    sync.RWMutex
	items map[cache.Namespace]map[string]entry

	now func() time.Time
}

func New(ttl time.Duration, maxItems int) *Cache {
	return &Cache{
		TTL:      ttl,
		MaxItems: maxItems,
		items:    make(map[cache.Namespace]map[string]entry),
		now:      time.Now,
	}
}

func (c *Cache) Get(_ context.Context, ns cache.Namespace, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.items[ns][key]
	c.mu.RUnlock()

	if !ok || !e.live(c.now()) {
		return false, nil
	}
	if err := cache.Decode(e.data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Put(_ context.Context, ns cache.Namespace, key string, value any) error {
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}

	now := c.now()
	e := entry{data: data}
	if c.TTL > 0 {
		e.expiresAt = now.Add(c.TTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.items[ns]
	if !ok {
		bucket = make(map[string]entry)
		c.items[ns] = bucket
	}
	bucket[key] = e

	if c.MaxItems > 0 && len(bucket) > c.MaxItems {
		// Expired entries go first, then arbitrary ones other than the fresh key.
		for k, v := range bucket {
			if !v.live(now) {
				delete(bucket, k)
			}
		}
		for k := range bucket {
			if len(bucket) <= c.MaxItems {
				break
			}
			if k != key {
				delete(bucket, k)
			}
		}
	}
	return nil
}

func (c *Cache) Clear(_ context.Context, ns cache.Namespace) error {
	c.mu.Lock()
	delete(c.items, ns)
	c.mu.Unlock()
	return nil
}

func (c *Cache) ClearAll(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[cache.Namespace]map[string]entry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of live and expired entries held for ns.
func (c *Cache) Len(ns cache.Namespace) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items[ns])
}

func (c *Cache) Close() error { return nil }
