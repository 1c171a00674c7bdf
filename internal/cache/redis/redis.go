package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/coverly/quotes/internal/cache"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every namespace hash name.
	Prefix string
	// TTL is applied to a whole namespace hash on each write; zero disables expiry.
	TTL time.Duration
}

// Cache keeps each namespace in a single Redis hash, so clearing a namespace
// is one DEL and never races with a partial scan.
type Cache struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func New(ctx context.Context, opts Options) (*Cache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("must set redis_addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(rdb, opts.Prefix, opts.TTL), nil
}

func NewWithClient(rdb *goredis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Cache) hashKey(ns cache.Namespace) string {
	if c.prefix == "" {
		return string(ns)
	}
	return c.prefix + ":" + string(ns)
}

func (c *Cache) Get(ctx context.Context, ns cache.Namespace, key string, dst any) (bool, error) {
	b, err := c.rdb.HGet(ctx, c.hashKey(ns), key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis hget %s: %w", ns, err)
	}
	if err := cache.Decode(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Put(ctx context.Context, ns cache.Namespace, key string, value any) error {
	b, err := cache.Encode(value)
	if err != nil {
		return err
	}

	hk := c.hashKey(ns)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, hk, key, b)
	if c.ttl > 0 {
		pipe.Expire(ctx, hk, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset %s: %w", ns, err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context, ns cache.Namespace) error {
	if err := c.rdb.Del(ctx, c.hashKey(ns)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", ns, err)
	}
	return nil
}

func (c *Cache) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, len(cache.Namespaces))
	for _, ns := range cache.Namespaces {
		keys = append(keys, c.hashKey(ns))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del all: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
