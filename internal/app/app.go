package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/coverly/quotes/internal/aggregation"
	"github.com/coverly/quotes/internal/cache"
	"github.com/coverly/quotes/internal/cache/memory"
	"github.com/coverly/quotes/internal/cache/redis"
	"github.com/coverly/quotes/internal/config"
	"github.com/coverly/quotes/internal/logger"
	"github.com/coverly/quotes/internal/quote"
	"github.com/coverly/quotes/internal/quote/repo"
)

// App holds the wired store, cache and services shared by the server and
// the admin CLI.
type App struct {
	Repo       *repo.Repo
	Cache      cache.Cache
	Quotes     *quote.Service
	Aggregates *aggregation.Service
}

func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r, err := repo.New(repo.Options{
		Driver:       cfg.DBDriver,
		URL:          cfg.DBURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.New: %w", err)
	}

	c, err := OpenCache(ctx, cfg, log)
	if err != nil {
		r.Close()
		return nil, err
	}

	return &App{
		Repo:       r,
		Cache:      c,
		Quotes:     quote.NewService(r, c, log),
		Aggregates: aggregation.NewService(r, aggregation.DefaultResolver(), c, log),
	}, nil
}

// OpenCache builds the configured cache wrapped with metrics.
func OpenCache(ctx context.Context, cfg config.Config, log *logger.Logger) (cache.Cache, error) {
	var c cache.Cache
	switch cfg.CacheType {
	case config.CacheRedis:
		rc, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.CachePrefix,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("redis.New: %w", err)
		}
		c = rc
	case config.CacheMemory:
		c = memory.New(cfg.CacheTTL, cfg.CacheMaxItems)
	case config.CacheNone:
		c = cache.NewNoop(log)
	default:
		return nil, fmt.Errorf("unsupported cache_type %q", cfg.CacheType)
	}

	log.Info("cache ready", "cache_type", cfg.CacheType)
	return cache.Instrument(c), nil
}

func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.Repo.Close())
}
