package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "The total number of cache hits",
	}, []string{"namespace"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "The total number of cache misses",
	}, []string{"namespace"})
	cacheClears = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_clears_total",
		Help: "The total number of namespace clears",
	}, []string{"namespace"})
)

// Instrument wraps c with hit, miss and clear counters.
func Instrument(c Cache) Cache {
	return &instrumented{next: c}
}

type instrumented struct {
	next Cache
}

func (i *instrumented) Get(ctx context.Context, ns Namespace, key string, dst any) (bool, error) {
	ok, err := i.next.Get(ctx, ns, key, dst)
	if err != nil {
		return false, err
	}
	if ok {
		cacheHits.WithLabelValues(string(ns)).Inc()
	} else {
		cacheMisses.WithLabelValues(string(ns)).Inc()
	}
	return ok, nil
}

func (i *instrumented) Put(ctx context.Context, ns Namespace, key string, value any) error {
	return i.next.Put(ctx, ns, key, value)
}

func (i *instrumented) Clear(ctx context.Context, ns Namespace) error {
	if err := i.next.Clear(ctx, ns); err != nil {
		return err
	}
	cacheClears.WithLabelValues(string(ns)).Inc()
	return nil
}

func (i *instrumented) ClearAll(ctx context.Context) error {
	if err := i.next.ClearAll(ctx); err != nil {
		return err
	}
	for _, ns := range Namespaces {
		cacheClears.WithLabelValues(string(ns)).Inc()
	}
	return nil
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
