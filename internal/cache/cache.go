package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coverly/quotes/internal/logger"
)

// Namespace is a logically separate keyspace that can be cleared on its own.
type Namespace string

const (
	QuoteCache     Namespace = "QuoteCache"
	AggregatedData Namespace = "AggregatedData"
)

// Namespaces lists every namespace in use. ClearAll clears exactly these.
var Namespaces = []Namespace{QuoteCache, AggregatedData}

// Cache stores JSON-encoded values by (namespace, key). Values read back are
// always fresh copies, so callers may not mutate cached state through them.
type Cache interface {
	// Get decodes the value stored under key into dst and reports whether it was found.
	Get(ctx context.Context, ns Namespace, key string, dst any) (bool, error)
	Put(ctx context.Context, ns Namespace, key string, value any) error
	Clear(ctx context.Context, ns Namespace) error
	ClearAll(ctx context.Context) error
	Close() error
}

// Key joins parts into a single cache key.
func Key(parts ...any) string {
	s := make([]string, 0, len(parts))
	for _, p := range parts {
		s = append(s, fmt.Sprint(p))
	}
	return strings.Join(s, ":")
}

func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache encode: %w", err)
	}
	return b, nil
}

func Decode(b []byte, dst any) error {
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}

// Noop never stores anything.
type Noop struct {
	log *logger.Logger
}

func NewNoop(log *logger.Logger) *Noop {
	return &Noop{log: log}
}

func (n *Noop) Get(context.Context, Namespace, string, any) (bool, error) { return false, nil }

func (n *Noop) Put(context.Context, Namespace, string, any) error { return nil }

func (n *Noop) Clear(_ context.Context, ns Namespace) error {
	n.log.Warn("cache type is noop, so nothing to do", "namespace", ns)
	return nil
}

func (n *Noop) ClearAll(context.Context) error {
	n.log.Warn("cache type is noop, so nothing to do")
	return nil
}

func (n *Noop) Close() error { return nil }
