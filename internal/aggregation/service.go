package aggregation

import (
	"context"
	"fmt"

	"github.com/coverly/quotes/internal/cache"
	"github.com/coverly/quotes/internal/logger"
	"github.com/coverly/quotes/internal/quote"
)

type quoteLister interface {
	ListQuotes(ctx context.Context, coverageTypes []quote.CoverageType) ([]quote.Quote, error)
}

// Result is a ranked set of quotes. Best is the head of Ranked, or nil when
// there are no quotes.
type Result struct {
	Best   *quote.View  `json:"best"`
	Ranked []quote.View `json:"sortedQuotes"`
}

// Service answers ranking queries over live quotes. Results are cached under
// "<policy>:<coverage type>" in the AggregatedData namespace and are dropped
// only when a quote mutation clears every namespace.
type Service struct {
	quotes   quoteLister
	resolver *Resolver
	cache    cache.Cache
	log      *logger.Logger
}

func NewService(quotes quoteLister, resolver *Resolver, c cache.Cache, log *logger.Logger) *Service {
	return &Service{
		quotes:   quotes,
		resolver: resolver,
		cache:    c,
		log:      log.With("service", "AggregationService"),
	}
}

// Ranked returns the quotes of one coverage type ordered by policy.
func (s *Service) Ranked(ctx context.Context, policy Policy, coverageType quote.CoverageType) (*Result, error) {
	if !policy.Valid() {
		return nil, quote.WithField("aggregationType", fmt.Errorf("%q: %w", policy, quote.ErrInvalidPolicy))
	}
	if !coverageType.Valid() {
		return nil, quote.WithField("coverageType", fmt.Errorf("%q: %w", coverageType, quote.ErrInvalidCoverageType))
	}

	key := cache.Key(policy, coverageType)

	var cached Result
	ok, err := s.cache.Get(ctx, cache.AggregatedData, key, &cached)
	if err != nil {
		return nil, fmt.Errorf("cache.Get %s: %w", key, err)
	}
	if ok {
		if cached.Ranked == nil {
			cached.Ranked = []quote.View{}
		}
		return &cached, nil
	}

	quotes, err := s.quotes.ListQuotes(ctx, []quote.CoverageType{coverageType})
	if err != nil {
		return nil, fmt.Errorf("store.ListQuotes: %w", err)
	}

	result := Result{Ranked: []quote.View{}}
	if len(quotes) == 0 {
		s.log.Warn("no quotes found", "coverage_type", coverageType, "policy", policy)
	} else {
		strategy, err := s.resolver.Resolve(policy)
		if err != nil {
			s.log.Error("no strategy for policy", "policy", policy, "error", err)
			return nil, err
		}

		result.Ranked = quote.Views(strategy.Rank(quotes))
		best := result.Ranked[0]
		result.Best = &best
	}

	if err := s.cache.Put(ctx, cache.AggregatedData, key, result); err != nil {
		return nil, fmt.Errorf("cache.Put %s: %w", key, err)
	}
	return &result, nil
}
