package aggregation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coverly/quotes/internal/quote"
)

// Policy names a ranking strategy.
type Policy string

const (
	Cheapest      Policy = "CHEAPEST"
	MostExpensive Policy = "MOST_EXPENSIVE"
)

func (p Policy) Valid() bool {
	return p == Cheapest || p == MostExpensive
}

// ParsePolicy accepts any letter case.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%q: %w", s, quote.ErrInvalidPolicy)
	}
	return p, nil
}

// Strategy orders quotes for one policy. Rank never modifies its input and
// returns an empty, non-nil slice for empty input. Quotes with equal prices
// keep their input order.
type Strategy interface {
	Policy() Policy
	Rank(quotes []quote.Quote) []quote.Quote
}

type cheapest struct{}

func (cheapest) Policy() Policy { return Cheapest }

func (cheapest) Rank(quotes []quote.Quote) []quote.Quote {
	return rank(quotes, func(a, b quote.Quote) int { return a.Price.Cmp(b.Price) })
}

type mostExpensive struct{}

func (mostExpensive) Policy() Policy { return MostExpensive }

func (mostExpensive) Rank(quotes []quote.Quote) []quote.Quote {
	return rank(quotes, func(a, b quote.Quote) int { return b.Price.Cmp(a.Price) })
}

func rank(quotes []quote.Quote, cmp func(a, b quote.Quote) int) []quote.Quote {
	out := make([]quote.Quote, len(quotes))
	copy(out, quotes)
	slices.SortStableFunc(out, cmp)
	return out
}

// CheapestFirst ranks by ascending price.
func CheapestFirst() Strategy { return cheapest{} }

// MostExpensiveFirst ranks by descending price.
func MostExpensiveFirst() Strategy { return mostExpensive{} }

// Resolver looks strategies up by policy.
type Resolver struct {
	strategies map[Policy]Strategy
}

// NewResolver registers strategies. A later strategy for the same policy
// replaces an earlier one.
func NewResolver(strategies ...Strategy) *Resolver {
	r := &Resolver{strategies: make(map[Policy]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Policy()] = s
	}
	return r
}

// DefaultResolver knows every Policy.
func DefaultResolver() *Resolver {
	return NewResolver(CheapestFirst(), MostExpensiveFirst())
}

// Resolve fails with quote.ErrNoStrategy when nothing is registered for p.
func (r *Resolver) Resolve(p Policy) (Strategy, error) {
	s, ok := r.strategies[p]
	if !ok {
		return nil, fmt.Errorf("policy %q: %w", p, quote.ErrNoStrategy)
	}
	return s, nil
}
