package aggregation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverly/quotes/internal/quote"
)

func quotesPriced(prices ...int64) []quote.Quote {
	out := make([]quote.Quote, 0, len(prices))
	for i, p := range prices {
		out = append(out, quote.Quote{
			ID:           int64(i + 1),
			CoverageType: quote.CoverageCar,
			Price:        decimal.NewFromInt(p),
			ProviderName: "provider",
		})
	}
	return out
}

func ids(quotes []quote.Quote) []int64 {
	out := make([]int64, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	var tests = []struct {
		name     string
		strategy Strategy
		input    []quote.Quote
		expected []int64
	}{
		{"cheapest", CheapestFirst(), quotesPriced(500, 100), []int64{2, 1}},
		{"most expensive", MostExpensiveFirst(), quotesPriced(500, 100), []int64{1, 2}},
		{"cheapest stable on ties", CheapestFirst(), quotesPriced(300, 100, 300, 100), []int64{2, 4, 1, 3}},
		{"most expensive stable on ties", MostExpensiveFirst(), quotesPriced(300, 100, 300, 100), []int64{1, 3, 2, 4}},
		{"cheapest empty", CheapestFirst(), []quote.Quote{}, []int64{}},
		{"most expensive nil", MostExpensiveFirst(), nil, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := tt.strategy.Rank(tt.input)
			assert.NotNil(t, ranked)
			assert.Equal(t, tt.expected, ids(ranked))
		})
	}
}

func TestRankDoesNotModifyInput(t *testing.T) {
	input := quotesPriced(500, 100, 300)
	CheapestFirst().Rank(input)
	assert.Equal(t, []int64{1, 2, 3}, ids(input))
}

func TestRankDecimalPrecision(t *testing.T) {
	input := []quote.Quote{
		{ID: 1, Price: decimal.RequireFromString("100.10")},
		{ID: 2, Price: decimal.RequireFromString("100.09")},
		{ID: 3, Price: decimal.RequireFromString("100.1")},
	}
	assert.Equal(t, []int64{2, 1, 3}, ids(CheapestFirst().Rank(input)))
}

func TestParsePolicy(t *testing.T) {
	var tests = []struct {
		input    string
		expected Policy
		ok       bool
	}{
		{"CHEAPEST", Cheapest, true},
		{"most_expensive", MostExpensive, true},
		{" Cheapest ", Cheapest, true},
		{"AVERAGE", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		p, err := ParsePolicy(tt.input)
		if !tt.ok {
			assert.ErrorIs(t, err, quote.ErrInvalidPolicy, tt.input)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, p)
	}
}

func TestResolver(t *testing.T) {
	r := DefaultResolver()
	for _, p := range []Policy{Cheapest, MostExpensive} {
		s, err := r.Resolve(p)
		require.NoError(t, err)
		assert.Equal(t, p, s.Policy())
	}

	_, err := NewResolver(CheapestFirst()).Resolve(MostExpensive)
	assert.ErrorIs(t, err, quote.ErrNoStrategy)
	assert.Equal(t, quote.GeneralError, quote.Classify(err))
}
