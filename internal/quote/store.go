package quote

//go:generate mockgen -package=quote -destination=mock_store_test.go -source=store.go Store

import (
	"context"
	"time"
)

// Store is the persistence port for quotes and providers. Every read ignores
// soft-deleted quotes; lookups that find nothing return (nil, nil).
type Store interface {
	// GetProvider returns the provider with id if it is not soft-deleted.
	GetProvider(ctx context.Context, id int64) (*Provider, error)
	// GetQuote returns the live quote with id joined with its provider.
	GetQuote(ctx context.Context, id int64) (*Quote, error)
	// FindQuote returns the live quote for (coverageType, providerID).
	FindQuote(ctx context.Context, coverageType CoverageType, providerID int64) (*Quote, error)
	// ListQuotes returns live quotes of live providers, newest first. An empty
	// coverageTypes slice means no filter.
	ListQuotes(ctx context.Context, coverageTypes []CoverageType) ([]Quote, error)

	// CreateQuote inserts q and returns its id. A live duplicate for the same
	// (coverage type, provider) fails with ErrDuplicateQuote.
	CreateQuote(ctx context.Context, q Quote) (int64, error)
	UpdateQuote(ctx context.Context, q Quote) error
	DeleteQuote(ctx context.Context, id int64, at time.Time) error

	// InTx runs fn against a Store bound to a single transaction, committing
	// when fn returns nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
}
