package quote

//go:generate mockgen -package=quote -destination=mock_cache_test.go github.com/coverly/quotes/internal/cache Cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coverly/quotes/internal/cache"
	"github.com/coverly/quotes/internal/logger"
)

// Service owns the quote lifecycle. Every mutation that commits clears all
// cache namespaces before returning, so a following read never sees stale data.
//
// The uniqueness check is a read followed by a write inside one store
// transaction. Concurrent creates for the same pair are not serialized here;
// the store's unique index rejects the loser with ErrDuplicateQuote.
type Service struct {
	store Store
	cache cache.Cache
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, c cache.Cache, log *logger.Logger) *Service {
	return &Service{
		store: store,
		cache: c,
		log:   log.With("service", "QuoteService"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type CreateRequest struct {
	ProviderID   int64
	CoverageType CoverageType
	Price        decimal.Decimal
}

// UpdateRequest changes only the fields that are non-nil.
type UpdateRequest struct {
	QuoteID      int64
	CoverageType *CoverageType
	Price        *decimal.Decimal
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return WithField("price", fmt.Errorf("%s: %w", p, ErrInvalidPrice))
	}
	return nil
}

func validateCoverageType(c CoverageType) error {
	if !c.Valid() {
		return WithField("coverageType", fmt.Errorf("%q: %w", c, ErrInvalidCoverageType))
	}
	return nil
}

// Create stores a new quote and returns its id.
func (s *Service) Create(ctx context.Context, req CreateRequest) (int64, error) {
	if err := validateCoverageType(req.CoverageType); err != nil {
		return 0, err
	}
	if err := validatePrice(req.Price); err != nil {
		return 0, err
	}

	var id int64
	err := s.store.InTx(ctx, func(tx Store) error {
		provider, err := tx.GetProvider(ctx, req.ProviderID)
		if err != nil {
			return fmt.Errorf("store.GetProvider: %w", err)
		}
		if provider == nil {
			s.log.Warn("provider not found", "provider_id", req.ProviderID)
			return WithField("providerId", fmt.Errorf("provider %d: %w", req.ProviderID, ErrProviderNotFound))
		}

		if err := s.checkDuplicate(ctx, tx, req.CoverageType, provider.ID); err != nil {
			return err
		}

		id, err = tx.CreateQuote(ctx, Quote{
			CoverageType: req.CoverageType,
			Price:        req.Price,
			ProviderID:   provider.ID,
			CreatedAt:    s.now(),
		})
		if err != nil {
			return s.writeErr("store.CreateQuote", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, s.invalidate(ctx)
}

// Update applies the supplied fields that differ from the stored quote. When
// nothing differs no write happens and the caches are left alone.
func (s *Service) Update(ctx context.Context, req UpdateRequest) error {
	if req.CoverageType != nil {
		if err := validateCoverageType(*req.CoverageType); err != nil {
			return err
		}
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return err
		}
	}

	var dirty bool
	err := s.store.InTx(ctx, func(tx Store) error {
		q, err := s.liveQuote(ctx, tx, req.QuoteID)
		if err != nil {
			return err
		}

		next := *q
		if req.CoverageType != nil && *req.CoverageType != q.CoverageType {
			if err := s.checkDuplicate(ctx, tx, *req.CoverageType, q.ProviderID); err != nil {
				return err
			}
			next.CoverageType = *req.CoverageType
			dirty = true
		}
		if req.Price != nil && !req.Price.Equal(q.Price) {
			next.Price = *req.Price
			dirty = true
		}

		if !dirty {
			return nil
		}
		if err := tx.UpdateQuote(ctx, next); err != nil {
			return s.writeErr("store.UpdateQuote", err)
		}
		return nil
	})
	if err != nil || !dirty {
		return err
	}

	return s.invalidate(ctx)
}

// Delete soft-deletes the quote. Deleting an already deleted quote is ErrQuoteNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := s.liveQuote(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.DeleteQuote(ctx, id, s.now()); err != nil {
			return fmt.Errorf("store.DeleteQuote: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.invalidate(ctx)
}

// Get returns the view of a live quote whose provider is also live. Results
// are cached per quote id.
func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	key := cache.Key(id)

	var cached View
	ok, err := s.cache.Get(ctx, cache.QuoteCache, key, &cached)
	if err != nil {
		return nil, fmt.Errorf("cache.Get quote %d: %w", id, err)
	}
	if ok {
		return &cached, nil
	}

	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("store.GetQuote: %w", err)
	}
	if q == nil || q.ProviderDeleted {
		s.log.Warn("quote not found", "quote_id", id)
		return nil, WithField("quoteId", fmt.Errorf("quote %d: %w", id, ErrQuoteNotFound))
	}

	view := q.View()
	if err := s.cache.Put(ctx, cache.QuoteCache, key, view); err != nil {
		return nil, fmt.Errorf("cache.Put quote %d: %w", id, err)
	}
	return &view, nil
}

// List returns views of live quotes, newest first. An empty filter matches
// every coverage type. Not cached.
func (s *Service) List(ctx context.Context, coverageTypes []CoverageType) ([]View, error) {
	for _, c := range coverageTypes {
		if err := validateCoverageType(c); err != nil {
			return nil, err
		}
	}

	quotes, err := s.store.ListQuotes(ctx, coverageTypes)
	if err != nil {
		return nil, fmt.Errorf("store.ListQuotes: %w", err)
	}
	return Views(quotes), nil
}

func (s *Service) liveQuote(ctx context.Context, tx Store, id int64) (*Quote, error) {
	q, err := tx.GetQuote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("store.GetQuote: %w", err)
	}
	if q == nil {
		s.log.Warn("quote not found", "quote_id", id)
		return nil, WithField("quoteId", fmt.Errorf("quote %d: %w", id, ErrQuoteNotFound))
	}
	return q, nil
}

func (s *Service) checkDuplicate(ctx context.Context, tx Store, c CoverageType, providerID int64) error {
	existing, err := tx.FindQuote(ctx, c, providerID)
	if err != nil {
		return fmt.Errorf("store.FindQuote: %w", err)
	}
	if existing != nil {
		s.log.Warn("quote already exists", "coverage_type", c, "provider_id", providerID, "quote_id", existing.ID)
		return WithField("coverageType", fmt.Errorf("%s for provider %d: %w", c, providerID, ErrDuplicateQuote))
	}
	return nil
}

// writeErr tags a duplicate reported by the store's unique index the same way
// as one caught by checkDuplicate.
func (s *Service) writeErr(op string, err error) error {
	if errors.Is(err, ErrDuplicateQuote) {
		s.log.Warn("quote rejected by unique index", "error", err)
		return WithField("coverageType", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) invalidate(ctx context.Context) error {
	if err := s.cache.ClearAll(ctx); err != nil {
		s.log.Error("cache invalidation failed", "error", err)
		return fmt.Errorf("cache.ClearAll: %w", err)
	}
	return nil
}
