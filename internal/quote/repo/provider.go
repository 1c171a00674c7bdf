package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coverly/quotes/internal/quote"
)

// CreateProvider inserts a provider and returns its id. Names are unique
// across live and deleted providers.
func (r *Repo) CreateProvider(ctx context.Context, name string, at time.Time) (int64, error) {
	const query = `INSERT INTO provider (name, created_at) VALUES (?, ?) RETURNING id`

	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, r.rebind(query), name, at); err != nil {
		return 0, fmt.Errorf("db.Get create provider: %w", translate(err))
	}
	return id, nil
}

// ListProviders returns providers ordered by id. Soft-deleted providers are
// included only when all is set.
func (r *Repo) ListProviders(ctx context.Context, all bool) ([]quote.Provider, error) {
	query := `SELECT id, name, created_at, deleted_at FROM provider`
	if !all {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY id`

	providers := []quote.Provider{}
	if err := sqlx.SelectContext(ctx, r.ext, &providers, r.rebind(query)); err != nil {
		return nil, fmt.Errorf("db.Select providers: %w", err)
	}
	return providers, nil
}

// DeleteProvider soft-deletes a live provider. Its quotes stay in place but
// drop out of reads.
func (r *Repo) DeleteProvider(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE provider SET deleted_at=? WHERE id=? AND deleted_at IS NULL`

	res, err := r.ext.ExecContext(ctx, r.rebind(query), at, id)
	if err != nil {
		return fmt.Errorf("db.Exec delete provider: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("provider %d: %w", id, quote.ErrProviderNotFound)
	}
	return nil
}
