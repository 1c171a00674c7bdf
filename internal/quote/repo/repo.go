package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/coverly/quotes/internal/quote"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Repo implements quote.Store on Postgres or SQLite.
type Repo struct {
	db     *sqlx.DB
	ext    sqlx.ExtContext
	driver string
}

var _ quote.Store = (*Repo)(nil)

type Options struct {
	Driver       string
	URL          string
	MaxOpenConns int
}

func New(opts Options) (*Repo, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("must set db_url")
	}

	switch opts.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if _, err := os.Stat(opts.URL); errors.Is(err, os.ErrNotExist) {
			f, err := os.Create(opts.URL)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	default:
		return nil, fmt.Errorf("unsupported db_driver %q. must be one of 'postgres' or 'sqlite3'", opts.Driver)
	}

	db, err := sqlx.Connect(opts.Driver, dsn(opts))
	if err != nil {
		return nil, fmt.Errorf("sqlx.Connect: %w", err)
	}

	// sqlx default is 0 (unlimited), while postgresql by default accepts up to 100 connections
	db.SetMaxOpenConns(opts.MaxOpenConns)

	r := &Repo{
		db:     db,
		ext:    db,
		driver: opts.Driver,
	}

	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Exec schema: %w", err)
	}

	return r, nil
}

func dsn(opts Options) string {
	if opts.Driver == DriverSQLite && !strings.Contains(opts.URL, "?") {
		return opts.URL + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return opts.URL
}

func (r *Repo) DB() *sqlx.DB {
	return r.db
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) createSchema() error {
	schema := postgresSchema
	if r.driver == DriverSQLite {
		schema = sqliteSchema
	}
	_, err := r.db.Exec(schema)
	return err
}

func (r *Repo) rebind(query string) string {
	return r.db.Rebind(query)
}

// InTx runs fn in a transaction. A Repo already bound to a transaction runs fn
// directly so nested calls share it.
func (r *Repo) InTx(ctx context.Context, fn func(quote.Store) error) error {
	if _, ok := r.ext.(*sqlx.Tx); ok {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx: %w", err)
	}

	txRepo := &Repo{db: r.db, ext: tx, driver: r.driver}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit: %w", translate(err))
	}
	return nil
}

const selectQuote = `
SELECT q.id, q.coverage_type, q.price, q.provider_id, q.created_at, q.deleted_at,
       p.name AS provider_name, p.deleted_at IS NOT NULL AS provider_deleted
FROM quote q
JOIN provider p ON p.id = q.provider_id`

func (r *Repo) GetProvider(ctx context.Context, id int64) (*quote.Provider, error) {
	const query = `SELECT id, name, created_at, deleted_at FROM provider WHERE id=? AND deleted_at IS NULL`

	var p quote.Provider
	if err := sqlx.GetContext(ctx, r.ext, &p, r.rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.Get provider: %w", err)
	}
	return &p, nil
}

func (r *Repo) GetQuote(ctx context.Context, id int64) (*quote.Quote, error) {
	query := selectQuote + ` WHERE q.id=? AND q.deleted_at IS NULL`

	var q quote.Quote
	if err := sqlx.GetContext(ctx, r.ext, &q, r.rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.Get quote: %w", err)
	}
	return &q, nil
}

func (r *Repo) FindQuote(ctx context.Context, coverageType quote.CoverageType, providerID int64) (*quote.Quote, error) {
	query := selectQuote + ` WHERE q.coverage_type=? AND q.provider_id=? AND q.deleted_at IS NULL`

	var q quote.Quote
	if err := sqlx.GetContext(ctx, r.ext, &q, r.rebind(query), coverageType, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.Get quote by coverage: %w", err)
	}
	return &q, nil
}

func (r *Repo) ListQuotes(ctx context.Context, coverageTypes []quote.CoverageType) ([]quote.Quote, error) {
	var (
		query = selectQuote + ` WHERE q.deleted_at IS NULL AND p.deleted_at IS NULL`
		args  []any
		err   error
	)
	if len(coverageTypes) > 0 {
		query, args, err = sqlx.In(query+` AND q.coverage_type IN (?)`, coverageTypes)
		if err != nil {
			return nil, fmt.Errorf("sqlx.In: %w", err)
		}
	}
	query += ` ORDER BY q.created_at DESC, q.id DESC`

	quotes := []quote.Quote{}
	if err := sqlx.SelectContext(ctx, r.ext, &quotes, r.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.Select quotes: %w", err)
	}
	return quotes, nil
}

func (r *Repo) CreateQuote(ctx context.Context, q quote.Quote) (int64, error) {
	const query = `INSERT INTO quote (coverage_type, price, provider_id, created_at) VALUES (?, ?, ?, ?) RETURNING id`

	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, r.rebind(query), q.CoverageType, q.Price, q.ProviderID, q.CreatedAt); err != nil {
		return 0, fmt.Errorf("db.Get create quote: %w", translate(err))
	}
	return id, nil
}

func (r *Repo) UpdateQuote(ctx context.Context, q quote.Quote) error {
	const query = `UPDATE quote SET coverage_type=?, price=? WHERE id=? AND deleted_at IS NULL`

	res, err := r.ext.ExecContext(ctx, r.rebind(query), q.CoverageType, q.Price, q.ID)
	if err != nil {
		return fmt.Errorf("db.Exec update quote: %w", translate(err))
	}
	return expectRow(res, q.ID)
}

func (r *Repo) DeleteQuote(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE quote SET deleted_at=? WHERE id=? AND deleted_at IS NULL`

	res, err := r.ext.ExecContext(ctx, r.rebind(query), at, id)
	if err != nil {
		return fmt.Errorf("db.Exec delete quote: %w", err)
	}
	return expectRow(res, id)
}

// expectRow turns a write that matched nothing into ErrQuoteNotFound. This
// happens when a concurrent delete won between the read and the write.
func expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("quote %d: %w", id, quote.ErrQuoteNotFound)
	}
	return nil
}

// translate maps unique violations onto the domain duplicates.
func translate(err error) error {
	var (
		pqErr  *pq.Error
		sqlErr sqlite3.Error
	)
	switch {
	case errors.As(err, &pqErr) && pqErr.Code == "23505":
		if pqErr.Constraint == "uk_provider_name" {
			return fmt.Errorf("%v: %w", err, quote.ErrDuplicateProvider)
		}
		return fmt.Errorf("%v: %w", err, quote.ErrDuplicateQuote)
	case errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		if strings.Contains(sqlErr.Error(), "provider.name") {
			return fmt.Errorf("%v: %w", err, quote.ErrDuplicateProvider)
		}
		return fmt.Errorf("%v: %w", err, quote.ErrDuplicateQuote)
	}
	return err
}
