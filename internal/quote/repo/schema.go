package repo

// Live quotes are unique per (coverage_type, provider_id). The partial index
// ignores soft-deleted rows, so a pair can be reused after a delete.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS provider (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ,
	CONSTRAINT uk_provider_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS quote (
	id BIGSERIAL PRIMARY KEY,
	coverage_type TEXT NOT NULL,
	price NUMERIC NOT NULL CHECK (price >= 0),
	provider_id BIGINT NOT NULL REFERENCES provider(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS uk_quote_coverage_type_provider_live
	ON quote(coverage_type, provider_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_quote_created_at ON quote(created_at DESC);
`

// SQLite keeps prices as TEXT so no precision is lost to REAL affinity.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS provider (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS quote (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	coverage_type TEXT NOT NULL,
	price TEXT NOT NULL,
	provider_id INTEGER NOT NULL REFERENCES provider(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS uk_quote_coverage_type_provider_live
	ON quote(coverage_type, provider_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_quote_created_at ON quote(created_at DESC);
`
