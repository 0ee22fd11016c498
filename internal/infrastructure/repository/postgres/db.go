package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS loans (
	id TEXT PRIMARY KEY,
	borrower_name TEXT NOT NULL DEFAULT '',
	borrower_email TEXT NOT NULL DEFAULT '',
	borrower_phone TEXT NOT NULL DEFAULT '',
	entity_name TEXT NOT NULL DEFAULT '',
	property_address TEXT NOT NULL DEFAULT '',
	property_type TEXT NOT NULL DEFAULT '',
	loan_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	property_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	ltv DOUBLE PRECISION NOT NULL DEFAULT 0,
	lender TEXT NOT NULL DEFAULT '',
	interest_only BOOLEAN NOT NULL DEFAULT FALSE,
	interest_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	monthly_rent DOUBLE PRECISION NOT NULL DEFAULT 0,
	annual_taxes DOUBLE PRECISION NOT NULL DEFAULT 0,
	annual_insurance DOUBLE PRECISION NOT NULL DEFAULT 0,
	annual_hoa DOUBLE PRECISION NOT NULL DEFAULT 0,
	dscr DOUBLE PRECISION NOT NULL DEFAULT 0,
	stage TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS loan_documents (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
	category TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	is_required BOOLEAN NOT NULL DEFAULT FALSE,
	notes TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL DEFAULT '',
	size_bytes BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loan_documents_loan ON loan_documents(loan_id, created_at, id);

CREATE TABLE IF NOT EXISTS loan_checklist_snapshots (
	id BIGSERIAL PRIMARY KEY,
	loan_id TEXT NOT NULL,
	event_id TEXT NOT NULL DEFAULT '',
	lender TEXT NOT NULL DEFAULT '',
	summary JSONB NOT NULL,
	missing JSONB NOT NULL DEFAULT '[]'::jsonb,
	dscr DOUBLE PRECISION NOT NULL DEFAULT 0,
	dscr_band TEXT NOT NULL DEFAULT '',
	ltv DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loan_checklist_snapshots_loan ON loan_checklist_snapshots(loan_id, created_at DESC);
`

// EnsureSchema creates the tables if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026030201)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
