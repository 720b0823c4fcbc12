package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createMembersQuery := `
	CREATE TABLE IF NOT EXISTS members (
		seq BIGSERIAL UNIQUE,
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		profile_url TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		formatted_address TEXT NOT NULL DEFAULT '',
		business_trading_name TEXT NOT NULL DEFAULT '',
		contact_number TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		subscription_status TEXT NOT NULL,
		product_id TEXT NOT NULL DEFAULT '',
		region JSONB NOT NULL DEFAULT '[]'::jsonb
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_members_subscription_status
	ON members(subscription_status);
	`

	statements := []string{
		createMembersQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
