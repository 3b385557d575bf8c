package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

const mapsSQL = `
CREATE TABLE IF NOT EXISTS maps (
	key      TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	data     TEXT NOT NULL,
	saved_at INTEGER NOT NULL
)`

const metaSQL = `
CREATE TABLE IF NOT EXISTS store_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// createSchema creates the tables if they do not exist yet.
func createSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{mapsSQL, metaSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO store_meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprint(schemaVersion))
	if err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}
