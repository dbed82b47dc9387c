package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	plan       TEXT NOT NULL,
	balance    REAL NOT NULL,
	phone      TEXT NOT NULL,
	data_left  TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// InitSchema creates the database tables if they don't exist.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}
	return nil
}
