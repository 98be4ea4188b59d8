package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver "sqlite3" (CGO)
	_ "modernc.org/sqlite"          // SQLite driver "sqlite" (pure Go, no CGO)
)

// Open opens a SQLite database with the named driver ("sqlite" or "sqlite3")
// and initializes the schema. The database file is created if it doesn't exist.
func Open(ctx context.Context, driver, path string) (*sql.DB, error) {
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMA foreign_keys is per connection, and SQLite allows one writer anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Initialize schema
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
