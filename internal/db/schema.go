package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table under the "schema_version" key.
const SchemaVersion = "1"

// Schema defines the SQLite database schema for storing replay timelines.
// Entries keep their full JSON encoding in payload; time, type and slot are
// copied out for filtering.
const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	replay_path TEXT NOT NULL,
	parsed_at TEXT NOT NULL,
	entry_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entries (
	match_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	time INTEGER NOT NULL,
	type TEXT NOT NULL,
	slot INTEGER,
	payload TEXT NOT NULL,
	PRIMARY KEY(match_id, seq),
	FOREIGN KEY(match_id) REFERENCES matches(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(match_id, type);
CREATE INDEX IF NOT EXISTS idx_entries_slot ON entries(match_id, slot);

CREATE TABLE IF NOT EXISTS parser_logs (
	match_id TEXT PRIMARY KEY,
	logs TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(match_id) REFERENCES matches(id) ON DELETE CASCADE
);
`

// InitSchema initializes the database schema.
// It creates all tables and indexes if they don't already exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
