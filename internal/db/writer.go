package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Writer provides methods to write parsed timelines to the database.
type Writer struct {
	conn *sql.DB // nil when the writer is bound to a transaction
	db   execer
}

// NewWriter creates a new database writer.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{conn: db, db: db}
}

// WithTx runs fn with a writer bound to a single transaction. Everything fn
// writes is committed together, or rolled back when fn returns an error.
// Inside fn, tx methods reuse the same transaction.
func (w *Writer) WithTx(ctx context.Context, fn func(tx *Writer) error) error {
	if w.conn == nil {
		return fn(w)
	}

	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Writer{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Match represents one parsed replay.
type Match struct {
	ID         string
	RunID      string // unique per parse, distinguishes re-parses of the same replay
	ReplayPath string
	ParsedAt   time.Time
	EntryCount int
}

// Entry is a stored timeline entry.
type Entry struct {
	MatchID string
	Seq     int
	Time    int
	Type    string
	Slot    *int32
	Payload string // JSON encoding of the whole entry
}

// InsertMatch inserts or updates a match record. Updating in place keeps the
// match's entries, which would be cascaded away by a replace.
func (w *Writer) InsertMatch(ctx context.Context, m Match) error {
	query := `
		INSERT INTO matches (id, run_id, replay_path, parsed_at, entry_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			replay_path = excluded.replay_path,
			parsed_at = excluded.parsed_at,
			entry_count = excluded.entry_count
	`
	_, err := w.db.ExecContext(ctx, query,
		m.ID, m.RunID, m.ReplayPath, m.ParsedAt.UTC().Format(time.RFC3339), m.EntryCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

// DeleteEntries removes every entry of a match, so a re-parse starts clean.
func (w *Writer) DeleteEntries(ctx context.Context, matchID string) error {
	if _, err := w.db.ExecContext(ctx, `DELETE FROM entries WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// SetMeta sets a metadata key-value pair.
func (w *Writer) SetMeta(ctx context.Context, key, value string) error {
	query := `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`
	_, err := w.db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}

// BatchInsertEntries inserts multiple entries in a single transaction.
func (w *Writer) BatchInsertEntries(ctx context.Context, entries []Entry) error {
	return w.WithTx(ctx, func(tx *Writer) error {
		query := `
			INSERT INTO entries (match_id, seq, time, type, slot, payload)
			VALUES (?, ?, ?, ?, ?, ?)
		`

		stmt, err := tx.db.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			_, err := stmt.ExecContext(ctx, e.MatchID, e.Seq, e.Time, e.Type, e.Slot, e.Payload)
			if err != nil {
				return fmt.Errorf("failed to insert entry %d: %w", e.Seq, err)
			}
		}
		return nil
	})
}

// InsertParserLogs inserts parser logs for a match.
func (w *Writer) InsertParserLogs(ctx context.Context, matchID string, logs string) error {
	query := `
		INSERT OR REPLACE INTO parser_logs (match_id, logs, created_at)
		VALUES (?, ?, ?)
	`
	_, err := w.db.ExecContext(ctx, query, matchID, logs, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert parser logs: %w", err)
	}
	return nil
}
