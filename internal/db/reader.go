package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrMatchNotFound is returned when no match has the requested id.
var ErrMatchNotFound = errors.New("match not found")

// Reader provides methods to read parsed timelines from the database.
type Reader struct {
	db *sql.DB
}

// NewReader creates a new database reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// EntryQuery represents query parameters for entries.
type EntryQuery struct {
	MatchID string
	Type    *string
	Slot    *int32
	Limit   int // zero means no limit
}

// GetMatch retrieves a match record.
func (r *Reader) GetMatch(ctx context.Context, matchID string) (Match, error) {
	query := `
		SELECT id, run_id, replay_path, parsed_at, entry_count
		FROM matches
		WHERE id = ?
	`
	var m Match
	var parsedAt string
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(
		&m.ID, &m.RunID, &m.ReplayPath, &parsedAt, &m.EntryCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if err != nil {
		return Match{}, fmt.Errorf("failed to query match: %w", err)
	}

	m.ParsedAt, err = time.Parse(time.RFC3339, parsedAt)
	if err != nil {
		return Match{}, fmt.Errorf("failed to parse match timestamp: %w", err)
	}
	return m, nil
}

// GetMatchExists checks whether a match exists.
func (r *Reader) GetMatchExists(ctx context.Context, matchID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE id = ?`, matchID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}
	return count > 0, nil
}

// GetEntries retrieves entries matching the query parameters in timeline order.
func (r *Reader) GetEntries(ctx context.Context, q EntryQuery) ([]Entry, error) {
	query := `
		SELECT match_id, seq, time, type, slot, payload
		FROM entries
		WHERE match_id = ?
	`
	args := []interface{}{q.MatchID}

	if q.Type != nil {
		query += " AND type = ?"
		args = append(args, *q.Type)
	}

	if q.Slot != nil {
		query += " AND slot = ?"
		args = append(args, *q.Slot)
	}

	query += " ORDER BY seq ASC"

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var slot sql.NullInt32
		if err := rows.Scan(&e.MatchID, &e.Seq, &e.Time, &e.Type, &slot, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if slot.Valid {
			v := slot.Int32
			e.Slot = &v
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// CountEntriesByType returns the number of entries per type for a match.
func (r *Reader) CountEntriesByType(ctx context.Context, matchID string) (map[string]int, error) {
	query := `
		SELECT type, COUNT(*)
		FROM entries
		WHERE match_id = ?
		GROUP BY type
	`
	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("failed to scan entry count: %w", err)
		}
		counts[typ] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry counts: %w", err)
	}

	return counts, nil
}

// GetParserLogs retrieves the parser logs stored for a match.
func (r *Reader) GetParserLogs(ctx context.Context, matchID string) (string, error) {
	var logs string
	err := r.db.QueryRowContext(ctx, `SELECT logs FROM parser_logs WHERE match_id = ?`, matchID).Scan(&logs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get parser logs: %w", err)
	}
	return logs, nil
}

// GetMeta retrieves a metadata value. A missing key yields an empty string.
func (r *Reader) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}
