package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "timeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func slot(v int32) *int32 { return &v }

func TestMatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	w, r := NewWriter(conn), NewReader(conn)

	parsedAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, w.InsertMatch(ctx, Match{
		ID:         "7900000001",
		RunID:      "run-1",
		ReplayPath: "/replays/7900000001.dem.bz2",
		ParsedAt:   parsedAt,
		EntryCount: 3,
	}))

	m, err := r.GetMatch(ctx, "7900000001")
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, 3, m.EntryCount)
	assert.True(t, parsedAt.Equal(m.ParsedAt))

	exists, err := r.GetMatchExists(ctx, "7900000001")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = r.GetMatch(ctx, "missing")
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestEntriesFilteredAndOrdered(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	w, r := NewWriter(conn), NewReader(conn)

	require.NoError(t, w.InsertMatch(ctx, Match{ID: "m1", RunID: "r", ReplayPath: "x", ParsedAt: time.Now()}))
	require.NoError(t, w.BatchInsertEntries(ctx, []Entry{
		{MatchID: "m1", Seq: 2, Time: 5, Type: "interval", Slot: slot(1), Payload: `{"time":5,"type":"interval","slot":1}`},
		{MatchID: "m1", Seq: 0, Time: -90, Type: "player_slot", Payload: `{"time":-90,"type":"player_slot"}`},
		{MatchID: "m1", Seq: 1, Time: 5, Type: "interval", Slot: slot(0), Payload: `{"time":5,"type":"interval","slot":0}`},
	}))

	all, err := r.GetEntries(ctx, EntryQuery{MatchID: "m1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{all[0].Seq, all[1].Seq, all[2].Seq})
	assert.Nil(t, all[0].Slot)

	typ := "interval"
	intervals, err := r.GetEntries(ctx, EntryQuery{MatchID: "m1", Type: &typ, Slot: slot(1)})
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, int32(1), *intervals[0].Slot)
	assert.JSONEq(t, `{"time":5,"type":"interval","slot":1}`, intervals[0].Payload)

	limited, err := r.GetEntries(ctx, EntryQuery{MatchID: "m1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	counts, err := r.CountEntriesByType(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"interval": 2, "player_slot": 1}, counts)

	require.NoError(t, w.DeleteEntries(ctx, "m1"))
	all, err = r.GetEntries(ctx, EntryQuery{MatchID: "m1"})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBatchInsertRollsBackOnDuplicate(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	w, r := NewWriter(conn), NewReader(conn)

	require.NoError(t, w.InsertMatch(ctx, Match{ID: "m1", RunID: "r", ReplayPath: "x", ParsedAt: time.Now()}))
	err := w.BatchInsertEntries(ctx, []Entry{
		{MatchID: "m1", Seq: 0, Type: "a", Payload: "{}"},
		{MatchID: "m1", Seq: 0, Type: "b", Payload: "{}"},
	})
	require.Error(t, err)

	all, err := r.GetEntries(ctx, EntryQuery{MatchID: "m1"})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWithTxRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	w, r := NewWriter(conn), NewReader(conn)

	require.NoError(t, w.InsertMatch(ctx, Match{ID: "m1", RunID: "run-1", ReplayPath: "x", ParsedAt: time.Now(), EntryCount: 1}))
	require.NoError(t, w.BatchInsertEntries(ctx, []Entry{{MatchID: "m1", Seq: 0, Type: "a", Payload: "{}"}}))

	errStop := errors.New("stop")
	err := w.WithTx(ctx, func(tx *Writer) error {
		require.NoError(t, tx.InsertMatch(ctx, Match{ID: "m1", RunID: "run-2", ReplayPath: "x", ParsedAt: time.Now()}))
		require.NoError(t, tx.DeleteEntries(ctx, "m1"))
		require.NoError(t, tx.BatchInsertEntries(ctx, []Entry{
			{MatchID: "m1", Seq: 0, Type: "b", Payload: "{}"},
			{MatchID: "m1", Seq: 1, Type: "b", Payload: "{}"},
		}))
		return errStop
	})
	require.ErrorIs(t, err, errStop)

	m, err := r.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, 1, m.EntryCount)

	counts, err := r.CountEntriesByType(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, counts)
}

func TestForeignKeysEnforcedInsideTx(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(openTestDB(t))

	err := w.WithTx(ctx, func(tx *Writer) error {
		return tx.BatchInsertEntries(ctx, []Entry{{MatchID: "missing", Seq: 0, Type: "a", Payload: "{}"}})
	})
	require.Error(t, err)
}

func TestMetaAndParserLogs(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	w, r := NewWriter(conn), NewReader(conn)

	require.NoError(t, w.SetMeta(ctx, "schema_version", SchemaVersion))
	v, err := r.GetMeta(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)

	v, err = r.GetMeta(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, w.InsertMatch(ctx, Match{ID: "m1", RunID: "r", ReplayPath: "x", ParsedAt: time.Now()}))
	require.NoError(t, w.InsertParserLogs(ctx, "m1", "{\"type\":\"log\"}\n"))
	logs, err := r.GetParserLogs(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "{\"type\":\"log\"}\n", logs)
}
