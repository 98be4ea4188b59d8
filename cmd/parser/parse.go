package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dota-timeline/internal/config"
	"dota-timeline/internal/db"
	"dota-timeline/internal/ipc"
	"dota-timeline/internal/parser"
	"dota-timeline/internal/parser/extractors"
)

type parseOptions struct {
	mode    string
	out     string
	matchID string
	gzip    bool
}

func newParseCommand(output *ipc.Output) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <replay>",
		Short: "Parse a replay into JSON or SQLite",
		Long: `Parse a Dota 2 replay (.dem, optionally .bz2, .gz or .zst compressed)
and write its timeline. Progress and log lines are written to stdout as NDJSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyParseFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			limit, err := cfg.MemoryLimitBytes()
			if err != nil {
				return err
			}
			if limit > 0 {
				debug.SetMemoryLimit(int64(limit))
				output.Log(ipc.LevelInfo, fmt.Sprintf("Set memory limit to %s", humanize.IBytes(limit)))
			}

			replayPath := args[0]
			matchID := opts.matchID
			if matchID == "" {
				matchID = matchIDFromPath(replayPath)
			}
			if opts.out == "" {
				return fmt.Errorf("--out is required")
			}

			if cfg.Output.Mode == config.ModeJSON {
				return runJSON(cmd.Context(), replayPath, opts.out, matchID, cfg, output)
			}
			return run(cmd.Context(), replayPath, opts.out, matchID, cfg, output)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", config.DefaultMode, "Output mode: 'json' or 'database'")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Path to output JSON file or SQLite database")
	cmd.Flags().StringVar(&opts.matchID, "match-id", "", "Optional match ID (defaults to replay filename)")
	cmd.Flags().BoolVar(&opts.gzip, "gzip", false, "Gzip the JSON output")

	return cmd
}

// applyParseFlags lets explicitly set flags override the loaded configuration.
func applyParseFlags(cmd *cobra.Command, cfg *config.Config, opts parseOptions) {
	if cmd.Flags().Changed("mode") {
		cfg.Output.Mode = opts.mode
	}
	if cmd.Flags().Changed("gzip") {
		cfg.Output.Gzip = opts.gzip
	}
}

// matchIDFromPath strips the directory and every replay extension:
// /replays/7900000001.dem.bz2 -> 7900000001.
func matchIDFromPath(path string) string {
	base := filepath.Base(path)
	for {
		ext := strings.ToLower(filepath.Ext(base))
		switch ext {
		case ".dem", ".bz2", ".gz", ".zst", ".zstd":
			base = base[:len(base)-len(ext)]
			continue
		}
		return base
	}
}

// parseWithProgress reads and parses a replay, reporting progress every
// cfg.Progress.IntervalTicks ticks and memory usage on the memory logger's schedule.
func parseWithProgress(ctx context.Context, replayPath string, cfg *config.Config, output *ipc.Output) ([]extractors.Entry, error) {
	output.Log(ipc.LevelInfo, fmt.Sprintf("Reading replay: %s", replayPath))
	data, err := parser.OpenReplay(replayPath)
	if err != nil {
		return nil, err
	}
	output.Log(ipc.LevelInfo, fmt.Sprintf("Replay size: %s", humanize.Bytes(uint64(len(data)))))

	memLogger := NewMemoryLogger(output, cfg.Memory.LogInterval, cfg.Progress.IntervalTicks)
	var lastTick uint32

	started := time.Now()
	entries, err := parser.ParseReplay(ctx, data, func(stage string, tick uint32, count int) {
		if stage == parser.StageParsing && cfg.Progress.IntervalTicks > 0 {
			if tick != 0 && tick-lastTick < uint32(cfg.Progress.IntervalTicks) {
				return
			}
			lastTick = tick
		}
		output.Progress(stage, tick, count)
		memLogger.LogIfNeeded(tick)
	})
	if err != nil {
		return nil, err
	}

	output.Log(ipc.LevelInfo, fmt.Sprintf("Parsed %s entries in %s",
		humanize.Comma(int64(len(entries))), time.Since(started).Round(time.Millisecond)))
	return entries, nil
}

// runJSON runs the parser in JSON output mode.
func runJSON(ctx context.Context, replayPath, outputPath, matchID string, cfg *config.Config, output *ipc.Output) error {
	output.Log(ipc.LevelInfo, fmt.Sprintf("Output JSON: %s", outputPath))
	output.Log(ipc.LevelInfo, fmt.Sprintf("Match ID: %s", matchID))

	entries, err := parseWithProgress(ctx, replayPath, cfg, output)
	if err != nil {
		return err
	}

	if err := writeEntriesFile(outputPath, entries, cfg.Output.Gzip); err != nil {
		return err
	}

	output.Log(ipc.LevelInfo, "Parsing complete!")
	output.Result(matchID, len(entries), outputPath)
	return nil
}

// run runs the parser in database output mode.
func run(ctx context.Context, replayPath, outPath, matchID string, cfg *config.Config, stdout *ipc.Output) error {
	// Everything logged for this match is kept and stored alongside it
	var logs bytes.Buffer
	output := ipc.NewOutputTo(io.MultiWriter(os.Stdout, &logs))

	runID := uuid.NewString()
	output.Log(ipc.LevelInfo, fmt.Sprintf("Output database: %s", outPath))
	output.Log(ipc.LevelInfo, fmt.Sprintf("Match ID: %s (run %s)", matchID, runID))

	output.Log(ipc.LevelInfo, "Opening database...")
	dbConn, err := db.Open(ctx, cfg.Database.Driver, outPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dbConn.Close()

	writer := db.NewWriter(dbConn)
	if err := writer.SetMeta(ctx, "schema_version", db.SchemaVersion); err != nil {
		return err
	}

	// Parse before writing, so a failed re-parse leaves the stored match untouched
	entries, err := parseWithProgress(ctx, replayPath, cfg, output)
	if err != nil {
		return err
	}

	match := db.Match{
		ID:         matchID,
		RunID:      runID,
		ReplayPath: replayPath,
		ParsedAt:   time.Now(),
		EntryCount: len(entries),
	}

	output.Log(ipc.LevelInfo, fmt.Sprintf("Storing %d entries...", len(entries)))
	err = writer.WithTx(ctx, func(tx *db.Writer) error {
		// Entries reference the match, so it must exist before they are stored
		if err := tx.InsertMatch(ctx, match); err != nil {
			return err
		}
		if err := tx.DeleteEntries(ctx, matchID); err != nil {
			return err
		}

		stored := 0
		for start := 0; start < len(entries); start += cfg.Database.BatchSize {
			end := min(start+cfg.Database.BatchSize, len(entries))
			batch, err := toDBEntries(matchID, start, entries[start:end])
			if err != nil {
				return err
			}
			if err := tx.BatchInsertEntries(ctx, batch); err != nil {
				return err
			}
			stored += len(batch)
			output.Log(ipc.LevelDebug, fmt.Sprintf("Inserted %d entries...", stored))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store entries: %w", err)
	}

	output.Log(ipc.LevelInfo, "Parsing complete!")
	if err := writer.InsertParserLogs(ctx, matchID, logs.String()); err != nil {
		output.Log(ipc.LevelWarn, fmt.Sprintf("Failed to store parser logs: %v", err))
	}
	stdout.Result(matchID, len(entries), outPath)
	return nil
}

// toDBEntries converts timeline entries to stored rows; seq continues from offset.
func toDBEntries(matchID string, offset int, entries []extractors.Entry) ([]db.Entry, error) {
	rows := make([]db.Entry, 0, len(entries))
	for i, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %d: %w", offset+i, err)
		}
		rows = append(rows, db.Entry{
			MatchID: matchID,
			Seq:     offset + i,
			Time:    e.Time,
			Type:    e.TypeName(),
			Slot:    e.Slot,
			Payload: string(payload),
		})
	}
	return rows, nil
}
