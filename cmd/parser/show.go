package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dota-timeline/internal/db"
)

type showOptions struct {
	typ     string
	slot    int32
	limit   int
	summary bool
}

func newShowCommand() *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show <database> <match-id>",
		Short: "Print a stored timeline",
		Long: `Print the entries of a match stored by "parse --mode database",
one JSON object per line, optionally filtered by type and slot.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			dbConn, err := db.Open(ctx, cfg.Database.Driver, args[0])
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer dbConn.Close()

			reader := db.NewReader(dbConn)
			match, err := reader.GetMatch(ctx, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.summary {
				counts, err := reader.CountEntriesByType(ctx, match.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "match %s: %s entries, parsed %s from %s\n",
					match.ID, humanize.Comma(int64(match.EntryCount)), humanize.Time(match.ParsedAt), match.ReplayPath)
				types := make([]string, 0, len(counts))
				for t := range counts {
					types = append(types, t)
				}
				sort.Strings(types)
				for _, t := range types {
					fmt.Fprintf(out, "  %-36s %s\n", t, humanize.Comma(int64(counts[t])))
				}
				return nil
			}

			q := db.EntryQuery{MatchID: match.ID, Limit: opts.limit}
			if cmd.Flags().Changed("type") {
				q.Type = &opts.typ
			}
			if cmd.Flags().Changed("slot") {
				q.Slot = &opts.slot
			}

			entries, err := reader.GetEntries(ctx, q)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintln(out, e.Payload)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.typ, "type", "", "Only entries of this type")
	cmd.Flags().Int32Var(&opts.slot, "slot", 0, "Only entries of this slot")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of entries (0 = all)")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print entry counts per type instead of entries")

	return cmd
}
