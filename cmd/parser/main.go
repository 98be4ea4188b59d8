package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dota-timeline/internal/config"
	"dota-timeline/internal/ipc"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

func main() {
	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	output := ipc.NewOutput()

	rootCmd := &cobra.Command{
		Use:   "parser",
		Short: "Turn Dota 2 replays into match timelines",
		Long: `parser decodes a Dota 2 replay and writes its timeline: one ordered
record per draft pick, player interval, ward, combat-log entry and chat line.

Commands:
  parse     Parse a replay into JSON or SQLite
  show      Print a stored timeline`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: .dotatl.yaml in CWD or $HOME)")

	rootCmd.AddCommand(newParseCommand(output))
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error(err.Error())
		os.Exit(exitFailure)
	}

	os.Exit(exitSuccess)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parser %s\n", version)
		},
	}
}
