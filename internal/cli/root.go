// Package cli provides the command-line interface for the chatbot service.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/config"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/store"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the chatbot root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatbot",
		Short: "Chat orchestration and learning analytics in front of a RAG gateway",
		Long: `chatbot keeps per-user chat sessions, forwards each question with its
history and learner profile to the RAG gateway, and reports usage analytics.`,
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewAnalyticsCmd())
	rootCmd.AddCommand(NewEventsCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// openStore connects to the configured database and brings the schema up to date.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, int, error) {
	st, err := store.Open(ctx, store.Config{Driver: cfg.DatabaseDriver, URL: cfg.DatabaseURL})
	if err != nil {
		return nil, 0, fmt.Errorf("open database: %w", err)
	}
	applied, err := st.Migrate(ctx)
	if err != nil {
		_ = st.Close()
		return nil, 0, fmt.Errorf("migrate database: %w", err)
	}
	return st, applied, nil
}
