package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/config"
)

// NewMigrateCmd creates the 'migrate' command that applies pending schema migrations.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			st, applied, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d migration(s) applied\n", cfg.DatabaseDriver, applied)
			return nil
		},
	}
}
