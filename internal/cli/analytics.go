package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/analytics"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/config"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/service"
)

// NewAnalyticsCmd creates the 'analytics' command that prints a user's usage snapshot.
func NewAnalyticsCmd() *cobra.Command {
	var (
		userID int64
		days   int
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print a user's usage analytics as JSON",
		Example: `  chatbot analytics --user 42
  chatbot analytics --user 42 --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user is required")
			}

			cfg := config.Load()
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			st, _, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			snap, err := service.NewAnalyticsService(st, loc).Compute(cmd.Context(), userID, days)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user ID")
	cmd.Flags().IntVar(&days, "days", analytics.DefaultWindowDays, "window length in days")
	return cmd
}
