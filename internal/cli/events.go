package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/config"
	natsclient "github.com/inucreativehrd21/FINAL-SERVER/internal/nats"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

// NewEventsCmd creates the 'events' command that replays a user's turn events from JetStream.
func NewEventsCmd() *cobra.Command {
	var (
		userID int64
		after  uint64
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print a user's recent turn events",
		Example: `  chatbot events --user 42
  chatbot events --user 42 --after 1200 --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user is required")
			}
			cfg := config.Load()
			if cfg.NATSURL == "" {
				return errors.New("NATS_URL is not set")
			}

			client, err := natsclient.Connect(cmd.Context(), natsclient.Config{
				URL:      cfg.NATSURL,
				Name:     "chatbot-events",
				CAFile:   cfg.NATSCAFile,
				CertFile: cfg.NATSCertFile,
				KeyFile:  cfg.NATSKeyFile,
				Token:    cfg.NATSToken,
			}, logger.NewNop())
			if err != nil {
				return err
			}
			defer client.Close()

			events, err := natsclient.NewStreamManager(client).RecentEvents(cmd.Context(), userID, after, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no events")
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for i := range events {
				if err := enc.Encode(&events[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user ID")
	cmd.Flags().Uint64Var(&after, "after", 0, "only events after this stream sequence")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events")
	return cmd
}
