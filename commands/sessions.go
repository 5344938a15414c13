package commands

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/assessortools/covmap/config"
	"github.com/assessortools/covmap/session"
)

// connectNATSStore dials the configured NATS server and opens the
// session bucket.
func connectNATSStore(ctx context.Context, cfg *config.Config, app *App) (*session.NATSStore, error) {
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("nats.url is not configured; session persistence requires a NATS server")
	}

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("covmap"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", cfg.NATS.URL, err)
	}

	return session.NewNATSStore(ctx, nc,
		session.WithSessionTTL(cfg.NATS.SessionTTL),
		session.WithStoreLogger(app.Logger()),
	)
}

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored analysis sessions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored session ids",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := app.Config()
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				store, err := connectNATSStore(ctx, cfg, app)
				if err != nil {
					return err
				}

				ids, err := store.List(ctx)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no stored sessions")
					return nil
				}

				for _, id := range ids {
					sess, err := store.Get(ctx, id)
					if err != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s (unreadable: %v)\n", id, err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n",
						id, sess.StandardCode, sess.Filename, sess.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <session-id>",
			Short: "Delete a stored session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := app.Config()
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				store, err := connectNATSStore(ctx, cfg, app)
				if err != nil {
					return err
				}

				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			},
		},
	)

	return cmd
}
