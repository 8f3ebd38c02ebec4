package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finboard/internal/aggregator"
	"github.com/cleared-dev/finboard/internal/config"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull accounts and transactions from linked institutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			if len(w.cfg.Plaid.Connections) == 0 {
				return errors.New("no plaid connections configured")
			}
			client, err := newPlaidClient(w.cfg)
			if err != nil {
				return err
			}

			syncer := &aggregator.Syncer{
				Client:       client,
				Store:        w.store,
				LookbackDays: w.cfg.Plaid.LookbackDays,
			}
			res, err := syncer.Sync(w.ctx(cmd.Context()), connections(w.cfg))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d accounts: %d new transactions, %d skipped\n",
				res.Accounts, res.Created, res.Skipped)
			return nil
		},
	}
}

func newPlaidClient(cfg *config.Config) (*aggregator.Plaid, error) {
	return aggregator.NewPlaid(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Environment)
}

func connections(cfg *config.Config) []aggregator.Connection {
	conns := make([]aggregator.Connection, len(cfg.Plaid.Connections))
	for i, c := range cfg.Plaid.Connections {
		conns[i] = aggregator.Connection{Institution: c.Institution, AccessToken: c.AccessToken}
	}
	return conns
}
