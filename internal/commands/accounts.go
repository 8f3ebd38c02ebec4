package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finboard/internal/model"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			accts, err := w.svc.Accounts(w.ctx(cmd.Context()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(accts) == 0 {
				fmt.Fprintln(out, "No accounts.")
				return nil
			}
			for _, a := range accts {
				linked := ""
				if a.IsConnected() {
					linked = " (linked)"
				}
				fmt.Fprintf(out, "%-24s %-28s %-10s %12s %s%s\n",
					a.ID, a.Name, a.Type, a.Balance.StringFixed(2), a.AccountNumber, linked)
			}
			return nil
		},
	}

	cmd.AddCommand(newAccountsAddCommand())
	return cmd
}

func newAccountsAddCommand() *cobra.Command {
	var id, accountType, institution, number, balance string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a manually tracked account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", balance, err)
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			a, err := w.svc.CreateAccount(w.ctx(cmd.Context()), model.Account{
				ID:            id,
				Name:          args[0],
				Type:          model.AccountType(accountType),
				Institution:   institution,
				Balance:       bal,
				AccountNumber: number,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s (%s)\n", a.ID, a.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "account ID (generated when empty)")
	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeChecking), "checking, savings, credit or investment")
	cmd.Flags().StringVar(&institution, "institution", "", "institution name")
	cmd.Flags().StringVar(&number, "number", "", "account number (stored masked)")
	cmd.Flags().StringVar(&balance, "balance", "0", "current balance")

	return cmd
}
