package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finboard/internal/categorize"
)

func newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest a category for a transaction description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Classification is pure, so no workspace is needed.
			fmt.Fprintln(cmd.OutOrStdout(), categorize.Suggest(strings.Join(args, " ")))
			return nil
		},
	}
}

func newRecategorizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize",
		Short: "Re-run the classifier over stored transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			n, err := w.svc.Recategorize(w.ctx(cmd.Context()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recategorized %d transactions\n", n)
			return nil
		},
	}
}

func newRecurringCommand() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "List recurring charges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			if !cmd.Flags().Changed("months") {
				months = w.cfg.Recurring.TimeframeMonths
			}
			charges, err := w.svc.Recurring(w.ctx(cmd.Context()), months)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(charges) == 0 {
				fmt.Fprintln(out, "No recurring charges found.")
				return nil
			}
			for _, c := range charges {
				fmt.Fprintf(out, "%-28s %-16s %-10s %10s\n",
					c.Merchant, c.Category, c.Frequency, c.AverageAmount.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 3, "timeframe in months")

	return cmd
}

func newInsightsCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show savings insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx := w.ctx(cmd.Context())
			load := w.svc.Insights
			if refresh {
				load = w.svc.RefreshInsights
			}
			ins, err := load(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ins) == 0 {
				fmt.Fprintln(out, "No insights. Run with --refresh after importing transactions.")
				return nil
			}
			for _, in := range ins {
				fmt.Fprintf(out, "[%s] %s\n", in.Type, in.Title)
				fmt.Fprintf(out, "  %s\n", in.Description)
				if in.SavingsAmount.Valid {
					fmt.Fprintf(out, "  Potential savings: $%s\n", in.SavingsAmount.Decimal.StringFixed(2))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "regenerate insights from current data")

	return cmd
}
