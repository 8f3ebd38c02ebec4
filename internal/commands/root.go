package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finboard/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "finboard",
		Short:   "Personal finance dashboard: import, categorize, and find savings",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "workspace directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(),
		newImportCommand(),
		newExportCommand(),
		newSuggestCommand(),
		newRecategorizeCommand(),
		newRecurringCommand(),
		newInsightsCommand(),
		newSyncCommand(),
		newServeCommand(),
	)

	return rootCmd
}
