package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finboard/internal/importer"
	"github.com/cleared-dev/finboard/internal/importlog"
)

func newImportCommand() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import CSV statements into an account",
		Long: "Import CSV statements into an account. With no files, every CSV in\n" +
			"import/ is imported and then moved to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			type source struct {
				name, path string
				pending    bool
			}
			var sources []source
			if len(args) == 0 {
				files, err := importer.Scan(w.root)
				if err != nil {
					return err
				}
				for _, f := range files {
					sources = append(sources, source{name: f.Name, path: f.Path, pending: true})
				}
			}
			for _, a := range args {
				sources = append(sources, source{name: filepath.Base(a), path: a})
			}

			out := cmd.OutOrStdout()
			if len(sources) == 0 {
				fmt.Fprintln(out, "Nothing to import.")
				return nil
			}

			ctx := w.ctx(cmd.Context())
			for _, src := range sources {
				data, err := os.ReadFile(src.path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", src.path, err)
				}
				res, err := w.svc.ImportCSV(ctx, accountID, string(data))
				if err != nil {
					return fmt.Errorf("importing %s: %w", src.name, err)
				}

				fmt.Fprintf(out, "%s: imported %d transactions (%s format)\n", src.name, len(res.Imported), res.Format)
				for _, e := range res.Errors {
					fmt.Fprintf(out, "  %s\n", e)
				}

				// One entry per file, written once the file is stored.
				entry := importlog.Entry{
					Timestamp: time.Now(),
					Source:    src.name,
					AccountID: accountID,
					Format:    res.Format,
					Imported:  len(res.Imported),
					Errors:    len(res.Errors),
				}
				if err := importlog.Append(w.root, []importlog.Entry{entry}); err != nil {
					return err
				}

				if src.pending {
					if err := importer.MarkProcessed(w.root, src.name); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account ID to import into (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newExportCommand() *cobra.Command {
	var accountID, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			csvText, err := w.svc.ExportCSV(w.ctx(cmd.Context()), accountID)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), csvText)
				return err
			}
			if err := os.WriteFile(outPath, []byte(csvText), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "only export this account")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")

	return cmd
}
