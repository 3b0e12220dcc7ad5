package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/internal/schema"
	"github.com/mesh-intelligence/datagrid/internal/sqlite"
)

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add records to the local record store",
		Long: `Import reads a JSON or JSONL records file and appends its records to the
record store in the data directory. Records whose id already exists are
skipped; records without an id get a new one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := schema.LoadRecords(args[0])
			if err != nil {
				return err
			}
			dir, err := a.resolveDataDir()
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
			store, err := sqlite.Open(cmd.Context(), sqlite.Options{
				DataDir: dir,
				IDField: a.cfg.GetString(cfgKeyIDField),
				Sync:    a.cfg.GetString(cfgKeySync),
				Logger:  a.log,
			})
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			n, err := store.Import(cmd.Context(), records)
			if cerr := store.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d skipped) into %s\n", n, len(records)-n, dir)
			return nil
		},
	}
}
