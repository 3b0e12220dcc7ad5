package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/internal/render"
	"github.com/mesh-intelligence/datagrid/pkg/datagrid"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// fileDownloader writes exports into dir under the requested filename.
type fileDownloader struct {
	dir string
}

func (d fileDownloader) Download(filename string, data []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.dir, filename), data, 0o644)
}

func (a *app) newExportCmd() *cobra.Command {
	var (
		src    sourceFlags
		query  queryFlags
		all    bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write records as CSV",
		Long: `Export writes the filtered records, across all pages, as CSV. With --all
filters are ignored and every record is written.

The CSV goes to stdout unless --output names a file, or a directory in
which case export.filename from config.yaml is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.validate(args); err != nil {
				return err
			}
			setup, err := a.openSource(cmd.Context(), &src)
			if err != nil {
				return err
			}
			defer setup.close()

			if output != "" && output != "-" {
				if fi, err := os.Stat(output); err == nil && fi.IsDir() {
					setup.cfg.Downloader = fileDownloader{dir: output}
				} else {
					setup.cfg.Downloader = fileDownloader{dir: filepath.Dir(output)}
					setup.cfg.ExportFilename = filepath.Base(output)
				}
			}

			table, err := datagrid.New(setup.cfg, render.Discard{})
			if err != nil {
				return err
			}
			defer table.Destroy()

			if setup.lookups {
				table.PrefetchLookups(cmd.Context())
			}
			if err := query.apply(table); err != nil {
				return err
			}
			var rows int
			table.OnExport(func(e types.ExportEvent) { rows = len(e.Data) })

			mode := types.ExportFiltered
			if all {
				mode = types.ExportAll
			}
			csv, err := table.ExportCSV(mode)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if setup.cfg.Downloader == nil {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), csv)
				return err
			}
			a.log.Info("exported", "rows", rows, "file", setup.cfg.ExportFilename)
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows\n", rows)
			return nil
		},
	}
	src.register(cmd)
	query.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "export every record, ignoring filters")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: stdout)")
	return cmd
}
