package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/internal/filter"
	"github.com/mesh-intelligence/datagrid/internal/schema"
	"github.com/mesh-intelligence/datagrid/pkg/datagrid"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// maxOptionsShown caps the distinct values listed per column.
const maxOptionsShown = 5

var detectColumns = []types.Column{
	{Field: "field", Label: "Field"},
	{Field: "label", Label: "Label"},
	{Field: "kind", Label: "Filter"},
	{Field: "distinct", Label: "Distinct"},
	{Field: "options", Label: "Values", Sortable: types.Flag(false)},
}

func (a *app) newDetectCmd() *cobra.Command {
	var (
		src   sourceFlags
		write string
	)
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Report the filter kind detected for each column",
		Long: `Detect samples the records and reports which filter each column gets:
text, multiselect, numberrange or daterange. With --write the columns are
saved as a definition file (TOML or JSON by extension) with the detected
filter kinds filled in, ready to edit and pass to --columns.`,
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

			det := filter.Detect(setup.cfg.Data, setup.cfg.Columns)
			rows := make([]types.Record, 0, len(setup.cfg.Columns))
			for _, c := range setup.cfg.Columns {
				kind, ok := det.Kinds[c.Field]
				if !ok {
					continue
				}
				opts := det.Distinct[c.Field]
				shown := opts
				if len(shown) > maxOptionsShown {
					shown = append(shown[:maxOptionsShown:maxOptionsShown], "…")
				}
				rows = append(rows, types.Record{
					"field":    types.String(c.Field),
					"label":    types.String(c.Label),
					"kind":     types.String(string(kind)),
					"distinct": types.Number(float64(len(opts))),
					"options":  types.String(strings.Join(shown, ", ")),
				})
			}

			if write != "" {
				if err := writeDetected(write, setup, det); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", write)
			}

			table, err := datagrid.New(types.Config{
				Columns:  detectColumns,
				Data:     rows,
				PageSize: max(len(rows), 1),
				Logger:   a.log,
			}, a.renderer(cmd.OutOrStdout(), cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer table.Destroy()
			table.Render()
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&write, "write", "w", "", "save a column definition with the detected filter kinds")
	return cmd
}

func writeDetected(path string, setup *tableSetup, det filter.Detection) error {
	cols := make([]types.Column, len(setup.cfg.Columns))
	for i, c := range setup.cfg.Columns {
		if c.FilterType == "" {
			c.FilterType = det.Kinds[c.Field]
		}
		cols[i] = c
	}
	def := schema.Definition{Columns: cols}
	if setup.cfg.IDField != types.DefaultIDField {
		def.IDField = setup.cfg.IDField
	}
	return schema.SaveDefinition(path, def)
}
