package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/pkg/datagrid"
)

func (a *app) newViewCmd() *cobra.Command {
	var (
		src      sourceFlags
		query    queryFlags
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Show one page of records",
		Long: `View filters, sorts and pages records and prints the resulting page.

Examples:
  gridctl view people.json
  gridctl view people.jsonl --filter city=Berlin,Paris --sort age:desc
  gridctl view --store --filter age=30.. --page 2
  gridctl view --url https://api.example.com/users --columns users.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.validate(args); err != nil {
				return err
			}
			ctx := cmd.Context()
			setup, err := a.openSource(ctx, &src)
			if err != nil {
				return err
			}
			defer setup.close()

			table, err := datagrid.New(setup.cfg, a.renderer(cmd.OutOrStdout(), cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer table.Destroy()

			if setup.lookups {
				table.PrefetchLookups(ctx)
			}
			if err := query.apply(table); err != nil {
				return err
			}
			if cmd.Flags().Changed("page-size") {
				if err := table.SetPageSize(pageSize); err != nil {
					return usagef("page size %d: %v", pageSize, err)
				}
			}
			if page > 1 && !table.GoToPage(page) {
				return usagef("page %d is out of range (%d pages)", page, table.View().Page.Total)
			}
			table.Render()
			return nil
		},
	}
	src.register(cmd)
	query.register(cmd)
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default: page_size from config)")
	return cmd
}
