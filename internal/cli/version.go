package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/pkg/datagrid"
)

const modulePath = "github.com/mesh-intelligence/datagrid"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gridctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gridctl v%s\nmodule: %s\n", datagrid.Version, modulePath)
			return nil
		},
	}
}
