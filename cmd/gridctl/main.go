// Command gridctl views, filters, sorts, pages and exports tabular records
// with the datagrid engine.
package main

import (
	"os"

	"github.com/mesh-intelligence/datagrid/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
