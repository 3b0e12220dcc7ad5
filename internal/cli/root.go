// Package cli implements the gridctl command-line interface: viewing,
// filtering and exporting record files, the SQLite record store and
// remote JSON APIs through the datagrid engine.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/datagrid/internal/paths"
	"github.com/mesh-intelligence/datagrid/internal/render"
	"github.com/mesh-intelligence/datagrid/pkg/datagrid"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and state shared by subcommands. Each root
// command gets its own app so tests can run commands side by side.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	plainMode bool
	verbose   bool

	cfg   *viper.Viper
	level *slog.LevelVar
	log   *slog.Logger
}

// NewRootCmd creates the top-level "gridctl" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{level: new(slog.LevelVar)}
	root := &cobra.Command{
		Use:   "gridctl",
		Short: "Filter, sort, page and export tabular records",
		Long: `gridctl drives the datagrid engine from the command line. Records come
from a JSON or JSONL file, the local record store, or a remote JSON API.`,
		Version:           datagrid.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "record store directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().BoolVar(&a.plainMode, "plain", false, "plain text output even on a terminal")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(a.newViewCmd())
	root.AddCommand(a.newExportCmd())
	root.AddCommand(a.newDetectCmd())
	root.AddCommand(a.newImportCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.verbose {
		a.level.Set(slog.LevelDebug)
	} else {
		a.level.Set(slog.LevelWarn)
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.level}))

	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log.Debug("config loaded", "dir", dir, "file", cfg.ConfigFileUsed())
	return nil
}

// resolveDataDir applies --data-dir > config data_dir > GRIDCTL_DATA_DIR >
// platform default.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

func (a *app) renderer(out, errOut io.Writer) types.Renderer {
	return render.New(out, errOut, render.Options{JSON: a.jsonMode, Plain: a.plainMode})
}

// usageError marks a bad argument or flag value.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// userSentinels are errors caused by what the user asked for rather than by
// the system.
var userSentinels = []error{
	types.ErrConfiguration,
	types.ErrValidation,
	types.ErrUnknownField,
	types.ErrNotSortable,
	types.ErrNotFilterable,
	types.ErrInvalidFilter,
	types.ErrPermissionDenied,
	types.ErrUnexpectedResponse,
	os.ErrNotExist,
}

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, s := range userSentinels {
		if errors.Is(err, s) {
			return exitUserError
		}
	}
	return exitSysError
}
