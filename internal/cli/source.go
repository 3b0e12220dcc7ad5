package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/internal/remote"
	"github.com/mesh-intelligence/datagrid/internal/schema"
	"github.com/mesh-intelligence/datagrid/internal/sqlite"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// sourceFlags select where records come from. Exactly one of file, store
// and remote may be used.
type sourceFlags struct {
	file    string
	columns string
	store   bool
	remote  bool
	url     string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "records file: JSON array, {\"data\": [...]} or JSONL (- for stdin)")
	cmd.Flags().StringVarP(&f.columns, "columns", "c", "", "column definition file (JSON or TOML); inferred from records when omitted")
	cmd.Flags().BoolVar(&f.store, "store", false, "read records from the local record store")
	cmd.Flags().BoolVar(&f.remote, "remote", false, "read records from remote.base_url")
	cmd.Flags().StringVar(&f.url, "url", "", "read records from this API base URL")
}

func (f *sourceFlags) validate(args []string) error {
	if len(args) == 1 && f.file == "" {
		f.file = args[0]
	}
	n := 0
	for _, set := range []bool{f.file != "", f.store, f.remote || f.url != ""} {
		if set {
			n++
		}
	}
	switch n {
	case 0:
		return usagef("no records: give a file, --store, --remote or --url")
	case 1:
		return nil
	default:
		return usagef("--file, --store and --remote/--url are mutually exclusive")
	}
}

// tableSetup is a table configuration with its records loaded.
type tableSetup struct {
	cfg     types.Config
	lookups bool
	close   func() error
}

// openSource loads records and columns and returns a table configuration.
// The caller must call close.
func (a *app) openSource(ctx context.Context, f *sourceFlags) (*tableSetup, error) {
	setup := &tableSetup{close: func() error { return nil }}
	cfg := types.Config{
		PageSize:       a.cfg.GetInt(cfgKeyPageSize),
		IDField:        a.cfg.GetString(cfgKeyIDField),
		ExportFilename: a.cfg.GetString(cfgKeyExportFilename),
		Logger:         a.log,
	}

	var def *schema.Definition
	if f.columns != "" {
		d, err := schema.LoadDefinition(f.columns)
		if err != nil {
			return nil, err
		}
		def = &d
		if d.PageSize > 0 {
			cfg.PageSize = d.PageSize
		}
		if d.IDField != "" {
			cfg.IDField = d.IDField
		}
	}

	switch {
	case f.file != "":
		records, err := schema.LoadRecords(f.file)
		if err != nil {
			return nil, err
		}
		cfg.Data = records

	case f.store:
		dir, err := a.resolveDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		store, err := sqlite.Open(ctx, sqlite.Options{
			DataDir: dir,
			IDField: cfg.IDField,
			Sync:    a.cfg.GetString(cfgKeySync),
			Logger:  a.log,
		})
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		setup.close = store.Close
		records, err := store.Load(ctx)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load store: %w", err)
		}
		cfg.Data = records
		cfg.Source = store

	default:
		rc, err := a.remoteConfig(f.url)
		if err != nil {
			return nil, err
		}
		client, err := remote.New(rc)
		if err != nil {
			return nil, err
		}
		records, err := client.Load(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Data = records
		cfg.Source = client
		cfg.Lookups = client
	}

	if def != nil {
		cfg.Columns = def.Columns
		for _, c := range def.Columns {
			if c.Lookup != nil {
				setup.lookups = true
			}
		}
	} else {
		cfg.Columns = schema.InferColumns(cfg.Data, cfg.IDField)
		if len(cfg.Columns) == 0 {
			setup.close()
			return nil, usagef("no columns: the records are empty and no --columns file was given")
		}
	}
	a.log.Debug("records loaded", "count", len(cfg.Data), "columns", len(cfg.Columns))
	setup.cfg = cfg
	return setup, nil
}
