// Package datagrid is the public entry point of the data-grid engine.
//
// A table is built from a types.Config and a types.Renderer:
//
//	table, err := datagrid.New(types.Config{
//	    Columns:  cols,
//	    Data:     records,
//	    PageSize: 25,
//	}, renderer)
//	if err != nil {
//	    return err
//	}
//	defer table.Destroy()
//	table.Render()
//
// Records may instead come from a remote JSON API (NewRemote) or from the
// SQLite store in pkg/sqlite, both of which implement types.Source.
package datagrid

import (
	"github.com/mesh-intelligence/datagrid/internal/grid"
	"github.com/mesh-intelligence/datagrid/internal/remote"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Version is the release of the engine and of gridctl.
const Version = "0.3.0"

// New validates cfg and returns a table drawing through renderer. Invalid
// configuration yields a *types.ConfigError and no table.
func New(cfg types.Config, renderer types.Renderer) (types.Table, error) {
	t, err := grid.New(cfg, renderer)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RemoteConfig configures the HTTP data source.
type RemoteConfig = remote.Config

// RemoteEndpoints are the path templates of the HTTP data source.
type RemoteEndpoints = remote.Endpoints

// Remote is a records API that also serves lookup datasets.
type Remote interface {
	types.Source
	types.LookupFetcher
}

// NewRemote returns an HTTP JSON client for use as Config.Source and
// Config.Lookups.
func NewRemote(cfg RemoteConfig) (Remote, error) {
	c, err := remote.New(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
