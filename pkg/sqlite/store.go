// Package sqlite exposes the SQLite record store while keeping its
// implementation internal.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/datagrid/internal/sqlite"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Options configures Open. See the Sync constants for the write strategy.
type Options = sqlite.Options

// Sync strategies.
const (
	SyncImmediate = sqlite.SyncImmediate
	SyncOnClose   = sqlite.SyncOnClose
)

// Store is a types.Source backed by SQLite and mirrored to records.jsonl.
type Store interface {
	types.Source
	Count(ctx context.Context) (int, error)
	Import(ctx context.Context, records []types.Record) (int, error)
	Close() error
}

// Open opens the store in opts.DataDir, creating it when missing.
//
// Example:
//
//	store, err := sqlite.Open(ctx, sqlite.Options{DataDir: ".grid-db"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	table, err := datagrid.New(types.Config{Columns: cols, Source: store}, renderer)
func Open(ctx context.Context, opts Options) (Store, error) {
	s, err := sqlite.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}
