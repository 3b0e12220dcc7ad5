// Package sqlite implements a persisted record store using a JSONL file as
// the source of truth and SQLite as the query engine. A Store is a
// types.Source, so a table can load from and write back to it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Sync strategies control when the JSONL file is rewritten.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
)

const dbFile = "records.db"

// Options configures Open.
type Options struct {
	DataDir string
	// IDField names the record field used as primary key. Defaults to "id".
	IDField string
	// Sync is SyncImmediate (default) or SyncOnClose.
	Sync   string
	Logger *slog.Logger
}

// Store holds records in SQLite and mirrors them to records.jsonl.
type Store struct {
	mu        sync.RWMutex
	db        *sql.DB
	jsonlPath string
	idField   string
	sync      string
	dirty     bool
	log       *slog.Logger
}

var _ types.Source = (*Store)(nil)

// Open creates the data directory if needed, rebuilds the SQLite database
// from records.jsonl and returns a ready Store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Sync {
	case "":
		opts.Sync = SyncImmediate
	case SyncImmediate, SyncOnClose:
	default:
		return nil, &types.ConfigError{Err: fmt.Errorf("unknown sync strategy %q", opts.Sync)}
	}
	if opts.IDField == "" {
		opts.IDField = types.DefaultIDField
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache of the JSONL file and is rebuilt on every open.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	s := &Store{
		db:        db,
		jsonlPath: filepath.Join(dataDir, recordsJSONL),
		idField:   opts.IDField,
		sync:      opts.Sync,
		log:       opts.Logger,
	}
	if err := ensureJSONL(s.jsonlPath); err != nil {
		db.Close()
		return nil, err
	}
	assigned, err := s.loadJSONL(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load JSONL: %w", err)
	}
	if assigned {
		if err := s.persistLocked(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close flushes pending writes and releases the database. Close is
// idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	if s.dirty {
		if err := s.writeFileLocked(context.Background()); err != nil {
			return fmt.Errorf("flush pending writes: %w", err)
		}
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Load returns every record in insertion order.
func (s *Store) Load(ctx context.Context) ([]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	return s.selectAll(ctx)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, types.ErrStoreClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n)
	return n, err
}

// Create stores rec, assigning a UUID v7 id when the id field is empty,
// and returns the stored record.
func (s *Store) Create(ctx context.Context, rec types.Record) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	rec = rec.Clone()
	id, _ := s.ensureID(rec)
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records (id, seq, data) VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records), ?)",
		id, string(data))
	if err != nil {
		if isConstraint(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicateRecord, id)
		}
		return nil, fmt.Errorf("inserting record: %w", err)
	}
	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces the record stored under id. The record keeps its
// position.
func (s *Store) Update(ctx context.Context, id string, rec types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return types.ErrStoreClosed
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE records SET data = ? WHERE id = ?", string(data), id)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrRecordNotFound, id)
	}
	return s.persistLocked(ctx)
}

// Delete removes the record stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return types.ErrStoreClosed
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrRecordNotFound, id)
	}
	return s.persistLocked(ctx)
}

// Import appends records in one transaction, skipping ids that already
// exist, and returns how many were stored.
func (s *Store) Import(ctx context.Context, records []types.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, types.ErrStoreClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()
	n, err := s.insertAll(ctx, tx, records)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	s.log.Debug("imported records", "count", n, "skipped", len(records)-n)
	if n == 0 {
		return 0, nil
	}
	return n, s.persistLocked(ctx)
}

func (s *Store) selectAll(ctx context.Context) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM records ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// persistLocked writes the JSONL file now, or marks it dirty under the
// on_close strategy. The caller must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	if s.sync == SyncOnClose {
		s.dirty = true
		return nil
	}
	return s.writeFileLocked(ctx)
}

func (s *Store) writeFileLocked(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM records ORDER BY seq")
	if err != nil {
		return fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()
	var lines []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scanning record: %w", err)
		}
		lines = append(lines, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := writeJSONL(s.jsonlPath, lines); err != nil {
		return fmt.Errorf("persisting %s: %w", recordsJSONL, err)
	}
	s.dirty = false
	return nil
}

// ensureID returns rec's id, assigning a new one in place when the id field
// is missing or blank.
func (s *Store) ensureID(rec types.Record) (id string, assigned bool) {
	if id := rec.Text(s.idField); id != "" {
		return id, false
	}
	id = NewID()
	rec[s.idField] = types.String(id)
	return id, true
}

// NewID returns a UUID v7 string, falling back to v4 if v7 generation
// fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func isConstraint(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		// SQLITE_CONSTRAINT and its extended codes share the low byte 19.
		return coded.Code()&0xff == 19
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
