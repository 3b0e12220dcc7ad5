package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// loadJSONL reads the records file into the records table inside a single
// transaction: either every usable line loads or the table stays empty.
// Malformed lines and duplicate ids are skipped. It reports whether any
// record had to be assigned a fresh id, in which case the file needs
// rewriting.
func (s *Store) loadJSONL(ctx context.Context) (assigned bool, err error) {
	lines, err := readJSONL(s.jsonlPath)
	if err != nil {
		return false, err
	}
	if len(lines) == 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO records (id, seq, data) VALUES (?, ?, ?)")
	if err != nil {
		return false, fmt.Errorf("preparing load insert: %w", err)
	}
	defer stmt.Close()

	seq := 0
	for _, line := range lines {
		var rec types.Record
		if err := json.Unmarshal(line, &rec); err != nil || rec == nil {
			s.log.Debug("skipping malformed record line", "path", s.jsonlPath)
			continue
		}
		id, fresh := s.ensureID(rec)
		assigned = assigned || fresh
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		seq++
		if _, err := stmt.ExecContext(ctx, id, seq, string(data)); err != nil {
			return false, fmt.Errorf("loading record %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing load transaction: %w", err)
	}
	return assigned, nil
}

// insertAll appends records in one transaction and returns how many were
// stored. Records whose id already exists are skipped.
func (s *Store) insertAll(ctx context.Context, tx *sql.Tx, records []types.Record) (int, error) {
	var next int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM records").Scan(&next); err != nil {
		return 0, fmt.Errorf("reading sequence: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO records (id, seq, data) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, rec := range records {
		rec = rec.Clone()
		id, _ := s.ensureID(rec)
		data, err := json.Marshal(rec)
		if err != nil {
			return n, fmt.Errorf("encoding record %s: %w", id, err)
		}
		next++
		res, err := stmt.ExecContext(ctx, id, next, string(data))
		if err != nil {
			return n, fmt.Errorf("inserting record %s: %w", id, err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			n++
		}
	}
	return n, nil
}
