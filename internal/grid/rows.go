package grid

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/datagrid/internal/sorting"
	"github.com/mesh-intelligence/datagrid/internal/validate"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Data returns a copy of the base collection.
func (t *Table) Data() []types.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return types.CloneRecords(t.records)
}

// SetData replaces the base collection. Selection and any edit in
// progress are dropped; the current sort is reapplied.
func (t *Table) SetData(records []types.Record) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	t.replaceLocked(types.CloneRecords(records))
	t.loadErr = nil
	t.flush()
	return nil
}

func (t *Table) replaceLocked(records []types.Record) {
	if records == nil {
		records = []types.Record{}
	}
	t.records = records
	if t.sort.Field != "" {
		sorting.Sort(t.records, t.sort.Field, t.sort.Order)
	}
	clear(t.selected)
	t.edits.Cancel()
	t.editErr = nil
	t.page = 1
	t.gen++
	t.stale = true
}

// LoadRemoteData replaces the base collection with the Source's records.
// On failure the current data is kept, the error is recorded on the view
// and reported to the renderer.
func (t *Table) LoadRemoteData(ctx context.Context) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	src := t.cfg.Source
	t.mu.Unlock()
	if src == nil {
		return types.ErrNoSource
	}

	records, err := src.Load(ctx)

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		t.log.Debug("discarding load result after destroy")
		return types.ErrDestroyed
	}
	if err != nil {
		t.loadErr = err
		t.flush()
		t.log.Warn("remote load failed", "error", err)
		t.showError(err)
		return err
	}
	t.replaceLocked(records)
	t.loadErr = nil
	t.mu.Unlock()

	t.lookups.Prefetch(ctx, t.columns)

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	t.flush()
	return nil
}

// Reload drops cached lookup datasets and loads the Source again.
func (t *Table) Reload(ctx context.Context) error {
	t.lookups.Invalidate("")
	return t.LoadRemoteData(ctx)
}

// PrefetchLookups loads every lookup dataset and redraws.
func (t *Table) PrefetchLookups(ctx context.Context) {
	t.lookups.Prefetch(ctx, t.columns)
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.flush()
}

// AddRow validates rec, persists it through the Source when one is
// configured and appends the stored record. It returns the new base index.
func (t *Table) AddRow(ctx context.Context, rec types.Record) (int, error) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return -1, types.ErrDestroyed
	}
	if !t.gate.Allowed(types.ActionAdd, t.user, rec) {
		t.mu.Unlock()
		return -1, types.ErrPermissionDenied
	}
	if err := t.validateLocked(rec, nil); err != nil {
		t.mu.Unlock()
		return -1, err
	}
	rec = rec.Clone()
	if rec == nil {
		rec = types.Record{}
	}
	src := t.cfg.Source
	if src == nil && t.cfg.AutoID && rec.Text(t.cfg.IDField) == "" {
		rec[t.cfg.IDField] = types.String(newID())
	}
	t.mu.Unlock()

	if src != nil {
		created, err := src.Create(ctx, rec)
		if err != nil {
			t.log.Warn("remote create failed", "error", err)
			t.showError(err)
			return -1, err
		}
		if created != nil {
			rec = created
		}
	}

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return -1, types.ErrDestroyed
	}
	t.records = append(t.records, rec)
	index := len(t.records) - 1
	t.stale = true
	t.flush()

	t.obs.rowAdded.emit(types.RowAddedEvent{Index: index, Record: rec.Clone()})
	return index, nil
}

// RemoveRow deletes the row at base index, remotely first when a Source
// is configured.
func (t *Table) RemoveRow(ctx context.Context, index int) error {
	t.mu.Lock()
	if err := t.checkRowLocked(index); err != nil {
		t.mu.Unlock()
		return err
	}
	rec := t.records[index]
	if !t.gate.Allowed(types.ActionDelete, t.user, rec) {
		t.mu.Unlock()
		return types.ErrPermissionDenied
	}
	src, id, gen := t.cfg.Source, rec.Text(t.cfg.IDField), t.gen
	if src == nil {
		t.removeLocked(index)
		t.flush()
		return nil
	}
	t.mu.Unlock()

	if id == "" {
		return types.ErrMissingRecordID
	}
	if err := src.Delete(ctx, id); err != nil {
		t.log.Warn("remote delete failed", "id", id, "error", err)
		t.showError(err)
		return err
	}

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	if i, ok := t.locateLocked(index, gen, id); ok {
		t.removeLocked(i)
	}
	t.flush()
	return nil
}

// removeLocked drops base row index and repairs selection and edit state.
func (t *Table) removeLocked(index int) {
	t.records = slices.Delete(t.records, index, index+1)
	shift := func(row int) (int, bool) {
		switch {
		case row == index:
			return 0, false
		case row > index:
			return row - 1, true
		default:
			return row, true
		}
	}
	t.remapSelectionLocked(shift)
	t.edits.Reindex(shift)
	t.gen++
	t.stale = true
}

// UpdateRow merges patch into the row at base index. With a Source the
// merged record is persisted first and the local row changes only on
// success.
func (t *Table) UpdateRow(ctx context.Context, index int, patch types.Record) error {
	t.mu.Lock()
	if err := t.checkRowLocked(index); err != nil {
		t.mu.Unlock()
		return err
	}
	rec := t.records[index]
	if !t.gate.Allowed(types.ActionEdit, t.user, rec) {
		t.mu.Unlock()
		return types.ErrPermissionDenied
	}
	merged := rec.Clone()
	merged.Merge(patch)
	if err := t.validateLocked(merged, patch); err != nil {
		t.mu.Unlock()
		return err
	}
	src, id, gen := t.cfg.Source, rec.Text(t.cfg.IDField), t.gen
	if src == nil {
		t.records[index] = merged
		t.stale = true
		t.flush()
		return nil
	}
	t.mu.Unlock()

	if id == "" {
		return types.ErrMissingRecordID
	}
	if err := src.Update(ctx, id, merged); err != nil {
		t.log.Warn("remote update failed", "id", id, "error", err)
		t.showError(err)
		return err
	}

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	if i, ok := t.locateLocked(index, gen, id); ok {
		t.records[i] = merged
		t.stale = true
	}
	t.flush()
	return nil
}

// validateLocked checks rec against every column's rules, or only the
// columns named in only when it is non-nil. The first failure in column
// order is returned.
func (t *Table) validateLocked(rec, only types.Record) error {
	for _, col := range t.columns {
		if only != nil {
			if _, ok := only[col.Field]; !ok {
				continue
			}
		}
		if err := validate.Check(col, rec[col.Field]); err != nil {
			return err
		}
	}
	return nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
