package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/mesh-intelligence/datagrid/internal/csvcodec"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// SetCurrentUser changes the acting user. Row visibility and edit rights
// are re-evaluated on the next recompute.
func (t *Table) SetCurrentUser(user types.User) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.user = user
	if sess, ok := t.edits.Active(); ok && !t.gate.Allowed(types.ActionEdit, user, t.records[sess.Row]) {
		t.edits.Cancel()
		t.editErr = nil
	}
	t.flush()
}

// ToggleRowSelection flips the selection of base row index.
func (t *Table) ToggleRowSelection(index int) error {
	t.mu.Lock()
	if err := t.checkRowLocked(index); err != nil {
		t.mu.Unlock()
		return err
	}
	if _, ok := t.selected[index]; ok {
		delete(t.selected, index)
	} else {
		t.selected[index] = struct{}{}
	}
	t.finishSelectionLocked()
	return nil
}

// SelectAll selects every row of the filtered set, across all pages.
func (t *Table) SelectAll() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.recomputeLocked()
	for _, idx := range t.visible {
		t.selected[idx] = struct{}{}
	}
	t.finishSelectionLocked()
}

// DeselectAll clears the selection.
func (t *Table) DeselectAll() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	clear(t.selected)
	t.finishSelectionLocked()
}

func (t *Table) finishSelectionLocked() {
	ev := types.SelectionEvent{Selected: t.selectionLocked()}
	t.flush()
	t.obs.selection.emit(ev)
}

// selectionLocked returns the selected base indices in ascending order.
func (t *Table) selectionLocked() []int {
	out := make([]int, 0, len(t.selected))
	for idx := range t.selected {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func (t *Table) remapSelectionLocked(remap func(int) (int, bool)) {
	if len(t.selected) == 0 {
		return
	}
	next := make(map[int]struct{}, len(t.selected))
	for idx := range t.selected {
		if to, ok := remap(idx); ok {
			next[to] = struct{}{}
		}
	}
	t.selected = next
}

var errPartialBulk = errors.New("bulk action partially applied")

// PerformBulkAction runs the named action over the selected rows. The
// built-in actions are types.BulkDelete and types.BulkExport; other names
// resolve to Config.BulkActions.
func (t *Table) PerformBulkAction(ctx context.Context, name string) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	if !t.gate.Allowed(types.ActionBulk, t.user, nil) {
		t.mu.Unlock()
		return types.ErrPermissionDenied
	}
	indices := t.selectionLocked()
	if len(indices) == 0 {
		t.mu.Unlock()
		return types.ErrEmptySelection
	}
	records := make([]types.Record, len(indices))
	for i, idx := range indices {
		records[i] = t.records[idx].Clone()
	}

	switch name {
	case types.BulkDelete:
		return t.bulkDeleteLocked(ctx, indices, records)
	case types.BulkExport:
		if !t.gate.Allowed(types.ActionExport, t.user, nil) {
			t.mu.Unlock()
			return types.ErrPermissionDenied
		}
		t.mu.Unlock()
		if _, err := t.export(records); err != nil {
			return err
		}
	default:
		handler, ok := t.cfg.BulkActions[name]
		t.mu.Unlock()
		if !ok {
			return types.ErrUnknownBulkAction
		}
		if err := handler(ctx, indices, records); err != nil {
			t.log.Warn("bulk action failed", "action", name, "error", err)
			t.showError(err)
			return err
		}
	}
	t.obs.bulk.emit(types.BulkActionEvent{Action: name, Indices: indices, Records: records})
	return nil
}

// bulkDeleteLocked removes the selected rows in descending base index
// order so earlier removals never shift later targets. The selection is
// cleared afterwards whether or not every removal succeeded. Called with
// mu held; returns with it released.
func (t *Table) bulkDeleteLocked(ctx context.Context, indices []int, records []types.Record) error {
	for _, rec := range records {
		if !t.gate.Allowed(types.ActionDelete, t.user, rec) {
			t.mu.Unlock()
			return types.ErrPermissionDenied
		}
	}
	desc := slices.Clone(indices)
	slices.Reverse(desc)

	src := t.cfg.Source
	if src == nil {
		for _, idx := range desc {
			t.removeLocked(idx)
		}
		clear(t.selected)
		t.flush()
		t.obs.selection.emit(types.SelectionEvent{Selected: []int{}})
		t.obs.bulk.emit(types.BulkActionEvent{Action: types.BulkDelete, Indices: indices, Records: records})
		return nil
	}

	gen := t.gen
	ids := make(map[int]string, len(indices))
	for i, idx := range indices {
		ids[idx] = records[i].Text(t.cfg.IDField)
	}
	t.mu.Unlock()

	var errs []error
	var deleted []int
	for _, idx := range desc {
		id := ids[idx]
		if id == "" {
			errs = append(errs, types.ErrMissingRecordID)
			continue
		}
		if err := src.Delete(ctx, id); err != nil {
			errs = append(errs, wrapRemote(id, err))
			continue
		}
		deleted = append(deleted, idx)
	}

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	if gen == t.gen {
		for _, idx := range deleted {
			t.removeLocked(idx)
		}
	} else {
		for _, idx := range deleted {
			if i, ok := t.locateLocked(idx, gen, ids[idx]); ok {
				t.removeLocked(i)
			}
		}
	}
	clear(t.selected)
	t.flush()
	t.obs.selection.emit(types.SelectionEvent{Selected: []int{}})

	if len(errs) > 0 {
		err := errors.Join(append([]error{errPartialBulk}, errs...)...)
		t.log.Warn("bulk delete incomplete", "deleted", len(deleted), "failed", len(errs))
		t.showError(err)
		return err
	}
	t.obs.bulk.emit(types.BulkActionEvent{Action: types.BulkDelete, Indices: indices, Records: records})
	return nil
}

// export encodes records, notifies export observers and hands the bytes
// to the Downloader. It is shared by ExportCSV and the export bulk action.
func (t *Table) export(records []types.Record) (string, error) {
	csv := csvcodec.Encode(records, t.columns)
	t.obs.export.emit(types.ExportEvent{Format: "csv", Data: records, CSV: csv})
	if t.cfg.Downloader != nil {
		if err := t.cfg.Downloader.Download(t.cfg.ExportFilename, []byte(csv)); err != nil {
			t.log.Warn("download failed", "filename", t.cfg.ExportFilename, "error", err)
			t.showError(err)
			return csv, err
		}
	}
	return csv, nil
}

func wrapRemote(id string, err error) error {
	return fmt.Errorf("record %s: %w", id, err)
}
