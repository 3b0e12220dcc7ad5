package grid

import (
	"context"

	"github.com/mesh-intelligence/datagrid/internal/edit"
	"github.com/mesh-intelligence/datagrid/internal/validate"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// BeginEdit opens an edit session on (index, field). An edit already in
// progress is cancelled first, so at most one session exists. For lookup
// columns the options are fetched after the session opens; options that
// arrive after the session ended are dropped.
func (t *Table) BeginEdit(ctx context.Context, index int, field string) error {
	t.mu.Lock()
	if err := t.checkRowLocked(index); err != nil {
		t.mu.Unlock()
		return err
	}
	col, ok := t.column(field)
	if !ok {
		t.mu.Unlock()
		return types.ErrUnknownField
	}
	if !col.Editable {
		t.mu.Unlock()
		return types.ErrNotEditable
	}
	rec := t.records[index]
	if !t.gate.Allowed(types.ActionEdit, t.user, rec) {
		t.mu.Unlock()
		return types.ErrPermissionDenied
	}
	started, cancelled := t.edits.Begin(index, field, rec[field])
	if cancelled != nil {
		t.log.Debug("cancelled edit", "row", cancelled.Row, "field", cancelled.Field)
	}
	t.editErr = nil
	t.flush()

	if col.Lookup == nil || !col.Lookup.HasSource() {
		return nil
	}
	opts := t.lookups.Options(ctx, col)
	t.mu.Lock()
	if t.destroyed || !t.edits.SetOptions(started.ID, opts) {
		t.mu.Unlock()
		return nil
	}
	t.flush()
	return nil
}

// SetEditValue replaces the value being edited.
func (t *Table) SetEditValue(v types.Value) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	if err := t.edits.Set(v); err != nil {
		t.mu.Unlock()
		return err
	}
	t.flush()
	return nil
}

// CommitEdit applies the active session. A *types.ValidationError keeps
// the session open. With a Source the value is written optimistically and
// rolled back if the remote update fails; the failure is shown and no
// EditEvent fires. An unchanged value skips the remote update but still
// fires EditEvent.
func (t *Table) CommitEdit(ctx context.Context) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	sess, ok := t.edits.Active()
	if !ok {
		t.mu.Unlock()
		return types.ErrNoEditSession
	}
	col, _ := t.column(sess.Field)
	if err := validate.Check(col, sess.Current); err != nil {
		t.editErr = err
		t.flush()
		return err
	}
	t.edits.Commit()
	t.editErr = nil
	if sess.Row < 0 || sess.Row >= len(t.records) {
		t.flush()
		return nil
	}
	if !sess.Changed() {
		snapshot := t.records[sess.Row].Clone()
		t.flush()
		t.obs.edit.emit(types.EditEvent{
			Row:      sess.Row,
			Record:   snapshot,
			Field:    sess.Field,
			OldValue: sess.Original,
			NewValue: sess.Current,
		})
		return nil
	}

	rec := t.records[sess.Row]
	old := rec[sess.Field]
	rec[sess.Field] = sess.Current
	t.stale = true
	src, id, gen, snapshot := t.cfg.Source, rec.Text(t.cfg.IDField), t.gen, rec.Clone()
	t.flush()

	if src != nil {
		err := types.ErrMissingRecordID
		if id != "" {
			err = src.Update(ctx, id, snapshot)
		}
		if err != nil {
			t.rollback(sess, old, gen, id)
			t.log.Warn("edit rolled back", "row", sess.Row, "field", sess.Field, "error", err)
			t.showError(err)
			return err
		}
	}

	if col.Lookup != nil {
		t.lookups.Dataset(ctx, col)
	}

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	row := sess.Row
	if i, ok := t.locateLocked(sess.Row, gen, id); ok {
		row = i
		snapshot = t.records[i].Clone()
	}
	t.flush()

	t.obs.edit.emit(types.EditEvent{
		Row:      row,
		Record:   snapshot,
		Field:    sess.Field,
		OldValue: old,
		NewValue: sess.Current,
	})
	return nil
}

// rollback restores the pre-edit value after a failed remote update, as
// long as the cell still holds the value this edit wrote.
func (t *Table) rollback(sess edit.Session, old types.Value, gen uint64, id string) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	if i, ok := t.locateLocked(sess.Row, gen, id); ok {
		rec := t.records[i]
		if rec[sess.Field].Equal(sess.Current) {
			rec[sess.Field] = old
			t.stale = true
		}
	}
	t.flush()
}

// CancelEdit ends the active session without applying it. It reports
// whether a session was active.
func (t *Table) CancelEdit() bool {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return false
	}
	_, ok := t.edits.Cancel()
	if !ok {
		t.mu.Unlock()
		return false
	}
	t.editErr = nil
	t.flush()
	return true
}
