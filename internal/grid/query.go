package grid

import (
	"github.com/mesh-intelligence/datagrid/internal/filter"
	"github.com/mesh-intelligence/datagrid/internal/paging"
	"github.com/mesh-intelligence/datagrid/internal/sorting"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// SetFilter sets or, for a vacuous value, removes the filter on field and
// returns to page 1. raw accepts everything filter.Normalize does.
func (t *Table) SetFilter(field string, raw any) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	col, ok := t.column(field)
	if !ok {
		t.mu.Unlock()
		return types.ErrUnknownField
	}
	if !col.IsFilterable() {
		t.mu.Unlock()
		return types.ErrNotFilterable
	}
	f, active, err := filter.Normalize(raw)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if active {
		t.filters[field] = f
	} else {
		delete(t.filters, field)
	}
	t.page = 1
	t.finishFilterLocked()
	return nil
}

// ClearFilters removes every filter and returns to page 1.
func (t *Table) ClearFilters() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	clear(t.filters)
	t.page = 1
	t.finishFilterLocked()
}

// finishFilterLocked redraws and emits a FilterEvent carrying the new
// filtered set.
func (t *Table) finishFilterLocked() {
	t.recomputeLocked()
	ev := types.FilterEvent{
		Filters:  t.filters.Clone(),
		Filtered: make([]types.Record, 0, len(t.visible)),
	}
	for _, idx := range t.visible {
		ev.Filtered = append(ev.Filtered, t.records[idx].Clone())
	}
	t.flush()
	t.obs.filter.emit(ev)
}

// Sort orders the base collection by field. Sorting the same field again
// flips the order; a new field starts ascending. Selection and the edit
// session follow their rows.
func (t *Table) Sort(field string) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	col, ok := t.column(field)
	if !ok {
		t.mu.Unlock()
		return types.ErrUnknownField
	}
	if !col.IsSortable() {
		t.mu.Unlock()
		return types.ErrNotSortable
	}
	t.sort = sorting.Toggle(t.sort, field)
	inv := sorting.Inverse(sorting.Sort(t.records, field, t.sort.Order))
	move := func(row int) (int, bool) {
		if row < 0 || row >= len(inv) {
			return 0, false
		}
		return inv[row], true
	}
	t.remapSelectionLocked(move)
	t.edits.Reindex(move)
	t.gen++
	t.page = 1
	ev := types.SortEvent{Field: t.sort.Field, Order: t.sort.Order}
	t.flush()
	t.obs.sort.emit(ev)
	return nil
}

// GoToPage moves to page n. Pages outside [1, total] are ignored and
// reported as false.
func (t *Table) GoToPage(n int) bool {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return false
	}
	t.recomputeLocked()
	if !t.window.CanGoTo(n) || n == t.page {
		t.mu.Unlock()
		return t.window.CanGoTo(n)
	}
	t.page = n
	t.flush()
	return true
}

// NextPage moves forward one page if there is one.
func (t *Table) NextPage() bool {
	t.mu.Lock()
	next := t.page + 1
	t.mu.Unlock()
	return t.GoToPage(next)
}

// PrevPage moves back one page if there is one.
func (t *Table) PrevPage() bool {
	t.mu.Lock()
	prev := t.page - 1
	t.mu.Unlock()
	return t.GoToPage(prev)
}

// SetPageSize changes the rows per page and returns to page 1.
func (t *Table) SetPageSize(size int) error {
	if size <= 0 {
		return &types.ConfigError{Err: types.ErrInvalidPageSize}
	}
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return types.ErrDestroyed
	}
	t.pageSize = size
	t.page = 1
	t.flush()
	return nil
}

// pageWindow is exposed for tests that assert on slice bounds.
func (t *Table) pageWindow() paging.Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeLocked()
	return t.window
}
