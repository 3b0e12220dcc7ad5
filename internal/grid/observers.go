package grid

import (
	"sync"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// listeners is an ordered list of typed observers. Emit calls a snapshot
// so observers may unsubscribe from inside a callback.
type listeners[E any] struct {
	mu   sync.Mutex
	next int
	subs []subscriber[E]
}

type subscriber[E any] struct {
	id int
	fn func(E)
}

func (l *listeners[E]) add(fn func(E)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	l.subs = append(l.subs, subscriber[E]{id: id, fn: fn})
	return func() { l.remove(id) }
}

func (l *listeners[E]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.subs {
		if s.id == id {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}

func (l *listeners[E]) emit(e E) {
	l.mu.Lock()
	subs := l.subs
	l.mu.Unlock()
	for _, s := range subs {
		s.fn(e)
	}
}

func (l *listeners[E]) reset() {
	l.mu.Lock()
	l.subs = nil
	l.mu.Unlock()
}

type observers struct {
	edit      listeners[types.EditEvent]
	sort      listeners[types.SortEvent]
	filter    listeners[types.FilterEvent]
	export    listeners[types.ExportEvent]
	selection listeners[types.SelectionEvent]
	bulk      listeners[types.BulkActionEvent]
	rowAdded  listeners[types.RowAddedEvent]
}

func (o *observers) reset() {
	o.edit.reset()
	o.sort.reset()
	o.filter.reset()
	o.export.reset()
	o.selection.reset()
	o.bulk.reset()
	o.rowAdded.reset()
}

// OnEdit registers fn for committed edits.
func (t *Table) OnEdit(fn func(types.EditEvent)) func() { return t.obs.edit.add(fn) }

// OnSort registers fn for sort changes.
func (t *Table) OnSort(fn func(types.SortEvent)) func() { return t.obs.sort.add(fn) }

// OnFilter registers fn for filter changes.
func (t *Table) OnFilter(fn func(types.FilterEvent)) func() { return t.obs.filter.add(fn) }

// OnExport registers fn for exports.
func (t *Table) OnExport(fn func(types.ExportEvent)) func() { return t.obs.export.add(fn) }

// OnSelection registers fn for selection changes.
func (t *Table) OnSelection(fn func(types.SelectionEvent)) func() { return t.obs.selection.add(fn) }

// OnBulkAction registers fn for completed bulk actions.
func (t *Table) OnBulkAction(fn func(types.BulkActionEvent)) func() { return t.obs.bulk.add(fn) }

// OnRowAdded registers fn for appended rows.
func (t *Table) OnRowAdded(fn func(types.RowAddedEvent)) func() { return t.obs.rowAdded.add(fn) }
