package types

import "context"

// ExportMode selects which rows ExportCSV writes.
type ExportMode int

const (
	// ExportFiltered writes every row of the filtered set across all pages.
	ExportFiltered ExportMode = iota
	// ExportAll writes the whole base collection.
	ExportAll
)

// Built-in bulk action names.
const (
	BulkDelete = "delete"
	BulkExport = "export"
)

// Table is the data-grid engine. It owns the base record collection and the
// filter, sort, page, selection and edit state, and asks its Renderer to
// redraw after every visible change.
type Table interface {
	// Render draws the current view. Until Render has been called once,
	// state changes recompute but do not draw.
	Render()
	// View returns the current view snapshot without drawing.
	View() View

	Data() []Record
	SetData(records []Record) error
	// LoadRemoteData replaces the base collection from the Source. On
	// failure prior data is kept and the error is also recorded on the view.
	LoadRemoteData(ctx context.Context) error
	// Reload drops cached lookup datasets and loads again; it is the retry
	// affordance after a failed load.
	Reload(ctx context.Context) error
	// PrefetchLookups fetches the dataset of every lookup column so views
	// show display labels instead of raw ids.
	PrefetchLookups(ctx context.Context)

	AddRow(ctx context.Context, rec Record) (int, error)
	RemoveRow(ctx context.Context, index int) error
	UpdateRow(ctx context.Context, index int, patch Record) error

	SetFilter(field string, raw any) error
	ClearFilters()
	Sort(field string) error

	GoToPage(n int) bool
	NextPage() bool
	PrevPage() bool
	SetPageSize(size int) error

	ExportCSV(mode ExportMode) (string, error)

	SetCurrentUser(user User)
	ToggleRowSelection(index int) error
	SelectAll()
	DeselectAll()
	PerformBulkAction(ctx context.Context, name string) error

	BeginEdit(ctx context.Context, index int, field string) error
	SetEditValue(v Value) error
	CommitEdit(ctx context.Context) error
	CancelEdit() bool

	OnEdit(fn func(EditEvent)) func()
	OnSort(fn func(SortEvent)) func()
	OnFilter(fn func(FilterEvent)) func()
	OnExport(fn func(ExportEvent)) func()
	OnSelection(fn func(SelectionEvent)) func()
	OnBulkAction(fn func(BulkActionEvent)) func()
	OnRowAdded(fn func(RowAddedEvent)) func()

	// Destroy clears all state and detaches observers. Later calls return
	// ErrDestroyed and late remote responses are discarded.
	Destroy()
}
