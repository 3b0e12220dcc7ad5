package types

// EditEvent is emitted after an inline edit is committed.
type EditEvent struct {
	Row      int // base collection index
	Record   Record
	Field    string
	OldValue Value
	NewValue Value
}

// SortEvent is emitted after the sort state changes.
type SortEvent struct {
	Field string
	Order SortOrder
}

// FilterEvent is emitted after a filter is set or cleared.
type FilterEvent struct {
	Filters  FilterState
	Filtered []Record
}

// ExportEvent is emitted after an export string has been produced.
type ExportEvent struct {
	Format string
	Data   []Record
	CSV    string
}

// SelectionEvent is emitted whenever the selection set changes.
type SelectionEvent struct {
	Selected []int
}

// BulkActionEvent is emitted after a bulk action has run.
type BulkActionEvent struct {
	Action  string
	Indices []int
	Records []Record
}

// RowAddedEvent is emitted after a row is appended.
type RowAddedEvent struct {
	Index  int
	Record Record
}
