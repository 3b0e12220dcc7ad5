package types

// View is the full description of what the table should currently show.
// A renderer redraws from a View; it never receives incremental patches.
type View struct {
	Columns       []Column
	Rows          []ViewRow
	Page          PageInfo
	Sort          SortState
	Filters       FilterState
	FilterKinds   map[string]FilterKind
	FilterOptions map[string][]string
	Selected      []int
	Editing       *EditState
	LoadError     error
}

// Empty reports whether the filtered set has no rows ("no results").
func (v View) Empty() bool { return v.Page.Count == 0 }

// ViewRow is one displayed row.
type ViewRow struct {
	Index    int // position in the base collection
	Record   Record
	Cells    []string // display text per View.Columns entry
	Selected bool
	Editable bool
}

// PageInfo describes the paginated window over the filtered rows.
// First and Last are 1-based display positions, both 0 when Count is 0.
type PageInfo struct {
	Current      int  `json:"current"`
	Total        int  `json:"total"`
	Size         int  `json:"size"`
	Count        int  `json:"count"`
	First        int  `json:"first"`
	Last         int  `json:"last"`
	ShowControls bool `json:"show_controls"`
}

// EditState describes the single in-progress inline edit.
type EditState struct {
	Row      int
	Field    string
	Original Value
	Current  Value
	Options  []LookupOption
	// Error is the validation failure of the last commit attempt, shown
	// next to the field. Nil once the value is accepted.
	Error error
}
