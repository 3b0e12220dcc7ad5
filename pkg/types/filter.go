package types

// FilterKind is the predicate family applied to a column.
type FilterKind string

const (
	FilterText        FilterKind = "text"
	FilterMultiSelect FilterKind = "multiselect"
	FilterNumberRange FilterKind = "numberrange"
	FilterDateRange   FilterKind = "daterange"
)

// Valid reports whether k is one of the known filter kinds.
func (k FilterKind) Valid() bool {
	switch k {
	case FilterText, FilterMultiSelect, FilterNumberRange, FilterDateRange:
		return true
	}
	return false
}

// FilterValue holds the filter for one field. Which members are consulted
// depends on the field's kind: Text for text, Values for multiselect,
// Min/Max for numberrange and From/To for daterange.
type FilterValue struct {
	Text   string   `json:"text,omitempty"`
	Values []string `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	From   string   `json:"from,omitempty"`
	To     string   `json:"to,omitempty"`
}

// IsEmpty reports whether f filters nothing.
func (f FilterValue) IsEmpty() bool {
	return f.Text == "" && len(f.Values) == 0 &&
		f.Min == nil && f.Max == nil && f.From == "" && f.To == ""
}

// TextFilter returns a substring filter.
func TextFilter(s string) FilterValue { return FilterValue{Text: s} }

// SelectFilter returns an exact-membership filter.
func SelectFilter(values ...string) FilterValue { return FilterValue{Values: values} }

// NumberRange returns an inclusive numeric range filter. Nil bounds are open.
func NumberRange(min, max *float64) FilterValue { return FilterValue{Min: min, Max: max} }

// DateRange returns an inclusive date range filter. Empty bounds are open.
func DateRange(from, to string) FilterValue { return FilterValue{From: from, To: to} }

// FilterState maps field names to active filters. It never holds an empty
// FilterValue.
type FilterState map[string]FilterValue

// Clone copies s.
func (s FilterState) Clone() FilterState {
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortState is the current sort. An empty Field means unsorted.
type SortState struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// PageState is the pagination position.
type PageState struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}
