package types

// Input types for editable columns.
const (
	InputText   = "text"
	InputNumber = "number"
	InputEmail  = "email"
	InputDate   = "date"
)

// Column describes one table column. Sortable, Filterable and Exportable
// default to true when nil; Editable defaults to false.
type Column struct {
	Field      string        `json:"field" toml:"field"`
	Label      string        `json:"label" toml:"label"`
	Editable   bool          `json:"editable,omitempty" toml:"editable,omitempty"`
	Sortable   *bool         `json:"sortable,omitempty" toml:"sortable,omitempty"`
	Filterable *bool         `json:"filterable,omitempty" toml:"filterable,omitempty"`
	Exportable *bool         `json:"exportable,omitempty" toml:"exportable,omitempty"`
	Hidden     bool          `json:"hidden,omitempty" toml:"hidden,omitempty"`
	Type       string        `json:"type,omitempty" toml:"type,omitempty"`
	FilterType FilterKind    `json:"filter_type,omitempty" toml:"filter_type,omitempty"`
	Lookup     *LookupConfig `json:"lookup,omitempty" toml:"lookup,omitempty"`
	Rules      *FieldRules   `json:"rules,omitempty" toml:"rules,omitempty"`
}

// IsSortable reports whether the column may be sorted.
func (c Column) IsSortable() bool { return c.Sortable == nil || *c.Sortable }

// IsFilterable reports whether the column takes part in filtering.
func (c Column) IsFilterable() bool { return c.Filterable == nil || *c.Filterable }

// IsExportable reports whether the column is written by CSV export.
func (c Column) IsExportable() bool { return c.Exportable == nil || *c.Exportable }

// Flag returns a pointer to b, for the optional Column switches.
func Flag(b bool) *bool { return &b }

// LookupConfig declares a foreign-key column whose stored value is resolved
// to a display label from a lookup dataset. Sources are tried in order:
// URL, Endpoint (a named lookup endpoint of the remote API), Data.
type LookupConfig struct {
	URL          string           `json:"url,omitempty" toml:"url,omitempty"`
	Endpoint     string           `json:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Data         []Record         `json:"data,omitempty" toml:"-"`
	ValueField   string           `json:"value_field,omitempty" toml:"value_field,omitempty"`
	DisplayField string           `json:"display_field,omitempty" toml:"display_field,omitempty"`
	Filter       map[string]Value `json:"filter,omitempty" toml:"-"`
}

// Default lookup field names.
const (
	DefaultLookupValueField   = "id"
	DefaultLookupDisplayField = "name"
)

// ValueKey returns the configured value field or the default.
func (l LookupConfig) ValueKey() string {
	if l.ValueField == "" {
		return DefaultLookupValueField
	}
	return l.ValueField
}

// DisplayKey returns the configured display field or the default.
func (l LookupConfig) DisplayKey() string {
	if l.DisplayField == "" {
		return DefaultLookupDisplayField
	}
	return l.DisplayField
}

// HasSource reports whether any fetch source is configured.
func (l LookupConfig) HasSource() bool {
	return l.URL != "" || l.Endpoint != "" || l.Data != nil
}

// LookupOption is one choice offered by a lookup editor.
type LookupOption struct {
	Value   Value  `json:"value"`
	Display string `json:"display"`
}

// FieldRules are the declarative validation rules of an editable column.
// Zero lengths disable the length checks.
type FieldRules struct {
	Required  bool `json:"required,omitempty" toml:"required,omitempty"`
	MinLength int  `json:"min_length,omitempty" toml:"min_length,omitempty"`
	MaxLength int  `json:"max_length,omitempty" toml:"max_length,omitempty"`
	Email     bool `json:"email,omitempty" toml:"email,omitempty"`
}
