package filter

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Apply returns the records that pass every active filter in state. kinds
// selects the predicate per field; a field without a kind falls back to the
// shape of its FilterValue. With no active filters records itself is
// returned.
func Apply(records []types.Record, state types.FilterState, kinds map[string]types.FilterKind) []types.Record {
	if len(state) == 0 {
		return records
	}
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if Match(r, state, kinds) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether r passes every filter in state.
func Match(r types.Record, state types.FilterState, kinds map[string]types.FilterKind) bool {
	for field, f := range state {
		if f.IsEmpty() {
			continue
		}
		cell, present := r[field]
		if !matchField(KindOf(field, f, kinds), cell, present, f) {
			return false
		}
	}
	return true
}

// KindOf returns the kind used to evaluate f on field. The detected kind
// is used when f carries a value of that kind's shape; otherwise the shape
// of f decides, so a range set on a text column still filters.
func KindOf(field string, f types.FilterValue, kinds map[string]types.FilterKind) types.FilterKind {
	if k, ok := kinds[field]; ok && fits(k, f) {
		return k
	}
	switch {
	case len(f.Values) > 0:
		return types.FilterMultiSelect
	case f.Min != nil || f.Max != nil:
		return types.FilterNumberRange
	case f.From != "" || f.To != "":
		return types.FilterDateRange
	default:
		return types.FilterText
	}
}

func fits(k types.FilterKind, f types.FilterValue) bool {
	switch k {
	case types.FilterText:
		return f.Text != ""
	case types.FilterMultiSelect:
		return len(f.Values) > 0
	case types.FilterNumberRange:
		return f.Min != nil || f.Max != nil
	case types.FilterDateRange:
		return f.From != "" || f.To != ""
	}
	return false
}

func matchField(kind types.FilterKind, cell types.Value, present bool, f types.FilterValue) bool {
	switch kind {
	case types.FilterMultiSelect:
		return matchSelect(cell, f)
	case types.FilterNumberRange:
		return matchNumber(cell, present, f)
	case types.FilterDateRange:
		return matchDate(cell, present, f)
	default:
		return matchText(cell, f)
	}
}

func matchText(cell types.Value, f types.FilterValue) bool {
	if f.Text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(cell.Text()), strings.ToLower(f.Text))
}

func matchSelect(cell types.Value, f types.FilterValue) bool {
	if len(f.Values) == 0 {
		return true
	}
	return slices.Contains(f.Values, cell.Text())
}

func matchNumber(cell types.Value, present bool, f types.FilterValue) bool {
	if f.Min == nil && f.Max == nil {
		return true
	}
	if !present || cell.IsNull() {
		return false
	}
	n, ok := cell.Float()
	if !ok {
		if cell.Kind() == types.KindBool {
			return false
		}
		n, ok = types.ParseNumericLoose(cell.Text())
		if !ok {
			return false
		}
	}
	if f.Min != nil && n < *f.Min {
		return false
	}
	if f.Max != nil && n > *f.Max {
		return false
	}
	return true
}

func matchDate(cell types.Value, present bool, f types.FilterValue) bool {
	if f.From == "" && f.To == "" {
		return true
	}
	if !present || cell.IsNull() || cell.Text() == "" {
		return false
	}
	d, ok := ParseDate(cell.Text())
	if !ok {
		return false
	}
	if f.From != "" {
		from, ok := ParseDate(f.From)
		if ok && d.Before(from) {
			return false
		}
	}
	if f.To != "" {
		to, ok := ParseDate(f.To)
		if ok && d.After(to) {
			return false
		}
	}
	return true
}
