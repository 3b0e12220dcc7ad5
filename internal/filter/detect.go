// Package filter infers per-column filter kinds and applies filter state to
// record collections.
package filter

import (
	"sort"
	"strings"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Sampling limits for type detection. Only the leading values are inspected
// so detection cost stays flat on large collections.
const (
	dateSampleSize    = 5
	numericSampleSize = 10
	maxSelectOptions  = 20
)

// Detection is the outcome of Detect.
type Detection struct {
	// Kinds holds the filter kind per filterable column. Columns without any
	// non-null value and no declared FilterType are absent.
	Kinds map[string]types.FilterKind
	// Distinct holds the sorted distinct display values per filterable
	// column, used as multiselect options.
	Distinct map[string][]string
}

// Detect infers a filter kind for every filterable column. A declared
// Column.FilterType always wins; distinct values are recorded either way.
func Detect(records []types.Record, columns []types.Column) Detection {
	d := Detection{
		Kinds:    make(map[string]types.FilterKind),
		Distinct: make(map[string][]string),
	}
	for _, col := range columns {
		if !col.IsFilterable() {
			continue
		}
		values := nonNullValues(records, col.Field)
		distinct := distinctSorted(values)
		if len(values) > 0 {
			d.Distinct[col.Field] = distinct
		}
		if col.FilterType != "" {
			d.Kinds[col.Field] = col.FilterType
			continue
		}
		if len(values) == 0 {
			continue
		}
		d.Kinds[col.Field] = classify(values, len(distinct))
	}
	return d
}

// DetectKind infers the filter kind for one set of non-null display values.
// ok is false when values is empty.
func DetectKind(values []string) (kind types.FilterKind, ok bool) {
	if len(values) == 0 {
		return "", false
	}
	return classify(values, len(distinctSorted(values))), true
}

func classify(values []string, distinct int) types.FilterKind {
	if allMatch(values, dateSampleSize, looksLikeDate) {
		return types.FilterDateRange
	}
	if allMatch(values, numericSampleSize, isNumeric) {
		return types.FilterNumberRange
	}
	if distinct > 1 && distinct <= maxSelectOptions {
		return types.FilterMultiSelect
	}
	return types.FilterText
}

// allMatch applies pred to the first n values; a single miss fails the test.
func allMatch(values []string, n int, pred func(string) bool) bool {
	if len(values) < n {
		n = len(values)
	}
	for _, v := range values[:n] {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	_, ok := types.ParseNumber(strings.TrimSpace(s))
	return ok
}

// nonNullValues returns the display text of every present, non-null,
// non-blank cell of field, in record order.
func nonNullValues(records []types.Record, field string) []string {
	var out []string
	for _, r := range records {
		v, ok := r[field]
		if !ok || v.IsNull() {
			continue
		}
		text := v.Text()
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
