// Package sorting orders record collections by a single field and tracks
// the header-click direction toggle.
package sorting

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Toggle returns the sort state after a request to sort by field. The same
// field flips the order; a different field starts ascending.
func Toggle(state types.SortState, field string) types.SortState {
	if state.Field == field {
		if state.Order == types.SortAsc {
			return types.SortState{Field: field, Order: types.SortDesc}
		}
		return types.SortState{Field: field, Order: types.SortAsc}
	}
	return types.SortState{Field: field, Order: types.SortAsc}
}

// Compare orders two cell values: equal values are 0, nulls sort before
// everything else, two numbers compare numerically, a number against a
// numeric string compares numerically too, and anything else compares by
// byte-wise display text.
func Compare(a, b types.Value) int {
	if a.IsNull() || b.IsNull() {
		switch {
		case a.IsNull() && b.IsNull():
			return 0
		case a.IsNull():
			return -1
		default:
			return 1
		}
	}
	x, xok := a.Float()
	y, yok := b.Float()
	switch {
	case xok && !yok:
		y, yok = numericText(b)
	case yok && !xok:
		x, xok = numericText(a)
	}
	if xok && yok {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Text(), b.Text())
}

// numericText parses a string cell as a number. Booleans never coerce.
func numericText(v types.Value) (float64, bool) {
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	return types.ParseNumber(strings.TrimSpace(s))
}

// Sort reorders records in place by field and returns the permutation
// applied: perm[newIndex] == oldIndex. Ties keep their relative order.
func Sort(records []types.Record, field string, order types.SortOrder) []int {
	perm := make([]int, len(records))
	for i := range perm {
		perm[i] = i
	}
	snapshot := slices.Clone(records)
	slices.SortStableFunc(perm, func(i, j int) int {
		c := Compare(snapshot[i][field], snapshot[j][field])
		if order == types.SortDesc {
			return -c
		}
		return c
	})
	for newIdx, oldIdx := range perm {
		records[newIdx] = snapshot[oldIdx]
	}
	return perm
}

// Inverse returns the mapping oldIndex -> newIndex for a permutation
// returned by Sort.
func Inverse(perm []int) []int {
	inv := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		inv[oldIdx] = newIdx
	}
	return inv
}
