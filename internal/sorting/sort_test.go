package sorting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

func rows() []types.Record {
	return []types.Record{
		types.RecordOf(map[string]any{"name": "Carol", "age": 41}),
		types.RecordOf(map[string]any{"name": "Alice", "age": 30}),
		types.RecordOf(map[string]any{"name": "Bob", "age": 9}),
		types.RecordOf(map[string]any{"name": "Dan"}),
	}
}

func namesOf(rs []types.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text("name")
	}
	return out
}

func TestToggle(t *testing.T) {
	s := types.SortState{Order: types.SortAsc}

	s = Toggle(s, "name")
	assert.Equal(t, types.SortState{Field: "name", Order: types.SortAsc}, s)

	s = Toggle(s, "name")
	assert.Equal(t, types.SortState{Field: "name", Order: types.SortDesc}, s)

	s = Toggle(s, "age")
	assert.Equal(t, types.SortState{Field: "age", Order: types.SortAsc}, s, "new field resets to ascending")
}

func TestSortAscDescAreReverse(t *testing.T) {
	asc := rows()
	Sort(asc, "name", types.SortAsc)
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dan"}, namesOf(asc))

	desc := rows()
	Sort(desc, "name", types.SortDesc)
	assert.Equal(t, []string{"Dan", "Carol", "Bob", "Alice"}, namesOf(desc))
}

func TestSortNumericAndNulls(t *testing.T) {
	rs := rows()
	Sort(rs, "age", types.SortAsc)
	assert.Equal(t, []string{"Dan", "Bob", "Alice", "Carol"}, namesOf(rs), "missing first, then numeric order (9 < 30)")
}

func TestSortPermutation(t *testing.T) {
	rs := rows()
	perm := Sort(rs, "name", types.SortAsc)
	assert.Equal(t, []int{1, 2, 0, 3}, perm)
	assert.Equal(t, []int{2, 0, 1, 3}, Inverse(perm))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(types.String("a"), types.String("a")))
	assert.Equal(t, -1, Compare(types.Number(2), types.Number(10)))
	assert.Equal(t, 1, Compare(types.String("b"), types.String("B")), "not locale aware")
	assert.Equal(t, -1, Compare(types.Null(), types.String("")))
	assert.Equal(t, 1, Compare(types.String("2"), types.String("10")), "strings compare lexically")
	assert.Equal(t, -1, Compare(types.Number(5), types.String("10")), "number against numeric string is numeric")
	assert.Equal(t, 1, Compare(types.String(" 10 "), types.Number(2)))
	assert.Equal(t, -1, Compare(types.Number(5), types.String("abc")), "non-numeric text falls back to display text")
}

func TestSortMixedNumbersAndNumericStrings(t *testing.T) {
	rs := []types.Record{
		types.RecordOf(map[string]any{"v": 5}),
		types.RecordOf(map[string]any{"v": "10"}),
		types.RecordOf(map[string]any{"v": 2}),
	}
	Sort(rs, "v", types.SortAsc)
	got := make([]string, len(rs))
	for i, r := range rs {
		got[i] = r.Text("v")
	}
	assert.Equal(t, []string{"2", "5", "10"}, got)
}
