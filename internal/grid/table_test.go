package grid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.Config
		renderer types.Renderer
		want     error
	}{
		{"nil renderer", types.Config{Columns: nameAgeColumns()}, nil, types.ErrNoRenderer},
		{"no columns", types.Config{}, &recorder{}, types.ErrNoColumns},
		{
			"duplicate field",
			types.Config{Columns: []types.Column{{Field: "a", Label: "A"}, {Field: "a", Label: "B"}}},
			&recorder{},
			types.ErrDuplicateField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.cfg, tt.renderer)
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.ErrorIs(t, err, types.ErrConfiguration)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewCopiesData(t *testing.T) {
	data := numbered(2)
	tbl, _ := newTable(t, types.Config{Data: data})
	data[0]["name"] = types.String("changed")
	assert.Equal(t, "r00", tbl.Data()[0].Text("name"))
}

func TestRedrawsOnlyAfterFirstRender(t *testing.T) {
	tbl, r := newTable(t, types.Config{Data: numbered(3)})

	require.NoError(t, tbl.SetData(numbered(4)))
	assert.Zero(t, r.renders())
	assert.Equal(t, 4, tbl.View().Page.Count, "state is recomputed without drawing")

	tbl.Render()
	assert.Equal(t, 1, r.renders())

	require.NoError(t, tbl.SetFilter("name", "r01"))
	assert.Equal(t, 2, r.renders())
	assert.Equal(t, 1, r.views[1].Page.Count)
}

func TestPagination(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(25), PageSize: 10})

	v := tbl.View()
	assert.Equal(t, 3, v.Page.Total)
	assert.Equal(t, 1, v.Page.Current)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, rowIndices(v))
	assert.True(t, v.Page.ShowControls)
	assert.Equal(t, 1, v.Page.First)
	assert.Equal(t, 10, v.Page.Last)

	assert.False(t, tbl.GoToPage(5))
	assert.False(t, tbl.GoToPage(0))
	assert.Equal(t, 1, tbl.View().Page.Current)

	assert.True(t, tbl.NextPage())
	assert.True(t, tbl.NextPage())
	assert.False(t, tbl.NextPage())
	v = tbl.View()
	assert.Equal(t, 3, v.Page.Current)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, rowIndices(v))
	assert.Equal(t, 21, v.Page.First)
	assert.Equal(t, 25, v.Page.Last)

	require.NoError(t, tbl.SetFilter("name", []string{"r00", "r01", "r02", "r03", "r04"}))
	v = tbl.View()
	assert.Equal(t, 1, v.Page.Current, "filter resets to page 1")
	assert.Equal(t, 5, v.Page.Count)
	assert.Equal(t, 1, v.Page.Total)
	assert.False(t, v.Page.ShowControls)
	assert.False(t, tbl.PrevPage())
}

func TestSetPageSize(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(25), PageSize: 10})
	require.True(t, tbl.GoToPage(3))

	require.NoError(t, tbl.SetPageSize(5))
	v := tbl.View()
	assert.Equal(t, 5, v.Page.Total)
	assert.Equal(t, 1, v.Page.Current)

	assert.ErrorIs(t, tbl.SetPageSize(0), types.ErrInvalidPageSize)
}

func TestEmptyTable(t *testing.T) {
	tbl, _ := newTable(t, types.Config{})
	v := tbl.View()
	assert.True(t, v.Empty())
	assert.Equal(t, 1, v.Page.Total)
	assert.Zero(t, v.Page.First)
	assert.Zero(t, v.Page.Last)
}

func TestSortToggles(t *testing.T) {
	data := []types.Record{
		types.RecordOf(map[string]any{"id": 1, "name": "c", "age": 30}),
		types.RecordOf(map[string]any{"id": 2, "name": "a", "age": 10}),
		types.RecordOf(map[string]any{"id": 3, "name": "b", "age": 20}),
	}
	tbl, _ := newTable(t, types.Config{Data: data})
	var events []types.SortEvent
	tbl.OnSort(func(e types.SortEvent) { events = append(events, e) })

	require.NoError(t, tbl.Sort("name"))
	first := names(tbl.Data())
	assert.Equal(t, []string{"a", "b", "c"}, first)

	require.NoError(t, tbl.Sort("name"))
	assert.Equal(t, []string{"c", "b", "a"}, names(tbl.Data()))

	require.NoError(t, tbl.Sort("age"))
	assert.Equal(t, []string{"a", "b", "c"}, names(tbl.Data()))

	assert.Equal(t, []types.SortEvent{
		{Field: "name", Order: types.SortAsc},
		{Field: "name", Order: types.SortDesc},
		{Field: "age", Order: types.SortAsc},
	}, events)
	assert.Equal(t, types.SortState{Field: "age", Order: types.SortAsc}, tbl.View().Sort)

	assert.ErrorIs(t, tbl.Sort("id"), types.ErrNotSortable)
	assert.ErrorIs(t, tbl.Sort("missing"), types.ErrUnknownField)
}

func TestSortCarriesSelection(t *testing.T) {
	data := []types.Record{
		types.RecordOf(map[string]any{"name": "c"}),
		types.RecordOf(map[string]any{"name": "a"}),
		types.RecordOf(map[string]any{"name": "b"}),
	}
	tbl, _ := newTable(t, types.Config{Data: data})
	require.NoError(t, tbl.ToggleRowSelection(0))

	require.NoError(t, tbl.Sort("name"))
	v := tbl.View()
	assert.Equal(t, []int{2}, v.Selected)
	assert.Equal(t, "c", v.Rows[2].Record.Text("name"))
	assert.True(t, v.Rows[2].Selected)
}

func TestSetDataReappliesSort(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(3)})
	require.NoError(t, tbl.Sort("name"))
	require.NoError(t, tbl.Sort("name"))
	require.NoError(t, tbl.SetData(numbered(4)))
	assert.Equal(t, []string{"r03", "r02", "r01", "r00"}, names(tbl.Data()))
}

func TestFilterEventsAndClear(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(12)})
	var events []types.FilterEvent
	tbl.OnFilter(func(e types.FilterEvent) { events = append(events, e) })

	require.NoError(t, tbl.SetFilter("name", "1"))
	assert.Equal(t, []string{"r01", "r10", "r11"}, names(events[0].Filtered))
	require.NoError(t, tbl.SetFilter("age", map[string]any{"min": 21, "max": 21}))
	require.Len(t, events, 2)
	assert.Equal(t, []string{"r01"}, names(events[1].Filtered))
	assert.Len(t, events[1].Filters, 2)

	require.NoError(t, tbl.SetFilter("age", ""))
	require.Len(t, events, 3)
	assert.NotContains(t, events[2].Filters, "age", "vacuous filter is removed")

	tbl.ClearFilters()
	require.Len(t, events, 4)
	assert.Empty(t, events[3].Filters)
	assert.Len(t, events[3].Filtered, 12)

	assert.ErrorIs(t, tbl.SetFilter("nope", "x"), types.ErrUnknownField)
	assert.ErrorIs(t, tbl.SetFilter("name", struct{}{}), types.ErrInvalidFilter)
}

func TestUnfilterableColumn(t *testing.T) {
	cols := []types.Column{{Field: "name", Label: "Name", Filterable: types.Flag(false)}}
	tbl, _ := newTable(t, types.Config{Columns: cols, Data: numbered(2)})
	assert.ErrorIs(t, tbl.SetFilter("name", "r"), types.ErrNotFilterable)
	assert.NotContains(t, tbl.View().FilterKinds, "name")
}

func TestViewFilterMetadata(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(25)})
	v := tbl.View()
	assert.Equal(t, types.FilterText, v.FilterKinds["name"], "25 distinct names exceed the option limit")
	assert.Equal(t, types.FilterNumberRange, v.FilterKinds["age"])
	assert.Len(t, v.FilterOptions["age"], 7)
}

func TestFilterThenExportEndToEnd(t *testing.T) {
	cols := []types.Column{
		{Field: "name", Label: "Name"},
		{Field: "city", Label: "City"},
	}
	data := []types.Record{
		types.RecordOf(map[string]any{"name": "Alice", "city": "Paris"}),
		types.RecordOf(map[string]any{"name": "Bob", "city": "Berlin"}),
		types.RecordOf(map[string]any{"name": "Carol", "city": "Rome"}),
	}
	tbl, _ := newTable(t, types.Config{Columns: cols, Data: data})
	require.NoError(t, tbl.SetFilter("name", "bo"))

	var exported []types.ExportEvent
	tbl.OnExport(func(e types.ExportEvent) { exported = append(exported, e) })

	csv, err := tbl.ExportCSV(types.ExportFiltered)
	require.NoError(t, err)
	assert.Equal(t, "Name,City\n\"Bob\",\"Berlin\"", csv)

	require.Len(t, exported, 1)
	assert.Equal(t, "csv", exported[0].Format)
	assert.Equal(t, csv, exported[0].CSV)
	assert.Len(t, exported[0].Data, 1)

	all, err := tbl.ExportCSV(types.ExportAll)
	require.NoError(t, err)
	assert.Equal(t, "Name,City\n\"Alice\",\"Paris\"\n\"Bob\",\"Berlin\"\n\"Carol\",\"Rome\"", all)
}

type memDownloader struct {
	filename string
	data     []byte
}

func (d *memDownloader) Download(filename string, data []byte) error {
	d.filename, d.data = filename, data
	return nil
}

func TestExportUsesDownloaderAcrossPages(t *testing.T) {
	d := &memDownloader{}
	tbl, _ := newTable(t, types.Config{Data: numbered(15), PageSize: 10, Downloader: d, ExportFilename: "people.csv"})

	csv, err := tbl.ExportCSV(types.ExportFiltered)
	require.NoError(t, err)
	assert.Equal(t, "people.csv", d.filename)
	assert.Equal(t, csv, string(d.data))
	assert.Len(t, splitLines(csv), 16, "header plus every filtered row, not just the page")
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func TestOwnOnlyRowVisibility(t *testing.T) {
	cols := []types.Column{{Field: "name", Label: "Name"}, {Field: "owner_id", Label: "Owner"}}
	data := []types.Record{
		types.RecordOf(map[string]any{"name": "a", "owner_id": "u1"}),
		types.RecordOf(map[string]any{"name": "b", "owner_id": "u2"}),
		types.RecordOf(map[string]any{"name": "c", "owner_id": "u1"}),
	}
	perms := types.PermissionConfig{
		Enabled: true,
		Rules:   map[types.Action][]string{types.ActionView: {types.Wildcard}},
		OwnOnly: []types.Action{types.ActionView},
	}
	tbl, _ := newTable(t, types.Config{Columns: cols, Data: data, Permissions: perms, CurrentUser: types.User{ID: "u1"}})
	assert.Equal(t, []int{0, 2}, rowIndices(tbl.View()))

	tbl.SetCurrentUser(types.User{ID: "u2"})
	assert.Equal(t, []int{1}, rowIndices(tbl.View()))

	tbl.SetCurrentUser(types.User{})
	assert.True(t, tbl.View().Empty())
}

func TestExportAllHonoursOwnOnlyView(t *testing.T) {
	cols := []types.Column{{Field: "name", Label: "Name"}, {Field: "owner_id", Label: "Owner"}}
	data := []types.Record{
		types.RecordOf(map[string]any{"name": "a", "owner_id": "u1"}),
		types.RecordOf(map[string]any{"name": "b", "owner_id": "u2"}),
		types.RecordOf(map[string]any{"name": "c", "owner_id": "u1"}),
	}
	perms := types.PermissionConfig{Enabled: true, OwnOnly: []types.Action{types.ActionView}}
	tbl, _ := newTable(t, types.Config{Columns: cols, Data: data, Permissions: perms, CurrentUser: types.User{ID: "u1"}})
	require.NoError(t, tbl.SetFilter("name", "a"))

	out, err := tbl.ExportCSV(types.ExportAll)
	require.NoError(t, err)
	assert.Equal(t, "Name,Owner\n\"a\",\"u1\"\n\"c\",\"u1\"", out)
}

func TestExportPermission(t *testing.T) {
	perms := types.PermissionConfig{Enabled: true, Rules: map[types.Action][]string{types.ActionExport: {"admin"}}}
	tbl, _ := newTable(t, types.Config{Data: numbered(2), Permissions: perms})

	_, err := tbl.ExportCSV(types.ExportAll)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	tbl.SetCurrentUser(types.User{ID: "x", Roles: []string{"admin"}})
	_, err = tbl.ExportCSV(types.ExportAll)
	assert.NoError(t, err)
}

func TestUnruledActionsStayOpen(t *testing.T) {
	perms := types.PermissionConfig{Enabled: true, Rules: map[types.Action][]string{types.ActionEdit: {"admin"}}}
	tbl, _ := newTable(t, types.Config{Data: numbered(3), Permissions: perms, CurrentUser: types.User{ID: "a", Roles: []string{"admin"}}})
	ctx := context.Background()

	_, err := tbl.ExportCSV(types.ExportAll)
	require.NoError(t, err)
	_, err = tbl.AddRow(ctx, types.RecordOf(map[string]any{"id": 9, "name": "new"}))
	require.NoError(t, err)
	require.NoError(t, tbl.RemoveRow(ctx, 0))
	require.NoError(t, tbl.ToggleRowSelection(0))
	require.NoError(t, tbl.PerformBulkAction(ctx, types.BulkDelete))
	assert.Len(t, tbl.Data(), 2)

	tbl.SetCurrentUser(types.User{})
	_, err = tbl.ExportCSV(types.ExportFiltered)
	assert.NoError(t, err, "export has no rule")
	assert.ErrorIs(t, tbl.BeginEdit(ctx, 0, "name"), types.ErrPermissionDenied)
}

func TestDestroy(t *testing.T) {
	tbl, r := newTable(t, types.Config{Data: numbered(3)})
	tbl.Render()
	fired := 0
	tbl.OnSelection(func(types.SelectionEvent) { fired++ })

	tbl.Destroy()
	renders := r.renders()

	assert.ErrorIs(t, tbl.SetData(numbered(1)), types.ErrDestroyed)
	assert.ErrorIs(t, tbl.ToggleRowSelection(0), types.ErrDestroyed)
	assert.ErrorIs(t, tbl.Sort("name"), types.ErrDestroyed)
	_, err := tbl.AddRow(context.Background(), types.Record{})
	assert.ErrorIs(t, err, types.ErrDestroyed)
	_, err = tbl.ExportCSV(types.ExportAll)
	assert.ErrorIs(t, err, types.ErrDestroyed)
	assert.False(t, tbl.GoToPage(1))
	tbl.SelectAll()
	tbl.Render()

	assert.Zero(t, fired)
	assert.Equal(t, renders, r.renders())
	assert.Empty(t, tbl.Data())
	assert.Empty(t, tbl.View().Rows)
}

func TestUnsubscribe(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(3)})
	a, b := 0, 0
	stopA := tbl.OnSelection(func(types.SelectionEvent) { a++ })
	tbl.OnSelection(func(types.SelectionEvent) { b++ })

	tbl.SelectAll()
	stopA()
	tbl.DeselectAll()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
