package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

func TestBulkDeleteLocal(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(5)})
	var bulk []types.BulkActionEvent
	var selections []types.SelectionEvent
	tbl.OnBulkAction(func(e types.BulkActionEvent) { bulk = append(bulk, e) })
	tbl.OnSelection(func(e types.SelectionEvent) { selections = append(selections, e) })

	require.NoError(t, tbl.ToggleRowSelection(3))
	require.NoError(t, tbl.ToggleRowSelection(1))
	require.NoError(t, tbl.PerformBulkAction(context.Background(), types.BulkDelete))

	assert.Equal(t, []string{"r00", "r02", "r04"}, names(tbl.Data()))
	assert.Empty(t, tbl.View().Selected)

	require.Len(t, bulk, 1)
	assert.Equal(t, types.BulkDelete, bulk[0].Action)
	assert.Equal(t, []int{1, 3}, bulk[0].Indices)
	assert.Equal(t, []string{"r01", "r03"}, names(bulk[0].Records))

	require.Len(t, selections, 3)
	assert.Equal(t, []int{1, 3}, selections[1].Selected)
	assert.Empty(t, selections[2].Selected)
}

func TestBulkDeleteRemoteIsDescending(t *testing.T) {
	src := &fakeSource{}
	tbl, _ := newTable(t, types.Config{Data: numbered(5), Source: src})
	require.NoError(t, tbl.ToggleRowSelection(1))
	require.NoError(t, tbl.ToggleRowSelection(3))

	require.NoError(t, tbl.PerformBulkAction(context.Background(), types.BulkDelete))
	assert.Equal(t, []string{"3", "1"}, src.deletes)
	assert.Equal(t, []string{"r00", "r02", "r04"}, names(tbl.Data()))
}

func TestBulkDeletePartialFailure(t *testing.T) {
	src := &fakeSource{deleteErr: map[string]error{"1": errors.New("locked")}}
	tbl, r := newTable(t, types.Config{Data: numbered(5), Source: src})
	fired := false
	tbl.OnBulkAction(func(types.BulkActionEvent) { fired = true })
	require.NoError(t, tbl.ToggleRowSelection(1))
	require.NoError(t, tbl.ToggleRowSelection(3))

	err := tbl.PerformBulkAction(context.Background(), types.BulkDelete)
	require.Error(t, err)
	assert.ErrorIs(t, err, errPartialBulk)

	assert.Equal(t, []string{"r00", "r01", "r02", "r04"}, names(tbl.Data()))
	assert.Empty(t, tbl.View().Selected, "selection is cleared regardless")
	assert.False(t, fired)
	assert.Len(t, r.errs(), 1)
}

func TestBulkActionErrors(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(3)})
	ctx := context.Background()

	assert.ErrorIs(t, tbl.PerformBulkAction(ctx, types.BulkDelete), types.ErrEmptySelection)

	require.NoError(t, tbl.ToggleRowSelection(0))
	assert.ErrorIs(t, tbl.PerformBulkAction(ctx, "archive"), types.ErrUnknownBulkAction)
}

func TestBulkActionPermission(t *testing.T) {
	perms := types.PermissionConfig{Enabled: true, Rules: map[types.Action][]string{
		types.ActionBulk:   {types.Wildcard},
		types.ActionDelete: {"admin"},
	}}
	tbl, _ := newTable(t, types.Config{Data: numbered(3), Permissions: perms})
	require.NoError(t, tbl.ToggleRowSelection(0))

	assert.ErrorIs(t, tbl.PerformBulkAction(context.Background(), types.BulkDelete), types.ErrPermissionDenied)
	assert.Len(t, tbl.Data(), 3)
}

func TestBulkExportSelected(t *testing.T) {
	cols := []types.Column{{Field: "name", Label: "Name"}}
	d := &memDownloader{}
	tbl, _ := newTable(t, types.Config{Columns: cols, Data: numbered(4), Downloader: d})
	require.NoError(t, tbl.ToggleRowSelection(2))
	require.NoError(t, tbl.ToggleRowSelection(0))

	require.NoError(t, tbl.PerformBulkAction(context.Background(), types.BulkExport))
	assert.Equal(t, "Name\n\"r00\"\n\"r02\"", string(d.data))
	assert.Equal(t, types.DefaultExportFilename, d.filename)
	assert.Equal(t, []int{0, 2}, tbl.View().Selected, "export keeps the selection")
}

func TestCustomBulkAction(t *testing.T) {
	var got []int
	actions := map[string]types.BulkHandler{
		"archive": func(_ context.Context, indices []int, records []types.Record) error {
			got = indices
			return nil
		},
		"fail": func(context.Context, []int, []types.Record) error { return errors.New("nope") },
	}
	tbl, r := newTable(t, types.Config{Data: numbered(3), BulkActions: actions})
	var bulk []types.BulkActionEvent
	tbl.OnBulkAction(func(e types.BulkActionEvent) { bulk = append(bulk, e) })
	require.NoError(t, tbl.ToggleRowSelection(2))

	require.NoError(t, tbl.PerformBulkAction(context.Background(), "archive"))
	assert.Equal(t, []int{2}, got)
	require.Len(t, bulk, 1)
	assert.Equal(t, "archive", bulk[0].Action)

	assert.Error(t, tbl.PerformBulkAction(context.Background(), "fail"))
	assert.Len(t, bulk, 1)
	assert.Len(t, r.errs(), 1)
}

func TestSelectAllUsesFilteredSet(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(25), PageSize: 10})
	require.NoError(t, tbl.SetFilter("age", map[string]any{"min": 20, "max": 20}))

	tbl.SelectAll()
	assert.Equal(t, []int{0, 7, 14, 21}, tbl.View().Selected)

	tbl.DeselectAll()
	assert.Empty(t, tbl.View().Selected)
}

func TestToggleRowSelection(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(2)})
	require.NoError(t, tbl.ToggleRowSelection(1))
	assert.True(t, tbl.View().Rows[1].Selected)
	require.NoError(t, tbl.ToggleRowSelection(1))
	assert.False(t, tbl.View().Rows[1].Selected)
	assert.ErrorIs(t, tbl.ToggleRowSelection(-1), types.ErrRowOutOfRange)
}

func TestSetDataClearsSelection(t *testing.T) {
	tbl, _ := newTable(t, types.Config{Data: numbered(3)})
	tbl.SelectAll()
	require.NoError(t, tbl.SetData(numbered(3)))
	assert.Empty(t, tbl.View().Selected)
}
