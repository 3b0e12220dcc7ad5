package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

func TestMachineLifecycle(t *testing.T) {
	var m Machine
	assert.Equal(t, Idle, m.State())

	s, cancelled := m.Begin(2, "name", types.String("Ann"))
	assert.Nil(t, cancelled)
	assert.Equal(t, Editing, m.State())
	assert.Equal(t, 2, s.Row)

	require.NoError(t, m.Set(types.String("Anna")))
	got, err := m.Commit()
	require.NoError(t, err)
	assert.Equal(t, types.String("Ann"), got.Original)
	assert.Equal(t, types.String("Anna"), got.Current)
	assert.True(t, got.Changed())
	assert.Equal(t, Idle, m.State())

	_, err = m.Commit()
	assert.ErrorIs(t, err, types.ErrNoEditSession)
	assert.ErrorIs(t, m.Set(types.String("x")), types.ErrNoEditSession)
}

func TestBeginWhileEditingCancelsPrevious(t *testing.T) {
	var m Machine
	m.Begin(0, "a", types.String("old A"))
	require.NoError(t, m.Set(types.String("pending A")))

	s, cancelled := m.Begin(1, "b", types.String("B"))
	require.NotNil(t, cancelled)
	assert.Equal(t, "a", cancelled.Field)
	assert.Equal(t, types.String("pending A"), cancelled.Current)

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, s.ID, active.ID)
	assert.Equal(t, "b", active.Field)
}

func TestCancel(t *testing.T) {
	var m Machine
	_, ok := m.Cancel()
	assert.False(t, ok)

	m.Begin(0, "a", types.Number(1))
	s, ok := m.Cancel()
	assert.True(t, ok)
	assert.False(t, s.Changed())
	assert.Nil(t, m.EditState())
}

func TestSetOptionsDropsStaleSession(t *testing.T) {
	var m Machine
	first, _ := m.Begin(0, "a", types.Null())
	m.Begin(0, "a", types.Null())

	assert.False(t, m.SetOptions(first.ID, []types.LookupOption{{Display: "x"}}))
	active, _ := m.Active()
	assert.True(t, m.SetOptions(active.ID, []types.LookupOption{{Display: "y"}}))
	assert.Len(t, m.EditState().Options, 1)
}

func TestReindex(t *testing.T) {
	var m Machine
	m.Begin(3, "a", types.Null())
	m.Reindex(func(row int) (int, bool) { return row - 1, true })
	s, _ := m.Active()
	assert.Equal(t, 2, s.Row)

	m.Reindex(func(int) (int, bool) { return 0, false })
	assert.Equal(t, Idle, m.State())
}
