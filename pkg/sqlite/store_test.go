package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

func TestOpenReturnsUsableStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Options{DataDir: t.TempDir(), Sync: SyncOnClose})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	n, err := store.Import(ctx, []types.Record{
		types.RecordOf(map[string]any{"id": "a", "name": "Ann"}),
		types.RecordOf(map[string]any{"id": "b", "name": "Bob"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOpenRejectsUnknownSync(t *testing.T) {
	_, err := Open(context.Background(), Options{DataDir: t.TempDir(), Sync: "batch"})
	assert.ErrorIs(t, err, types.ErrConfiguration)
}
