package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

type fakeFetcher struct {
	byURL      map[string][]types.Record
	byEndpoint map[string][]types.Record
	fail       bool
	calls      int
}

func (f *fakeFetcher) FetchURL(_ context.Context, url string) ([]types.Record, error) {
	f.calls++
	if f.fail {
		return nil, &types.FetchError{Op: "lookup", URL: url, Err: errors.New("down")}
	}
	return f.byURL[url], nil
}

func (f *fakeFetcher) FetchEndpoint(_ context.Context, name string) ([]types.Record, error) {
	f.calls++
	if f.fail {
		return nil, &types.FetchError{Op: "lookup", URL: name, Err: errors.New("down")}
	}
	return f.byEndpoint[name], nil
}

func users() []types.Record {
	return []types.Record{
		types.RecordOf(map[string]any{"id": 1, "name": "Ann", "active": true}),
		types.RecordOf(map[string]any{"id": 2, "name": "Bob", "active": false}),
		types.RecordOf(map[string]any{"id": 3, "name": "Cyd", "active": true}),
	}
}

func TestResolveSourcePriority(t *testing.T) {
	f := &fakeFetcher{
		byURL:      map[string][]types.Record{"/u": {types.RecordOf(map[string]any{"id": 1, "name": "from url"})}},
		byEndpoint: map[string][]types.Record{"users": {types.RecordOf(map[string]any{"id": 1, "name": "from endpoint"})}},
	}
	static := []types.Record{types.RecordOf(map[string]any{"id": 1, "name": "from data"})}

	tests := []struct {
		name string
		cfg  types.LookupConfig
		want string
	}{
		{"url wins", types.LookupConfig{URL: "/u", Endpoint: "users", Data: static}, "from url"},
		{"endpoint before data", types.LookupConfig{Endpoint: "users", Data: static}, "from endpoint"},
		{"static data", types.LookupConfig{Data: static}, "from data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(f, nil)
			cfg := tt.cfg
			col := types.Column{Field: "owner", Label: "Owner", Lookup: &cfg}
			assert.Equal(t, tt.want, r.Resolve(context.Background(), col, types.Number(1)))
		})
	}
}

func TestResolveLooseEquality(t *testing.T) {
	r := New(nil, nil)
	col := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{Data: users()}}
	ctx := context.Background()

	assert.Equal(t, "Bob", r.Resolve(ctx, col, types.String("2")))
	assert.Equal(t, "Cyd", r.Resolve(ctx, col, types.Number(3)))
	assert.Equal(t, "42", r.Resolve(ctx, col, types.Number(42)), "no match returns raw")
}

func TestResolveWithoutSourceReturnsRaw(t *testing.T) {
	r := New(nil, nil)
	plain := types.Column{Field: "owner", Label: "Owner"}
	assert.Equal(t, "7", r.Resolve(context.Background(), plain, types.Number(7)))

	empty := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{}}
	assert.Equal(t, "7", r.Resolve(context.Background(), empty, types.Number(7)))
}

func TestOptionsFilterAndFields(t *testing.T) {
	r := New(nil, nil)
	data := []types.Record{
		types.RecordOf(map[string]any{"code": "a", "title": "Alpha", "kind": "x"}),
		types.RecordOf(map[string]any{"code": "b", "title": "Beta", "kind": "y"}),
		types.RecordOf(map[string]any{"code": "c", "title": "Gamma", "kind": "x"}),
	}
	col := types.Column{Field: "code", Label: "Code", Lookup: &types.LookupConfig{
		Data:         data,
		ValueField:   "code",
		DisplayField: "title",
		Filter:       map[string]types.Value{"kind": types.String("x")},
	}}

	opts := r.Options(context.Background(), col)
	require.Len(t, opts, 2)
	assert.Equal(t, "Alpha", opts[0].Display)
	assert.Equal(t, types.String("c"), opts[1].Value)
	assert.Equal(t, "b", r.Resolve(context.Background(), col, types.String("b")), "filtered out items do not resolve")
}

func TestFilterUsesLooseEquality(t *testing.T) {
	r := New(nil, nil)
	col := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{
		Data:   users(),
		Filter: map[string]types.Value{"active": types.Number(1)},
	}}
	opts := r.Options(context.Background(), col)
	require.Len(t, opts, 2)
	assert.Equal(t, "Ann", opts[0].Display)
	assert.Equal(t, "Cyd", opts[1].Display)
}

func TestCacheHitAndInvalidate(t *testing.T) {
	f := &fakeFetcher{byEndpoint: map[string][]types.Record{"users": users()}}
	r := New(f, nil)
	col := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{Endpoint: "users"}}
	ctx := context.Background()

	assert.Equal(t, "Ann (raw)", r.Display(col, types.String("Ann (raw)")), "display is cache-only")
	assert.False(t, r.Cached(col))

	r.Options(ctx, col)
	r.Resolve(ctx, col, types.Number(1))
	assert.Equal(t, 1, f.calls)
	assert.True(t, r.Cached(col))
	assert.Equal(t, "Bob", r.Display(col, types.Number(2)))

	r.Invalidate("other")
	assert.True(t, r.Cached(col))

	r.Invalidate("owner")
	assert.False(t, r.Cached(col))
	r.Resolve(ctx, col, types.Number(1))
	assert.Equal(t, 2, f.calls)

	r.Invalidate("")
	assert.False(t, r.Cached(col))
}

func TestFetchFailureIsNotCached(t *testing.T) {
	f := &fakeFetcher{fail: true}
	r := New(f, nil)
	col := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{URL: "/users"}}
	ctx := context.Background()

	assert.Empty(t, r.Options(ctx, col))
	assert.Equal(t, "5", r.Resolve(ctx, col, types.Number(5)))
	assert.False(t, r.Cached(col))
	assert.Equal(t, 2, f.calls)
}

func TestRemoteSourceWithoutFetcher(t *testing.T) {
	r := New(nil, nil)
	col := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{URL: "/users"}}
	assert.Equal(t, "1", r.Resolve(context.Background(), col, types.Number(1)))
}

func TestDisplayStaticDataWithoutPrefetch(t *testing.T) {
	r := New(nil, nil)
	col := types.Column{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{Data: users()}}
	assert.Equal(t, "Ann", r.Display(col, types.Number(1)))
	assert.True(t, r.Cached(col))
}

func TestPrefetch(t *testing.T) {
	f := &fakeFetcher{byEndpoint: map[string][]types.Record{"users": users()}}
	r := New(f, nil)
	cols := []types.Column{
		{Field: "name", Label: "Name"},
		{Field: "owner", Label: "Owner", Lookup: &types.LookupConfig{Endpoint: "users"}},
	}
	r.Prefetch(context.Background(), cols)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "Cyd", r.Display(cols[1], types.Number(3)))
}
