// Package lookup resolves foreign-key column values to display labels using
// per-table cached lookup datasets.
package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Resolver fetches and caches lookup datasets. It is safe for concurrent
// use. The cache has no TTL; Invalidate drops entries explicitly.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string][]types.Record
	fetch types.LookupFetcher
	log   *slog.Logger
}

// New returns a Resolver. fetch may be nil, in which case only static
// lookup data is available.
func New(fetch types.LookupFetcher, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		cache: make(map[string][]types.Record),
		fetch: fetch,
		log:   log,
	}
}

// cacheKey combines the field name with the serialized lookup config so
// two columns sharing a field but not a config never collide.
func cacheKey(col types.Column) string {
	b, err := json.Marshal(col.Lookup)
	if err != nil {
		return col.Field
	}
	return col.Field + "\x00" + string(b)
}

// Dataset returns the filtered lookup items for col, fetching on a cache
// miss. Fetch failures yield an empty dataset that is not cached.
func (r *Resolver) Dataset(ctx context.Context, col types.Column) []types.Record {
	if col.Lookup == nil || !col.Lookup.HasSource() {
		return nil
	}
	key := cacheKey(col)
	r.mu.RLock()
	items, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return items
	}

	items, err := r.load(ctx, *col.Lookup)
	if err != nil {
		r.log.Warn("lookup fetch failed", "field", col.Field, "error", err)
		return nil
	}
	items = applyFilter(items, col.Lookup.Filter)

	r.mu.Lock()
	r.cache[key] = items
	r.mu.Unlock()
	return items
}

func (r *Resolver) load(ctx context.Context, cfg types.LookupConfig) ([]types.Record, error) {
	switch {
	case cfg.URL != "":
		if r.fetch == nil {
			return nil, types.ErrNoSource
		}
		return r.fetch.FetchURL(ctx, cfg.URL)
	case cfg.Endpoint != "":
		if r.fetch == nil {
			return nil, types.ErrNoSource
		}
		return r.fetch.FetchEndpoint(ctx, cfg.Endpoint)
	default:
		return cfg.Data, nil
	}
}

func applyFilter(items []types.Record, filter map[string]types.Value) []types.Record {
	if len(filter) == 0 {
		return items
	}
	out := make([]types.Record, 0, len(items))
	for _, it := range items {
		keep := true
		for k, want := range filter {
			got, _ := it.Get(k)
			if !types.LooseEquals(got, want) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

// Options returns the ordered {value, display} choices for col.
func (r *Resolver) Options(ctx context.Context, col types.Column) []types.LookupOption {
	items := r.Dataset(ctx, col)
	if len(items) == 0 {
		return nil
	}
	vk, dk := col.Lookup.ValueKey(), col.Lookup.DisplayKey()
	opts := make([]types.LookupOption, 0, len(items))
	for _, it := range items {
		v, _ := it.Get(vk)
		opts = append(opts, types.LookupOption{Value: v, Display: it.Text(dk)})
	}
	return opts
}

// Resolve returns the display label for raw. With no lookup source, no
// loaded dataset or no matching item, it returns raw's text unchanged.
func (r *Resolver) Resolve(ctx context.Context, col types.Column, raw types.Value) string {
	return match(r.Dataset(ctx, col), col, raw)
}

// Display is the non-blocking form of Resolve: it consults the cache only
// and falls back to the raw text on a miss.
func (r *Resolver) Display(col types.Column, raw types.Value) string {
	if col.Lookup == nil || !col.Lookup.HasSource() {
		return raw.Text()
	}
	r.mu.RLock()
	items, ok := r.cache[cacheKey(col)]
	r.mu.RUnlock()
	if !ok && col.Lookup.URL == "" && col.Lookup.Endpoint == "" {
		// Static data needs no I/O.
		items = r.Dataset(context.Background(), col)
	}
	return match(items, col, raw)
}

// Prefetch loads the dataset of every lookup column in columns.
func (r *Resolver) Prefetch(ctx context.Context, columns []types.Column) {
	for _, col := range columns {
		if col.Lookup != nil && col.Lookup.HasSource() {
			r.Dataset(ctx, col)
		}
	}
}

// Cached reports whether col's dataset is already in the cache.
func (r *Resolver) Cached(col types.Column) bool {
	if col.Lookup == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cache[cacheKey(col)]
	return ok
}

func match(items []types.Record, col types.Column, raw types.Value) string {
	if col.Lookup == nil {
		return raw.Text()
	}
	vk, dk := col.Lookup.ValueKey(), col.Lookup.DisplayKey()
	for _, it := range items {
		v, _ := it.Get(vk)
		if types.LooseEquals(v, raw) {
			return it.Text(dk)
		}
	}
	return raw.Text()
}

// Invalidate drops the cached datasets of field, or of every field when
// field is empty. The next access refetches.
func (r *Resolver) Invalidate(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if field == "" {
		clear(r.cache)
		return
	}
	prefix := field + "\x00"
	for k := range r.cache {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(r.cache, k)
		}
	}
}
