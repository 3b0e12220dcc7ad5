package grid

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// recorder is a Renderer that keeps every view and error it receives.
type recorder struct {
	mu     sync.Mutex
	views  []types.View
	errors []error
}

func (r *recorder) Render(v types.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) ShowError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *recorder) renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *recorder) errs() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

// fakeSource is an in-memory types.Source with injectable failures.
type fakeSource struct {
	mu        sync.Mutex
	records   []types.Record
	loadErr   error
	createErr error
	updateErr error
	deleteErr map[string]error
	nextID    int

	updates []string
	deletes []string

	// loadGate, when set, blocks Load until it is closed.
	loadGate chan struct{}
}

func (s *fakeSource) Load(ctx context.Context) ([]types.Record, error) {
	if s.loadGate != nil {
		<-s.loadGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return types.CloneRecords(s.records), nil
}

func (s *fakeSource) Create(_ context.Context, rec types.Record) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	out := rec.Clone()
	out["id"] = types.String(fmt.Sprintf("srv-%d", s.nextID))
	s.records = append(s.records, out)
	return out, nil
}

func (s *fakeSource) Update(_ context.Context, id string, rec types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, id+":"+rec.Text("name"))
	return nil
}

func (s *fakeSource) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteErr[id]; err != nil {
		return err
	}
	s.deletes = append(s.deletes, id)
	return nil
}

func nameAgeColumns() []types.Column {
	return []types.Column{
		{Field: "id", Label: "ID", Sortable: types.Flag(false)},
		{Field: "name", Label: "Name", Editable: true},
		{Field: "age", Label: "Age", Editable: true},
	}
}

// numbered returns n records with ids 0..n-1 and names "r00".."rNN".
func numbered(n int) []types.Record {
	out := make([]types.Record, n)
	for i := range out {
		out[i] = types.RecordOf(map[string]any{
			"id":   i,
			"name": fmt.Sprintf("r%02d", i),
			"age":  20 + i%7,
		})
	}
	return out
}

func newTable(t *testing.T, cfg types.Config) (*Table, *recorder) {
	t.Helper()
	if cfg.Columns == nil {
		cfg.Columns = nameAgeColumns()
	}
	r := &recorder{}
	tbl, err := New(cfg, r)
	require.NoError(t, err)
	return tbl, r
}

func rowIndices(v types.View) []int {
	out := make([]int, len(v.Rows))
	for i, row := range v.Rows {
		out[i] = row.Index
	}
	return out
}

func names(records []types.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text("name")
	}
	return out
}
