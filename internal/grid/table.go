// Package grid implements the data-grid engine: it owns the base record
// collection, recomputes the filter, sort and pagination pipeline on every
// change and hands complete views to a types.Renderer.
package grid

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mesh-intelligence/datagrid/internal/edit"
	"github.com/mesh-intelligence/datagrid/internal/filter"
	"github.com/mesh-intelligence/datagrid/internal/lookup"
	"github.com/mesh-intelligence/datagrid/internal/paging"
	"github.com/mesh-intelligence/datagrid/internal/permission"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Table implements types.Table. All state is guarded by mu, which is never
// held while calling a Renderer, an observer or a remote collaborator.
type Table struct {
	mu sync.Mutex

	cfg      types.Config
	columns  []types.Column
	colIndex map[string]int
	renderer types.Renderer
	gate     *permission.Gate
	lookups  *lookup.Resolver
	log      *slog.Logger

	records  []types.Record
	filters  types.FilterState
	sort     types.SortState
	page     int
	pageSize int
	selected map[int]struct{}
	edits    edit.Machine
	editErr  error
	user     types.User
	loadErr  error

	// gen changes whenever base indices may have shifted, so a remote call
	// that completes later knows whether its captured index still holds.
	gen       uint64
	stale     bool
	detection filter.Detection
	visible   []int // base indices of the filtered set, in base order
	window    paging.Window

	rendered  bool
	destroyed bool

	obs observers
}

var _ types.Table = (*Table)(nil)

// New validates cfg and builds a table over a copy of cfg.Data. It does not
// draw; call Render once the host is ready.
func New(cfg types.Config, renderer types.Renderer) (*Table, error) {
	if renderer == nil {
		return nil, &types.ConfigError{Err: types.ErrNoRenderer}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	t := &Table{
		cfg:      cfg,
		columns:  slices.Clone(cfg.Columns),
		colIndex: make(map[string]int, len(cfg.Columns)),
		renderer: renderer,
		gate:     permission.New(cfg.Permissions),
		lookups:  lookup.New(cfg.Lookups, cfg.Logger),
		log:      cfg.Logger,
		records:  types.CloneRecords(cfg.Data),
		filters:  make(types.FilterState),
		sort:     types.SortState{Order: types.SortAsc},
		page:     1,
		pageSize: cfg.PageSize,
		selected: make(map[int]struct{}),
		user:     cfg.CurrentUser,
		stale:    true,
	}
	if t.records == nil {
		t.records = []types.Record{}
	}
	for i, col := range t.columns {
		t.colIndex[col.Field] = i
	}
	t.recomputeLocked()
	return t, nil
}

// Render draws the current view and enables redraws on later changes.
func (t *Table) Render() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.rendered = true
	t.flush()
}

// View returns the current view without drawing.
func (t *Table) View() types.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return types.View{}
	}
	t.recomputeLocked()
	return t.viewLocked()
}

// Destroy clears all state and detaches every observer. Remote calls still
// in flight complete but their results are discarded.
func (t *Table) Destroy() {
	t.mu.Lock()
	t.destroyed = true
	t.records = nil
	t.filters = nil
	t.selected = nil
	t.visible = nil
	t.edits.Cancel()
	t.gen++
	t.mu.Unlock()
	t.obs.reset()
	t.lookups.Invalidate("")
}

// flush recomputes the pipeline, releases mu and redraws if the table has
// been rendered. Every mutating operation ends with flush.
func (t *Table) flush() {
	t.recomputeLocked()
	draw := t.rendered && !t.destroyed
	var view types.View
	if draw {
		view = t.viewLocked()
	}
	t.mu.Unlock()
	if draw {
		t.renderer.Render(view)
	}
}

// recomputeLocked rebuilds the filtered index list and the page window.
func (t *Table) recomputeLocked() {
	if t.stale {
		t.detection = filter.Detect(t.records, t.columns)
		t.stale = false
	}
	ownOnly := t.gate.OwnOnly(types.ActionView)
	t.visible = t.visible[:0]
	for i, r := range t.records {
		if ownOnly && !t.gate.Allowed(types.ActionView, t.user, r) {
			continue
		}
		if len(t.filters) > 0 && !filter.Match(r, t.filters, t.detection.Kinds) {
			continue
		}
		t.visible = append(t.visible, i)
	}
	t.window = paging.Compute(len(t.visible), t.pageSize, t.page)
	t.page = t.window.Page
	t.log.Debug("recomputed view", "rows", len(t.records), "filtered", len(t.visible), "page", t.page)
}

// viewLocked builds the public snapshot of the current window.
func (t *Table) viewLocked() types.View {
	cols := make([]types.Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	canEditAny := slices.ContainsFunc(cols, func(c types.Column) bool { return c.Editable })

	rows := make([]types.ViewRow, 0, t.window.End-t.window.Start)
	for _, idx := range t.visible[t.window.Start:t.window.End] {
		rec := t.records[idx]
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = t.displayLocked(c, rec[c.Field])
		}
		_, sel := t.selected[idx]
		rows = append(rows, types.ViewRow{
			Index:    idx,
			Record:   rec.Clone(),
			Cells:    cells,
			Selected: sel,
			Editable: canEditAny && t.gate.Allowed(types.ActionEdit, t.user, rec),
		})
	}

	kinds := make(map[string]types.FilterKind, len(t.detection.Kinds))
	for k, v := range t.detection.Kinds {
		kinds[k] = v
	}
	options := make(map[string][]string, len(t.detection.Distinct))
	for k, v := range t.detection.Distinct {
		options[k] = slices.Clone(v)
	}

	editing := t.edits.EditState()
	if editing != nil {
		editing.Error = t.editErr
	}
	return types.View{
		Columns:       cols,
		Rows:          rows,
		Page:          t.window.Info(),
		Sort:          t.sort,
		Filters:       t.filters.Clone(),
		FilterKinds:   kinds,
		FilterOptions: options,
		Selected:      t.selectionLocked(),
		Editing:       editing,
		LoadError:     t.loadErr,
	}
}

func (t *Table) displayLocked(col types.Column, v types.Value) string {
	if col.Lookup != nil {
		return t.lookups.Display(col, v)
	}
	return v.Text()
}

func (t *Table) column(field string) (types.Column, bool) {
	i, ok := t.colIndex[field]
	if !ok {
		return types.Column{}, false
	}
	return t.columns[i], true
}

func (t *Table) checkRowLocked(index int) error {
	if t.destroyed {
		return types.ErrDestroyed
	}
	if index < 0 || index >= len(t.records) {
		return types.ErrRowOutOfRange
	}
	return nil
}

// locateLocked finds the current index of a row captured at index under
// generation gen. If indices shifted since, the row is searched by id.
func (t *Table) locateLocked(index int, gen uint64, id string) (int, bool) {
	if gen == t.gen {
		return index, index >= 0 && index < len(t.records)
	}
	if id == "" {
		return 0, false
	}
	for i, r := range t.records {
		if r.Text(t.cfg.IDField) == id {
			return i, true
		}
	}
	return 0, false
}

func (t *Table) showError(err error) {
	t.renderer.ShowError(err)
}
