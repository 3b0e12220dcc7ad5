package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// JSON writes one indented JSON document per view.
type JSON struct {
	Out    io.Writer
	ErrOut io.Writer
}

type jsonView struct {
	Columns  []string                    `json:"columns"`
	Rows     []map[string]string         `json:"rows"`
	Page     types.PageInfo              `json:"page"`
	Sort     *types.SortState            `json:"sort,omitempty"`
	Filters  types.FilterState           `json:"filters,omitempty"`
	Kinds    map[string]types.FilterKind `json:"filter_kinds,omitempty"`
	Selected []int                       `json:"selected,omitempty"`
	Error    string                      `json:"error,omitempty"`
}

func (j *JSON) Render(v types.View) {
	out := jsonView{
		Columns:  make([]string, len(v.Columns)),
		Rows:     make([]map[string]string, len(v.Rows)),
		Page:     v.Page,
		Filters:  v.Filters,
		Kinds:    v.FilterKinds,
		Selected: v.Selected,
	}
	for i, c := range v.Columns {
		out.Columns[i] = c.Field
	}
	for i, r := range v.Rows {
		row := make(map[string]string, len(v.Columns))
		for k, c := range v.Columns {
			row[c.Field] = r.Cells[k]
		}
		out.Rows[i] = row
	}
	if v.Sort.Field != "" {
		s := v.Sort
		out.Sort = &s
	}
	if v.LoadError != nil {
		out.Error = v.LoadError.Error()
	}
	enc := json.NewEncoder(j.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		j.ShowError(err)
	}
}

func (j *JSON) ShowError(err error) {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintln(j.ErrOut, string(b))
}
