// Package render provides types.Renderer implementations for terminals,
// pipes and machine consumers. Pick one with New.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Options controls how views are written.
type Options struct {
	// JSON writes each view as a JSON document.
	JSON bool
	// Plain forces aligned plain text even on a TTY.
	Plain bool
}

// New returns the renderer suited to out: JSON when requested, a styled
// table when out is a terminal, plain aligned text otherwise. Errors go to
// errOut.
func New(out, errOut io.Writer, opts Options) types.Renderer {
	switch {
	case opts.JSON:
		return &JSON{Out: out, ErrOut: errOut}
	case !opts.Plain && isTerminal(out):
		return &Terminal{Out: out, ErrOut: errOut, Color: !NoColor()}
	default:
		return &Plain{Out: out, ErrOut: errOut}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NoColor reports whether colors are disabled through the environment.
func NoColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("GRIDCTL_NO_COLOR") != ""
}

// Discard drops every view and error.
type Discard struct{}

func (Discard) Render(types.View) {}

func (Discard) ShowError(error) {}

// headers returns the column labels with a sort marker on the sorted one.
func headers(v types.View) []string {
	out := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		out[i] = c.Label
		if v.Sort.Field != "" && c.Field == v.Sort.Field {
			if v.Sort.Order == types.SortDesc {
				out[i] += " ▼"
			} else {
				out[i] += " ▲"
			}
		}
	}
	return out
}

// cells returns the display rows, with the live edit value substituted
// into the cell being edited.
func cells(v types.View) [][]string {
	rows := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		row := append([]string(nil), r.Cells...)
		if v.Editing != nil && v.Editing.Row == r.Index {
			for j, c := range v.Columns {
				if c.Field == v.Editing.Field {
					row[j] = "[" + v.Editing.Current.Text() + "]"
				}
			}
		}
		rows[i] = row
	}
	return rows
}

// footer is the "Showing x–y of n" line plus page position.
func footer(v types.View) string {
	if v.Empty() {
		return "No results"
	}
	s := fmt.Sprintf("Showing %d–%d of %d", v.Page.First, v.Page.Last, v.Page.Count)
	if v.Page.ShowControls {
		s += fmt.Sprintf(" · page %d/%d", v.Page.Current, v.Page.Total)
	}
	if n := len(v.Selected); n > 0 {
		s += fmt.Sprintf(" · %d selected", n)
	}
	return s
}

// filterSummary lists active filters as field=value pairs in column order.
func filterSummary(v types.View) string {
	if len(v.Filters) == 0 {
		return ""
	}
	var parts []string
	for _, c := range v.Columns {
		f, ok := v.Filters[c.Field]
		if !ok {
			continue
		}
		parts = append(parts, c.Field+"="+describeFilter(f))
	}
	return "Filters: " + strings.Join(parts, ", ")
}

func describeFilter(f types.FilterValue) string {
	switch {
	case len(f.Values) > 0:
		return strings.Join(f.Values, "|")
	case f.Min != nil || f.Max != nil:
		return bound(f.Min) + ".." + bound(f.Max)
	case f.From != "" || f.To != "":
		return f.From + ".." + f.To
	default:
		return fmt.Sprintf("%q", f.Text)
	}
}

func bound(p *float64) string {
	if p == nil {
		return ""
	}
	return types.Number(*p).Text()
}
