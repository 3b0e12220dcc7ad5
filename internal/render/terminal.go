package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5FAFFF"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#8A8A8A"}
	colorError  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5F5F"}
	colorSelect = lipgloss.AdaptiveColor{Light: "#E0ECFF", Dark: "#303A4A"}

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Background(colorSelect)
	editingStyle  = cellStyle.Underline(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
)

// Terminal draws views as bordered lipgloss tables.
type Terminal struct {
	Out    io.Writer
	ErrOut io.Writer
	// Color enables foreground and background styling. Borders are drawn
	// either way.
	Color bool
}

func (t *Terminal) Render(v types.View) {
	fmt.Fprintln(t.Out, t.table(v).Render())
	if s := filterSummary(v); s != "" {
		fmt.Fprintln(t.Out, t.style(mutedStyle).Render(s))
	}
	fmt.Fprintln(t.Out, t.style(mutedStyle).Render(footer(v)))
	if v.Editing != nil && v.Editing.Error != nil {
		fmt.Fprintln(t.Out, t.style(errorStyle).Render("✗ "+v.Editing.Error.Error()))
	}
	if v.LoadError != nil {
		fmt.Fprintln(t.Out, t.style(errorStyle).Render("✗ load failed: "+v.LoadError.Error()))
	}
}

func (t *Terminal) ShowError(err error) {
	fmt.Fprintln(t.ErrOut, t.style(errorStyle).Render("✗ "+err.Error()))
}

func (t *Terminal) table(v types.View) *table.Table {
	rows := cells(v)
	editCol := -1
	if v.Editing != nil {
		for i, c := range v.Columns {
			if c.Field == v.Editing.Field {
				editCol = i
			}
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.style(mutedStyle)).
		Headers(headers(v)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.style(headerStyle)
			}
			if row < 0 || row >= len(v.Rows) {
				return cellStyle
			}
			r := v.Rows[row]
			switch {
			case v.Editing != nil && r.Index == v.Editing.Row && col == editCol:
				return t.style(editingStyle)
			case r.Selected:
				return t.style(selectedStyle)
			default:
				return cellStyle
			}
		})
}

// style strips colors when they are disabled, keeping layout.
func (t *Terminal) style(s lipgloss.Style) lipgloss.Style {
	if t.Color {
		return s
	}
	return s.UnsetForeground().UnsetBackground()
}
