package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Plain writes aligned text tables without styling, for pipes and logs.
type Plain struct {
	Out    io.Writer
	ErrOut io.Writer
}

func (p *Plain) Render(v types.View) {
	if len(v.Columns) == 0 {
		fmt.Fprintln(p.Out, "(no columns)")
		return
	}
	head := headers(v)
	rows := cells(v)

	widths := make([]int, len(head))
	for i, h := range head {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if n := utf8.RuneCountInString(val); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeRow(&b, head, widths, false)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("─", w))
	}
	b.WriteByte('\n')
	for i, row := range rows {
		writeRow(&b, row, widths, v.Rows[i].Selected)
	}
	b.WriteByte('\n')
	if s := filterSummary(v); s != "" {
		b.WriteString(s + "\n")
	}
	b.WriteString(footer(v) + "\n")
	if v.Editing != nil && v.Editing.Error != nil {
		b.WriteString("! " + v.Editing.Error.Error() + "\n")
	}
	if v.LoadError != nil {
		b.WriteString("! load failed: " + v.LoadError.Error() + "\n")
	}
	io.WriteString(p.Out, b.String())
}

func (p *Plain) ShowError(err error) {
	fmt.Fprintf(p.ErrOut, "error: %v\n", err)
}

func writeRow(b *strings.Builder, row []string, widths []int, selected bool) {
	if selected {
		b.WriteString("* ")
	}
	for i, val := range row {
		if i >= len(widths) {
			break
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(pad(val, widths[i]))
	}
	b.WriteByte('\n')
}

// pad right-fills s with spaces to width runes. Longer values are kept
// whole.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
