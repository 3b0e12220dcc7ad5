// Package csvcodec serializes a record/column projection to CSV text.
//
// The quoting rules differ from encoding/csv: every non-numeric value is
// quoted even without special characters, and a null or missing cell is
// written as a literal empty quoted field ("").
package csvcodec

import (
	"strings"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

const emptyField = `""`

// Encode renders records as CSV using the exportable columns. The header
// row holds the column labels; rows are joined by "\n" with no trailing
// newline.
func Encode(records []types.Record, columns []types.Column) string {
	cols := Exportable(columns)
	var sb strings.Builder

	for i, col := range cols {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(headerField(col.Label))
	}
	for _, r := range records {
		sb.WriteByte('\n')
		for i, col := range cols {
			if i > 0 {
				sb.WriteByte(',')
			}
			v, ok := r[col.Field]
			sb.WriteString(EscapeField(v, ok))
		}
	}
	return sb.String()
}

// Exportable returns the columns that take part in export.
func Exportable(columns []types.Column) []types.Column {
	out := make([]types.Column, 0, len(columns))
	for _, c := range columns {
		if c.IsExportable() {
			out = append(out, c)
		}
	}
	return out
}

// EscapeField renders one cell. present is false for a missing field.
func EscapeField(v types.Value, present bool) string {
	if !present || v.IsNull() {
		return emptyField
	}
	text := v.Text()
	if _, ok := types.ParseNumber(text); ok {
		return text
	}
	return quote(text)
}

// headerField quotes a label only when it would otherwise break the row.
func headerField(label string) string {
	if strings.ContainsAny(label, ",\"\n\r") {
		return quote(label)
	}
	return label
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
