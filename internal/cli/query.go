package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// queryFlags shape the filtered and sorted set.
type queryFlags struct {
	filters []string
	sort    string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&q.filters, "filter", nil, "filter as field=value; a,b matches any listed value, lo..hi is a number or date range")
	cmd.Flags().StringVarP(&q.sort, "sort", "s", "", "sort by field, field:desc for descending")
}

// apply sets the filters and sort on table.
func (q *queryFlags) apply(table types.Table) error {
	for _, arg := range q.filters {
		field, raw, err := parseFilter(arg)
		if err != nil {
			return err
		}
		if err := table.SetFilter(field, raw); err != nil {
			return usagef("filter %q: %v", field, err)
		}
	}
	if q.sort == "" {
		return nil
	}
	field, order, _ := strings.Cut(q.sort, ":")
	switch strings.ToLower(order) {
	case "", "asc":
		return sortBy(table, field, 1)
	case "desc":
		return sortBy(table, field, 2)
	default:
		return usagef("sort order %q: want asc or desc", order)
	}
}

// sortBy toggles the sort on field the given number of times, since each
// Sort call flips the direction.
func sortBy(table types.Table, field string, toggles int) error {
	for range toggles {
		if err := table.Sort(field); err != nil {
			return usagef("sort %q: %v", field, err)
		}
	}
	return nil
}

// parseFilter splits field=value and turns value into the raw form
// SetFilter accepts.
func parseFilter(arg string) (string, any, error) {
	field, value, ok := strings.Cut(arg, "=")
	if !ok || field == "" {
		return "", nil, usagef("invalid filter %q (expected field=value)", arg)
	}
	if lo, hi, isRange := strings.Cut(value, ".."); isRange {
		lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
		if numericOrBlank(lo) && numericOrBlank(hi) {
			return field, map[string]any{"min": lo, "max": hi}, nil
		}
		return field, map[string]any{"from": lo, "to": hi}, nil
	}
	if strings.Contains(value, ",") {
		var values []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return field, values, nil
	}
	return field, value, nil
}

func numericOrBlank(s string) bool {
	if s == "" {
		return true
	}
	_, ok := types.ParseNumber(s)
	return ok
}
