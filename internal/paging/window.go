// Package paging derives page counts, slice bounds and display ranges for
// a filtered record count.
package paging

import "github.com/mesh-intelligence/datagrid/pkg/types"

// Window is the paginated view over count filtered rows.
type Window struct {
	Count      int // filtered rows
	Size       int // rows per page, always > 0
	Page       int // current page, clamped to [1, TotalPages]
	TotalPages int
	Start      int // slice start, inclusive
	End        int // slice end, exclusive
}

// TotalPages returns ceil(count/size) with a floor of 1. An empty set still
// has one (empty) page.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ShowControls reports whether pagination controls are needed. Exactly one
// full page does not need them.
func ShowControls(count, size int) bool {
	return count > size
}

// Clamp limits page to [1, total].
func Clamp(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Bounds returns the half-open slice [start, end) of page, clamped to
// [0, count].
func Bounds(page, size, count int) (start, end int) {
	start = (page - 1) * size
	end = page * size
	start = min(max(start, 0), count)
	end = min(max(end, 0), count)
	return start, end
}

// Compute builds the Window for count rows of size per page at page,
// clamping page into range. A non-positive size is treated as one page
// holding everything.
func Compute(count, size, page int) Window {
	if size <= 0 {
		size = max(count, 1)
	}
	total := TotalPages(count, size)
	page = Clamp(page, total)
	start, end := Bounds(page, size, count)
	return Window{
		Count:      count,
		Size:       size,
		Page:       page,
		TotalPages: total,
		Start:      start,
		End:        end,
	}
}

// CanGoTo reports whether n is a valid target page.
func (w Window) CanGoTo(n int) bool {
	return n >= 1 && n <= w.TotalPages
}

// ShowControls reports whether w spans more than one page.
func (w Window) ShowControls() bool { return ShowControls(w.Count, w.Size) }

// Info converts w to the public PageInfo shape, with 1-based display
// positions ("Showing First–Last of Count").
func (w Window) Info() types.PageInfo {
	info := types.PageInfo{
		Current:      w.Page,
		Total:        w.TotalPages,
		Size:         w.Size,
		Count:        w.Count,
		ShowControls: w.ShowControls(),
	}
	if w.End > w.Start {
		info.First = w.Start + 1
		info.Last = w.End
	}
	return info
}
