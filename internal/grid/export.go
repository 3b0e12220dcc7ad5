package grid

import "github.com/mesh-intelligence/datagrid/pkg/types"

// ExportCSV encodes the filtered set across all pages (ExportFiltered) or
// the whole base collection ignoring filters (ExportAll). Rows the user
// may not view are left out of both. It notifies export observers and
// passes the bytes to the configured Downloader. The CSV text is returned
// even when the download fails.
func (t *Table) ExportCSV(mode types.ExportMode) (string, error) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return "", types.ErrDestroyed
	}
	if !t.gate.Allowed(types.ActionExport, t.user, nil) {
		t.mu.Unlock()
		return "", types.ErrPermissionDenied
	}
	var records []types.Record
	if mode == types.ExportAll {
		ownOnly := t.gate.OwnOnly(types.ActionView)
		records = make([]types.Record, 0, len(t.records))
		for _, r := range t.records {
			if ownOnly && !t.gate.Allowed(types.ActionView, t.user, r) {
				continue
			}
			records = append(records, r.Clone())
		}
	} else {
		t.recomputeLocked()
		records = make([]types.Record, 0, len(t.visible))
		for _, idx := range t.visible {
			records = append(records, t.records[idx].Clone())
		}
	}
	t.mu.Unlock()
	return t.export(records)
}
