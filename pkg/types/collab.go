package types

import "context"

// Renderer is the external view layer. Render is called with a complete
// View after every visible state change; ShowError surfaces a recoverable
// failure (load, lookup, rolled-back commit) to the user.
type Renderer interface {
	Render(view View)
	ShowError(err error)
}

// Source loads and persists records. Implementations include the HTTP
// client and the SQLite store.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, id string, rec Record) error
	Delete(ctx context.Context, id string) error
}

// LookupFetcher retrieves lookup datasets.
type LookupFetcher interface {
	FetchURL(ctx context.Context, url string) ([]Record, error)
	FetchEndpoint(ctx context.Context, name string) ([]Record, error)
}

// Downloader delivers exported bytes under a filename.
type Downloader interface {
	Download(filename string, data []byte) error
}

// BulkHandler runs a custom bulk action over the selected records.
type BulkHandler func(ctx context.Context, indices []int, records []Record) error
