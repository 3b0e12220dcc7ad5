package types

import "log/slog"

// Defaults applied by Config.WithDefaults.
const (
	DefaultPageSize       = 10
	DefaultIDField        = "id"
	DefaultExportFilename = "export.csv"
)

// Config holds everything needed to construct a table.
type Config struct {
	Columns  []Column
	Data     []Record
	PageSize int
	// IDField names the record field sent to Source.Update and Delete.
	IDField string
	// AutoID assigns a UUID v7 to added rows that lack IDField when no
	// Source is configured.
	AutoID      bool
	Permissions PermissionConfig
	CurrentUser User
	Source      Source
	Lookups     LookupFetcher
	Downloader  Downloader
	// ExportFilename is handed to the Downloader by ExportCSV.
	ExportFilename string
	BulkActions    map[string]BulkHandler
	Logger         *slog.Logger
}

// WithDefaults returns c with zero-valued settings replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.IDField == "" {
		c.IDField = DefaultIDField
	}
	if c.ExportFilename == "" {
		c.ExportFilename = DefaultExportFilename
	}
	if c.Permissions.OwnerField == "" {
		c.Permissions.OwnerField = DefaultOwnerField
	}
	return c
}

// Validate checks that the Config is well-formed. Every failure is a
// *ConfigError wrapping one of the configuration sentinels.
func (c Config) Validate() error {
	if len(c.Columns) == 0 {
		return &ConfigError{Err: ErrNoColumns}
	}
	if c.PageSize < 0 {
		return &ConfigError{Err: ErrInvalidPageSize}
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if col.Field == "" {
			return &ConfigError{Err: ErrEmptyField}
		}
		if col.Label == "" {
			return &ConfigError{Field: col.Field, Err: ErrEmptyLabel}
		}
		if seen[col.Field] {
			return &ConfigError{Field: col.Field, Err: ErrDuplicateField}
		}
		if col.FilterType != "" && !col.FilterType.Valid() {
			return &ConfigError{Field: col.Field, Err: ErrUnknownKind}
		}
		seen[col.Field] = true
	}
	return nil
}
