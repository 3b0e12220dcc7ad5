package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "no columns returns ErrNoColumns",
			config:  Config{},
			wantErr: ErrNoColumns,
		},
		{
			name:    "empty field returns ErrEmptyField",
			config:  Config{Columns: []Column{{Label: "Name"}}},
			wantErr: ErrEmptyField,
		},
		{
			name:    "empty label returns ErrEmptyLabel",
			config:  Config{Columns: []Column{{Field: "name"}}},
			wantErr: ErrEmptyLabel,
		},
		{
			name: "duplicate field returns ErrDuplicateField",
			config: Config{Columns: []Column{
				{Field: "name", Label: "Name"},
				{Field: "name", Label: "Other"},
			}},
			wantErr: ErrDuplicateField,
		},
		{
			name:    "negative page size returns ErrInvalidPageSize",
			config:  Config{Columns: []Column{{Field: "a", Label: "A"}}, PageSize: -1},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "unknown filter kind returns ErrUnknownKind",
			config:  Config{Columns: []Column{{Field: "a", Label: "A", FilterType: "fuzzy"}}},
			wantErr: ErrUnknownKind,
		},
		{
			name: "valid config",
			config: Config{Columns: []Column{
				{Field: "id", Label: "ID"},
				{Field: "name", Label: "Name", FilterType: FilterText},
			}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected error to match ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	c := Config{}.WithDefaults()
	if c.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", c.PageSize, DefaultPageSize)
	}
	if c.IDField != DefaultIDField {
		t.Errorf("IDField = %q, want %q", c.IDField, DefaultIDField)
	}
	if c.Permissions.OwnerField != DefaultOwnerField {
		t.Errorf("OwnerField = %q, want %q", c.Permissions.OwnerField, DefaultOwnerField)
	}
}
