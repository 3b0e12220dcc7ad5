package types

import (
	"errors"
	"fmt"
)

// Error categories. Structured errors below match these through errors.Is.
var (
	ErrConfiguration = errors.New("invalid table configuration")
	ErrFetch         = errors.New("remote request failed")
	ErrValidation    = errors.New("validation failed")
)

// Configuration errors.
var (
	ErrNoColumns       = errors.New("at least one column is required")
	ErrNoRenderer      = errors.New("renderer must not be nil")
	ErrEmptyField      = errors.New("column field must not be empty")
	ErrEmptyLabel      = errors.New("column label must not be empty")
	ErrDuplicateField  = errors.New("duplicate column field")
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrUnknownKind     = errors.New("unknown filter kind")
)

// Table operation errors.
var (
	ErrDestroyed          = errors.New("table has been destroyed")
	ErrRowOutOfRange      = errors.New("row index out of range")
	ErrUnknownField       = errors.New("unknown column field")
	ErrNotEditable        = errors.New("column is not editable")
	ErrNotSortable        = errors.New("column is not sortable")
	ErrNotFilterable      = errors.New("column is not filterable")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNoEditSession      = errors.New("no edit in progress")
	ErrNoSource           = errors.New("no data source configured")
	ErrUnknownBulkAction  = errors.New("unknown bulk action")
	ErrEmptySelection     = errors.New("no rows selected")
	ErrMissingRecordID    = errors.New("record has no id")
	ErrUnexpectedResponse = errors.New("unexpected response shape")
	ErrInvalidFilter      = errors.New("invalid filter value type")
)

// Record store errors.
var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record id already exists")
	ErrStoreClosed     = errors.New("record store is closed")
)

// ConfigError reports a construction-time problem. It aborts New before
// any state exists.
type ConfigError struct {
	Field string // offending column field, if any
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration: column %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

// FetchError reports a failed remote data, lookup or mutation request.
type FetchError struct {
	Op     string // load, create, update, delete, lookup
	URL    string
	Status int // HTTP status, 0 when the request never completed
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// Validation rule names carried by ValidationError.
const (
	RuleRequired  = "required"
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleEmail     = "email"
)

// ValidationError reports a user-entered value that breaks a field rule.
// It blocks only the commit that produced it.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
