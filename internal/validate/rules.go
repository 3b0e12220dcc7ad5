// Package validate checks user-entered values against a column's declared
// field rules.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Check validates v for col. It returns nil or a *types.ValidationError for
// the first rule that fails. Length and format rules are skipped for empty
// values so optional fields may stay blank.
func Check(col types.Column, v types.Value) error {
	rules := col.Rules
	if rules == nil && col.Type != types.InputEmail {
		return nil
	}
	if rules == nil {
		rules = &types.FieldRules{}
	}
	text := strings.TrimSpace(v.Text())
	if text == "" {
		if rules.Required {
			return &types.ValidationError{Field: col.Field, Rule: types.RuleRequired, Message: fmt.Sprintf("%s is required", col.Label)}
		}
		return nil
	}
	n := utf8.RuneCountInString(text)
	if rules.MinLength > 0 && n < rules.MinLength {
		return &types.ValidationError{
			Field:   col.Field,
			Rule:    types.RuleMinLength,
			Message: fmt.Sprintf("%s must be at least %d characters", col.Label, rules.MinLength),
		}
	}
	if rules.MaxLength > 0 && n > rules.MaxLength {
		return &types.ValidationError{
			Field:   col.Field,
			Rule:    types.RuleMaxLength,
			Message: fmt.Sprintf("%s must be at most %d characters", col.Label, rules.MaxLength),
		}
	}
	if (rules.Email || col.Type == types.InputEmail) && !emailPattern.MatchString(text) {
		return &types.ValidationError{Field: col.Field, Rule: types.RuleEmail, Message: fmt.Sprintf("%s must be a valid email address", col.Label)}
	}
	return nil
}

// Record validates every column of rec that declares rules and returns all
// failures keyed by field.
func Record(columns []types.Column, rec types.Record) map[string]error {
	var errs map[string]error
	for _, col := range columns {
		if err := Check(col, rec[col.Field]); err != nil {
			if errs == nil {
				errs = make(map[string]error)
			}
			errs[col.Field] = err
		}
	}
	return errs
}
