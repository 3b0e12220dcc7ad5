package filter

import (
	"regexp"
	"strings"
	"time"
)

// datePatterns are the literal shapes accepted by type detection:
// YYYY-MM-DD, MM/DD/YYYY and MM-DD-YYYY.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}`),
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"01-02-2006",
	"1-2-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	"Mon Jan 2 2006",
	time.ANSIC,
}

// ParseDate parses s with the first matching layout. Times without a zone
// are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// looksLikeDate reports whether s matches a date literal pattern or parses
// as a date.
func looksLikeDate(s string) bool {
	for _, re := range datePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	_, ok := ParseDate(s)
	return ok
}
