// Package dateutils provides the date handling of statement files: strict
// YYYYMMDD parsing, ISO formatting and date-stamped output names.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts used by statement exports and the output file.
const (
	DateLayoutCompact = "20060102"
	DateLayoutISO     = "2006-01-02"
)

// ParseCompactDate parses an 8-digit YYYYMMDD date. Surrounding whitespace is
// ignored; anything else that is not exactly eight digits of a real calendar
// date is an error.
func ParseCompactDate(dateStr string) (time.Time, error) {
	s := CleanDateString(dateStr)
	if len(s) != len(DateLayoutCompact) {
		return time.Time{}, fmt.Errorf("date %q is not in YYYYMMDD form", dateStr)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("date %q is not in YYYYMMDD form", dateStr)
		}
	}
	t, err := time.Parse(DateLayoutCompact, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not a calendar date: %w", dateStr, err)
	}
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("date %q is out of range", dateStr)
	}
	return t, nil
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CompactToISO converts "20230114" into "2023-01-14".
func CompactToISO(dateStr string) (string, error) {
	t, err := ParseCompactDate(dateStr)
	if err != nil {
		return "", err
	}
	return ToISODate(t), nil
}

// CleanDateString trims the string and collapses inner whitespace runs.
func CleanDateString(dateStr string) string {
	return strings.Join(strings.Fields(dateStr), " ")
}

// DefaultOutputName returns "<prefix>-YYYY-MM-DD" for the given day.
func DefaultOutputName(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "statement"
	}
	return fmt.Sprintf("%s-%s", prefix, ToISODate(now))
}
