package utils

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 day format used in the store, the snapshot and the API.
const DateFormat = "2006-01-02"

// permissive read format, accepts 2020-1-2
const readDateFormat = "2006-1-2"

// -----------------------------------------------------------------------------

// NormalizeDate drops the time of day, keeping the calendar day of t in its own location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------

// ParseDate parses a calendar day. Store drivers may hand back a full timestamp
// ("2020-01-02T00:00:00Z"), which is accepted too.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(readDateFormat, s); err == nil {
		return NormalizeDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NormalizeDate(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q want format %q", s, DateFormat)
}

// -----------------------------------------------------------------------------

// FormatDate formats a calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}
