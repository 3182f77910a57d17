package utils

import "time"

// FormatRFC3339 formats a timestamp the way actions and snapshots store it
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseRFC3339 parses a stored timestamp; both second and nanosecond
// precision are accepted
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// sortableLayout is RFC3339 with a fixed-width fraction
const sortableLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatSortable formats a timestamp so that lexical order matches time
// order, for use in sort keys
func FormatSortable(t time.Time) string {
	return t.UTC().Format(sortableLayout)
}
