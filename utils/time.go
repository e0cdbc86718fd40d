// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used by every tabular file the store reads or writes
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04:05"
)

// timestampLayouts are tried in order when reading timestamps written by other tools
var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05.000000",
	DateLayout,
}

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowFormat returns the current UTC time formatted according to the given layout
func UTCNowFormat(layout string) string {
	return UTCNow().Format(layout)
}

// TruncateToSecond drops sub-second precision so a value survives a text round trip
func TruncateToSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// FormatTimestamp renders t as YYYY-MM-DD HH:MM:SS
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatTimestampPtr renders t or returns an empty string for nil
func FormatTimestampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTimestamp(*t)
}

// ParseTimestamp accepts the canonical layout plus the variants spreadsheet tools emit
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ParseDate parses a YYYY-MM-DD value, tolerating a trailing time component
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseClock parses HH:MM or HH:MM:SS
func ParseClock(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognized time of day %q", raw)
}
