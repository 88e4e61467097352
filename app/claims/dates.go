package claims

import (
	"strings"
	"time"
)

// Layouts that carry only a civil date. They are read in the reference zone.
var dateLayouts = []string{
	time.DateOnly,
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// Layouts that carry a time of day. Values without an offset are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimeOrAbsent parses a persisted instant. Anything unreadable is
// reported as absent rather than as an error.
func ParseTimeOrAbsent(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseDateOrAbsent parses a persisted value and pins it to its civil date in
// loc at 00:00.
func ParseDateOrAbsent(raw string, loc *time.Location) (time.Time, bool) {
	t, ok := ParseTimeOrAbsent(raw, loc)
	if !ok {
		return time.Time{}, false
	}
	return DateOnly(t, loc), true
}

// DateOnly discards the time of day of t as seen from loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Today returns the reference civil date for now.
func Today(now time.Time, loc *time.Location) time.Time {
	return DateOnly(now, loc)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func optionalTime(t time.Time, ok bool) *time.Time {
	if !ok {
		return nil
	}
	return &t
}

// OptionalDate is ParseDateOrAbsent returning nil for absent values.
func OptionalDate(raw string, loc *time.Location) *time.Time {
	return optionalTime(ParseDateOrAbsent(raw, loc))
}

// OptionalTime is ParseTimeOrAbsent returning nil for absent values.
func OptionalTime(raw string, loc *time.Location) *time.Time {
	return optionalTime(ParseTimeOrAbsent(raw, loc))
}
