package format

import (
	"strings"
	"time"
)

// DateUnavailable is returned by FormatDate when a value cannot be parsed.
const DateUnavailable = "Date unavailable"

// invalidDate is the artifact browsers produce for unparseable dates. Some
// records carry it verbatim.
const invalidDate = "Invalid Date"

// LongDate is the layout FormatDate renders.
const LongDate = "January 2, 2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-1-2T15:04:05Z07:00",
	"2006-1-2",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate parses the ISO and locale date strings the API is known to emit.
// Sentinels and blank values report false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || IsDateSentinel(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders s as a long-form date, or DateUnavailable.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return DateUnavailable
	}
	return t.Format(LongDate)
}

// FormatTime renders t as a long-form date, or DateUnavailable for the zero
// time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return DateUnavailable
	}
	return t.Format(LongDate)
}

// IsDateSentinel reports whether s is a marker for a missing date rather than
// a date. Sentinels must never be bucketed.
func IsDateSentinel(s string) bool {
	s = strings.TrimSpace(s)
	return s == DateUnavailable || strings.EqualFold(s, invalidDate)
}
