package util

import "time"

// DayDate is the wire format for calendar dates throughout coinlens.
const DayDate = "2006-01-02"

// StartOfDay returns midnight at the start of t's calendar day, preserving
// t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable millisecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// ParseDay parses a YYYY-MM-DD date string. The zero time and false are
// returned for empty or malformed input.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DayDate, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
