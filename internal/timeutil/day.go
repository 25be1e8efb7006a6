package timeutil

import (
	"time"
)

// Quota accounting and all day math run in UTC regardless of server locale.

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the start of day (00:00:00) in UTC for the given time
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of day (23:59:59) in UTC for the given time
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// SameDay reports whether both times fall on the same UTC calendar day
func SameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}

// Common layouts for formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
