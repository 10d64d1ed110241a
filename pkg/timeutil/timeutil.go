// Package timeutil provides calendar-day helpers for the gamification engine.
// Login streaks are counted in whole UTC days: two logins belong to the same
// streak day when they fall on the same UTC calendar date.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// StartOfDay truncates a time to midnight UTC of the same calendar date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the start of the current UTC day.
func Today() time.Time {
	return StartOfDay(time.Now())
}

// IsSameDay reports whether two times fall on the same UTC calendar date.
func IsSameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}

// DaysBetween returns the number of whole calendar days from `from` to `to`.
// The result is negative when `to` precedes `from`.
func DaysBetween(from, to time.Time) int {
	f := StartOfDay(from)
	t := StartOfDay(to)
	return int(t.Sub(f).Hours() / 24)
}

// IsNextDay reports whether `to` is exactly one calendar day after `from`.
func IsNextDay(from, to time.Time) bool {
	return DaysBetween(from, to) == 1
}

// DaysAgo returns the start of the UTC day n days before today.
func DaysAgo(n int) time.Time {
	return Today().AddDate(0, 0, -n)
}
