package timex

import (
	"cmp"
	"time"
)

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CompareDate compares the calendar dates of a and b, ignoring time of day.
// Each value is read in its own location.
func CompareDate(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return cmp.Compare(ay, by)
	case am != bm:
		return cmp.Compare(am, bm)
	default:
		return cmp.Compare(ad, bd)
	}
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return CompareDate(a, b) == 0
}

// WeekBounds returns the Sunday-start week containing t as the half-open
// range [start, end) of calendar dates.
func WeekBounds(t time.Time) (start, end time.Time) {
	day := StartOfDay(t)
	start = day.AddDate(0, 0, -int(day.Weekday()))
	end = start.AddDate(0, 0, 7)
	return start, end
}

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}
