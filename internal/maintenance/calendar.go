package maintenance

import (
	"time"

	"maintplane/internal/store"
)

// Day truncates t to its calendar date, expressed as midnight UTC.
// The wall-clock date of t in its own location is kept.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the calendar date of t as observed in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc))
}

// AddInterval advances from by n units. Days and weeks are exact day counts.
// Months and years clamp the day of month to the length of the target month,
// so Jan 31 + 1 month is Feb 28 (or 29).
func AddInterval(from time.Time, n int, unit store.TimeUnit) time.Time {
	from = Day(from)
	switch unit {
	case store.UnitDays:
		return from.AddDate(0, 0, n)
	case store.UnitWeeks:
		return from.AddDate(0, 0, 7*n)
	case store.UnitMonths:
		return addMonths(from, n)
	case store.UnitYears:
		return addMonths(from, 12*n)
	}
	return from
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
