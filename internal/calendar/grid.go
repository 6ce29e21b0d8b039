// Package calendar builds the Sunday-first month grid used by the schedule view.
package calendar

import (
	"time"
)

// Cells is the fixed size of a month grid: six weeks of seven days
const Cells = 42

// Day is one cell of the month grid
type Day struct {
	Date           time.Time
	IsCurrentMonth bool
}

// Grid is a month laid out as 42 consecutive days starting on a Sunday
type Grid struct {
	Year  int
	Month time.Month
	Days  []Day
}

// MonthGrid lays out the given month. Leading cells come from the previous
// month and trailing cells from the next one.
func MonthGrid(year int, month time.Month, loc *time.Location) Grid {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]Day, Cells)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = Day{
			Date:           d,
			IsCurrentMonth: d.Month() == first.Month() && d.Year() == first.Year(),
		}
	}
	return Grid{Year: first.Year(), Month: first.Month(), Days: days}
}

// Range returns the inclusive time span covered by the grid
func (g Grid) Range() (time.Time, time.Time) {
	return g.Days[0].Date, EndOfDay(g.Days[len(g.Days)-1].Date)
}

// WeekBounds returns Sunday 00:00 through Saturday end of day for the week containing t
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := StartOfDay(t)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, EndOfDay(start.AddDate(0, 0, 6))
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc != nil {
		a, b = a.In(loc), b.In(loc)
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
