package widget

import (
	"fmt"
	"time"
)

const (
	WeeksInGrid = 6
	CellsInGrid = WeeksInGrid * DaysInWeek
)

// Date returns a calendar date as midnight UTC. Day arithmetic on these
// values never crosses a DST change.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf is the calendar date of t in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// StartOfDay is the first instant of date in loc.
func StartOfDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func addDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// NaturalMonthInitialDate anchors the grid on today's month. A first row
// that would start between the 2nd and the 15th moves up one week so the
// month's leading days stay visible.
func NaturalMonthInitialDate(today time.Time, first DayOfWeek) time.Time {
	firstOfMonth := Date(today.Year(), today.Month(), 1)
	diff := first.Ordinal() - DayOfWeekOf(firstOfMonth).ISO() + 1
	candidate := addDays(firstOfMonth, diff)
	if d := candidate.Day(); d >= 2 && d <= 15 {
		return addDays(candidate, -DaysInWeek)
	}
	return candidate
}

// FocusedOnCurrentWeekInitialDate keeps today in the second or third row.
// The week start is taken inside today's Monday-based week, so it can land
// after today.
func FocusedOnCurrentWeekInitialDate(today time.Time, first DayOfWeek) time.Time {
	today = DateOf(today)
	withFirst := addDays(today, first.Ordinal()-DayOfWeekOf(today).Ordinal())
	if withFirst.After(today) {
		return addDays(withFirst, -2*DaysInWeek)
	}
	return addDays(withFirst, -DaysInWeek)
}

// InitialDate is the date of the top-left cell. focusOnCurrentWeek puts
// today's week on the second row; otherwise the grid is anchored on the
// first of today's month.
func InitialDate(today time.Time, first DayOfWeek, focusOnCurrentWeek bool) time.Time {
	if focusOnCurrentWeek {
		return FocusedOnCurrentWeekInitialDate(today, first)
	}
	return NaturalMonthInitialDate(today, first)
}

// GridDates is the 42 consecutive dates of one render.
func GridDates(today time.Time, first DayOfWeek, focusOnCurrentWeek bool) [CellsInGrid]time.Time {
	var dates [CellsInGrid]time.Time
	start := InitialDate(today, first, focusOnCurrentWeek)
	for i := range dates {
		dates[i] = addDays(start, i)
	}
	return dates
}

// Day is one date of the grid with its predicates.
type Day struct {
	Date time.Time
}

func (d Day) DayOfWeek() DayOfWeek { return DayOfWeekOf(d.Date) }

// IsInMonth reports whether d falls in the same month and year as today.
func (d Day) IsInMonth(today time.Time) bool {
	return d.Date.Year() == today.Year() && d.Date.Month() == today.Month()
}

// IsToday compares calendar dates only.
func (d Day) IsToday(today time.Time) bool {
	y1, m1, d1 := d.Date.Date()
	y2, m2, d2 := today.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Day) IsSingleDigit() bool { return d.Date.Day() < 10 }

func (d Day) IsWeekend() bool { return d.DayOfWeek().IsWeekend() }

// Text is the zero-padded day of month.
func (d Day) Text() string { return fmt.Sprintf("%02d", d.Date.Day()) }

// ISOWeek is the ISO 8601 week number of the date.
func (d Day) ISOWeek() int {
	_, w := d.Date.ISOWeek()
	return w
}
