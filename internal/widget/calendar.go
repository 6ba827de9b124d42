package widget

import (
	"fmt"
	"time"
)

// Calendar selects how the header year is written.
type Calendar int

const (
	CalendarGregorian Calendar = iota
	CalendarHolocene
)

var calendarNames = []string{"GREGORIAN", "HOLOCENE"}

// ParseCalendar accepts GREGORIAN or HOLOCENE in any case.
func ParseCalendar(s string) (Calendar, error) {
	i, err := parseName("calendar", s, calendarNames)
	return Calendar(i), err
}

func (c Calendar) String() string { return nameOf(int(c), calendarNames) }

func (c Calendar) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Calendar) UnmarshalText(b []byte) error {
	v, err := ParseCalendar(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Year formats the year of t in loc.
//
// Holocene prepends a literal "1" to the four digit year, which is only
// year+10000 for years 0..9999.
func (c Calendar) Year(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	gregorian := fmt.Sprintf("%04d", t.Year())
	switch c {
	case CalendarHolocene:
		return "1" + gregorian
	default:
		return gregorian
	}
}
