package widget

import "time"

// DayOfWeek is ISO ordered: Monday is 0, Sunday is 6.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of grid columns.
const DaysInWeek = 7

var dayOfWeekNames = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// ParseDayOfWeek accepts MONDAY..SUNDAY in any case.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	i, err := parseName("day of week", s, dayOfWeekNames)
	return DayOfWeek(i), err
}

// DayOfWeekOf is the weekday of t in its own zone.
func DayOfWeekOf(t time.Time) DayOfWeek {
	return DayOfWeek((int(t.Weekday()) + 6) % DaysInWeek)
}

func (d DayOfWeek) String() string { return nameOf(int(d), dayOfWeekNames) }

func (d DayOfWeek) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DayOfWeek) UnmarshalText(b []byte) error {
	v, err := ParseDayOfWeek(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Ordinal is 0-based from Monday.
func (d DayOfWeek) Ordinal() int { return int(d) }

// ISO is 1-based from Monday.
func (d DayOfWeek) ISO() int { return int(d) + 1 }

// Weekday converts to the time package numbering, where Sunday is 0.
func (d DayOfWeek) Weekday() time.Weekday {
	return time.Weekday((int(d) + 1) % DaysInWeek)
}

// Plus moves n days forward, wrapping around the week. Negative n moves
// backwards.
func (d DayOfWeek) Plus(n int) DayOfWeek {
	return DayOfWeek(((int(d)+n)%DaysInWeek + DaysInWeek) % DaysInWeek)
}

// IsWeekend is true for Saturday and Sunday.
func (d DayOfWeek) IsWeekend() bool { return d == Saturday || d == Sunday }

// RotatedDaysOfWeek lists the week starting at first.
func RotatedDaysOfWeek(first DayOfWeek) [DaysInWeek]DayOfWeek {
	var out [DaysInWeek]DayOfWeek
	for i := range out {
		out[i] = first.Plus(i)
	}
	return out
}
