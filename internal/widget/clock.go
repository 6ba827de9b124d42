package widget

import "time"

// Clock supplies the current instant and the system zone. Render passes
// read it once so a single pass never straddles midnight.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// SystemClock reads the wall clock. A nil Loc means time.Local.
type SystemClock struct {
	Loc *time.Location
}

func (c SystemClock) Now() time.Time { return time.Now() }

// Location is Loc, or time.Local when unset.
func (c SystemClock) Location() *time.Location {
	if c.Loc == nil {
		return time.Local
	}
	return c.Loc
}

// FixedClock always returns At.
type FixedClock struct {
	At  time.Time
	Loc *time.Location
}

func (c FixedClock) Now() time.Time { return c.At }

// Location is Loc, or UTC when unset.
func (c FixedClock) Location() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}

// Today is the current date in the clock's zone.
func Today(c Clock) time.Time {
	return DateOf(c.Now().In(c.Location()))
}
