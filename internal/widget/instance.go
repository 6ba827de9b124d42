package widget

import (
	"context"
	"time"

	"mincal/internal/model"
)

// endEpsilon keeps an instance that ends exactly at local midnight out of
// the following day.
const endEpsilon = 5 * time.Millisecond

// QueryWindowDays bounds the instance query on each side of today. Both
// grid modes stay inside it.
const QueryWindowDays = 45

// InstanceSource supplies instances overlapping [from, to). Implementations
// never fail: errors and missing access yield an empty result.
type InstanceSource interface {
	Instances(ctx context.Context, from, to time.Time) []model.Instance
}

// StaticSource serves a fixed set, filtered by window.
type StaticSource []model.Instance

// Instances returns the instances overlapping [from, to).
func (s StaticSource) Instances(_ context.Context, from, to time.Time) []model.Instance {
	var out []model.Instance
	for _, in := range s {
		if in.Start.Before(to) && in.End.After(from) {
			out = append(out, in)
		}
	}
	return out
}

// IsInDay reports whether the instance is visible on day, comparing local
// dates in the instance's own zone.
func IsInDay(in model.Instance, day time.Time) bool {
	loc := in.Location()
	start := DateOf(in.Start.In(loc))
	end := DateOf(in.End.Add(-endEpsilon).In(loc))
	d := DateOf(day)
	return !d.Before(start) && !d.After(end)
}

// NumberOfInstances counts instances visible on day. Declined ones count
// only when includeDeclined is set.
func NumberOfInstances(day time.Time, instances []model.Instance, includeDeclined bool) int {
	n := 0
	for _, in := range instances {
		if !IsInDay(in, day) {
			continue
		}
		if includeDeclined || !in.Declined {
			n++
		}
	}
	return n
}

// QueryWindow is [today-45d, today+45d) at start of day in loc.
func QueryWindow(today time.Time, loc *time.Location) (from, to time.Time) {
	start := StartOfDay(today, loc)
	return start.AddDate(0, 0, -QueryWindowDays), start.AddDate(0, 0, QueryWindowDays)
}
