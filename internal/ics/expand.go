package ics

import (
	"errors"
	"hash/fnv"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	applog "mincal/internal/log"
	"mincal/internal/model"
)

const defaultMaxInstancesPerEvent = 5000

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// RangeStart / RangeEnd is the window instances must overlap.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxInstancesPerEvent caps a single RRULE. Zero means 5000.
	MaxInstancesPerEvent int
}

type ExpandResult struct {
	Events []model.Event
	// Truncated lists UIDs that hit MaxInstancesPerEvent.
	Truncated []string
}

// Instances strips the descriptive fields.
func (r ExpandResult) Instances() []model.Instance {
	out := make([]model.Instance, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Instance
	}
	return out
}

// EventID derives the numeric event id from a UID.
func EventID(uid string) int {
	h := fnv.New32a()
	h.Write([]byte(uid))
	return int(h.Sum32())
}

// ExpandInstances turns parsed events into concrete instances overlapping
// the configured window. EXDATEs remove instances, RECURRENCE-ID overrides
// replace them, and identical instances are reported once. The result is
// ordered by start.
func ExpandInstances(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: range end before range start")
	}
	if cfg.MaxInstancesPerEvent <= 0 {
		cfg.MaxInstancesPerEvent = defaultMaxInstancesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	var uids []string
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, ok := baseByUID[ev.UID]; !ok {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	seen := make(map[string]bool)
	add := func(e model.Event) {
		k := e.Instance.Key()
		if seen[k] {
			return
		}
		seen[k] = true
		result.Events = append(result.Events, e)
	}

	for _, uid := range uids {
		overrides := overridesByUID[uid]
		used := make([]bool, len(overrides))
		truncated := false

		for _, ev := range baseByUID[uid] {
			var out []model.Event
			var hitCap bool
			if ev.RawRRule == "" {
				out = expandSingle(ev, overrides, used, cfg)
			} else {
				out, hitCap = expandRecurring(ev, overrides, used, cfg)
			}
			truncated = truncated || hitCap
			for _, e := range out {
				add(e)
			}
		}

		// Overrides whose original slot lies outside the window can still
		// move into it.
		for i, ov := range overrides {
			if !used[i] && overlaps(ov.Start, ov.End, cfg.RangeStart, cfg.RangeEnd) && !isExcluded(baseByUID[uid], *ov.Recurrence) {
				add(makeEvent(ov, ov.Start, ov.End))
			}
		}

		if truncated {
			result.Truncated = append(result.Truncated, uid)
			applog.Warn("recurrence truncated", "uid", uid, "cap", cfg.MaxInstancesPerEvent)
		}
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		a, b := result.Events[i].Instance, result.Events[j].Instance
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.EventID < b.EventID
	})
	return result, nil
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, used []bool, cfg ExpandConfig) []model.Event {
	start, end, src := ev.Start, ev.End, ev
	if i, ok := findOverride(overrides, ev.Start); ok {
		used[i] = true
		src = overrides[i]
		start, end = src.Start, src.End
	}
	if !overlaps(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []model.Event{makeEvent(src, start, end)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, used []bool, cfg ExpandConfig) ([]model.Event, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		applog.Warn("bad RRULE", "uid", ev.UID, "rrule", ev.RawRRule, "err", err.Error())
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// An instance starting before the window can still overlap it.
	dur := ev.End.Sub(ev.Start)
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())

	starts := set.Between(from, to, true)
	hitCap := false
	if len(starts) > cfg.MaxInstancesPerEvent {
		starts = starts[:cfg.MaxInstancesPerEvent]
		hitCap = true
	}

	var out []model.Event
	for _, s := range starts {
		var end time.Time
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, ev.Start.Location())
			end = s.AddDate(0, 0, dayCount(ev))
		} else {
			end = s.Add(dur)
		}

		start, src := s, ev
		if i, ok := findOverride(overrides, s); ok {
			used[i] = true
			src = overrides[i]
			start, end = src.Start, src.End
		}
		if !overlaps(start, end, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, makeEvent(src, start, end))
	}
	return out, hitCap
}

// dayCount is the length of an all-day event in calendar days, at least one.
func dayCount(ev ParsedEvent) int {
	n := 0
	for d := ev.Start; d.Before(ev.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	if n == 0 {
		return 1
	}
	return n
}

func findOverride(overrides []ParsedEvent, start time.Time) (int, bool) {
	for i, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return i, true
		}
	}
	return 0, false
}

func isExcluded(bases []ParsedEvent, t time.Time) bool {
	for _, b := range bases {
		for _, ex := range b.ExDates {
			if ex.Equal(t) {
				return true
			}
		}
	}
	return false
}

func makeEvent(ev ParsedEvent, start, end time.Time) model.Event {
	zone := ev.Zone
	if zone == nil {
		zone = start.Location()
	}
	return model.Event{
		SourceID: ev.Source.ID,
		UID:      ev.UID,
		Summary:  ev.Summary,
		AllDay:   ev.AllDay,
		Instance: model.Instance{
			EventID:  EventID(ev.UID),
			Start:    start,
			End:      end,
			Zone:     zone,
			Declined: ev.Declined,
		},
	}
}

// overlaps treats a zero-length instance at the window start as inside.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Equal(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
