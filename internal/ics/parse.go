package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	applog "mincal/internal/log"
)

var ErrEmptyBody = errors.New("empty ICS body")

// ParsedEvent is a VEVENT with its times resolved. Recurrence is kept raw;
// ExpandInstances turns it into instances.
type ParsedEvent struct {
	Source Source

	UID string
	Seq int

	Summary     string
	Description string
	Location    string
	Status      string

	Start  time.Time
	End    time.Time
	AllDay bool
	// Zone is the event's own zone: its TZID, UTC for "Z" times, the system
	// zone for floating and all-day values.
	Zone *time.Location

	Declined bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time
	IsOverride bool
}

// ParseOptions carries what parsing needs from the host.
type ParseOptions struct {
	// Location is the system zone. Nil means time.Local.
	Location *time.Location
	// SelfEmails are matched case-insensitively against ATTENDEE addresses.
	SelfEmails []string
}

func (o ParseOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o ParseOptions) isSelf(attendee string) bool {
	addr := strings.TrimSpace(attendee)
	if len(addr) >= 7 && strings.EqualFold(addr[:7], "mailto:") {
		addr = addr[7:]
	}
	for _, e := range o.SelfEmails {
		if strings.EqualFold(strings.TrimSpace(e), addr) {
			return true
		}
	}
	return false
}

// ParseICS parses one feed body. A VEVENT that fails to parse is logged and
// skipped; the rest of the feed is still returned.
func ParseICS(src Source, body []byte, opts ParseOptions) ([]ParsedEvent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.ID, err)
	}

	var events []ParsedEvent
	for _, comp := range cal.Events() {
		ev, err := parseVEvent(src, comp, opts)
		if err != nil {
			applog.Warn("skipping vevent", "id", src.ID, "err", err.Error())
			continue
		}
		events = append(events, ev)
	}

	applog.Debug("ics parsed", "id", src.ID, "events", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent, opts ParseOptions) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}
	loc := opts.location()

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySequence); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil {
			out.Seq = n
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		out.Status = strings.ToUpper(strings.TrimSpace(p.Value))
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("%s: missing DTSTART", out.UID)
	}
	start, allDay, zone, err := parseDateProperty(dtStart.Value, dtStart.ICalParameters, loc)
	if err != nil {
		return out, fmt.Errorf("%s: DTSTART: %w", out.UID, err)
	}
	out.Start, out.AllDay, out.Zone = start, allDay, zone

	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) != nil:
		p := ve.GetProperty(ical.ComponentPropertyDtEnd)
		end, _, _, err := parseDateProperty(p.Value, p.ICalParameters, loc)
		if err != nil {
			return out, fmt.Errorf("%s: DTEND: %w", out.UID, err)
		}
		out.End = end
	case ve.GetProperty("DURATION") != nil:
		d, err := parseDuration(ve.GetProperty("DURATION").Value)
		if err != nil {
			return out, fmt.Errorf("%s: DURATION: %w", out.UID, err)
		}
		out.End = out.Start.Add(d)
	case allDay:
		out.End = out.Start.AddDate(0, 0, 1)
	default:
		out.End = out.Start
	}
	if out.End.Before(out.Start) {
		out.End = out.Start
	}

	out.Declined = out.Status == "CANCELLED"
	for _, a := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		if !opts.isSelf(a.Value) {
			continue
		}
		if ps := a.ICalParameters["PARTSTAT"]; len(ps) > 0 && strings.EqualFold(ps[0], "DECLINED") {
			out.Declined = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = strings.TrimSpace(p.Value)
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, _, _, err := parseDateProperty(part, p.ICalParameters, loc)
			if err != nil {
				applog.Debug("bad EXDATE", "uid", out.UID, "value", part)
				continue
			}
			out.ExDates = append(out.ExDates, t)
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		t, _, _, err := parseDateProperty(p.Value, p.ICalParameters, loc)
		if err != nil {
			return out, fmt.Errorf("%s: RECURRENCE-ID: %w", out.UID, err)
		}
		out.Recurrence = &t
		out.IsOverride = true
	}

	return out, nil
}

// parseDateProperty resolves a DATE or DATE-TIME value. DATE values are
// local midnight in loc. DATE-TIME values use their TZID when it loads,
// UTC when suffixed with Z, and loc otherwise.
func parseDateProperty(value string, params map[string][]string, loc *time.Location) (time.Time, bool, *time.Location, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false, nil, errors.New("empty value")
	}

	isDate := !strings.Contains(v, "T")
	if vs := params["VALUE"]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		isDate = true
	}
	if isDate {
		if len(v) > 8 {
			v = v[:8]
		}
		t, err := time.ParseInLocation("20060102", v, loc)
		return t, true, loc, err
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, time.UTC, err
	}

	zone := loc
	if tz := params["TZID"]; len(tz) > 0 && tz[0] != "" {
		if l, err := time.LoadLocation(strings.Trim(tz[0], `"`)); err == nil {
			zone = l
		} else {
			applog.Debug("unknown TZID, using system zone", "tzid", tz[0])
		}
	}
	t, err := time.ParseInLocation("20060102T150405", v, zone)
	return t, false, zone, err
}

// parseDuration reads an RFC 5545 dur-value such as "PT1H30M", "P1D" or
// "-P2W". Days and weeks are nominal 24 hour days.
func parseDuration(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("empty duration")
	}
	sign := time.Duration(1)
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("duration %q: missing P", s)
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	num := ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
			continue
		case r == 'T':
			if num != "" {
				return 0, fmt.Errorf("duration %q: dangling number", s)
			}
			inTime = true
			continue
		}
		if num == "" {
			return 0, fmt.Errorf("duration %q: unit without number", s)
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return 0, err
		}
		num = ""
		var unit time.Duration
		switch {
		case r == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			unit = 24 * time.Hour
		case r == 'H' && inTime:
			unit = time.Hour
		case r == 'M' && inTime:
			unit = time.Minute
		case r == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("duration %q: bad unit %q", s, r)
		}
		total += time.Duration(n) * unit
	}
	if num != "" {
		return 0, fmt.Errorf("duration %q: dangling number", s)
	}
	return sign * total, nil
}
