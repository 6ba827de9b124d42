package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applog "mincal/internal/log"
)

// midnightSpec rolls the grid over to the new day.
const midnightSpec = "0 0 * * *"

// Scheduler runs redraws on a cron spec plus a daily midnight entry, in the
// system zone.
type Scheduler struct {
	cron     *cron.Cron
	redrawer *Redrawer
	spec     string
}

// NewScheduler validates spec (standard five-field cron or a descriptor
// such as "@every 10m") and registers both entries.
func NewScheduler(redrawer *Redrawer, spec string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", spec, err)
	}

	c := cron.New(cron.WithLocation(loc))
	s := &Scheduler{cron: c, redrawer: redrawer, spec: spec}

	if _, err := c.AddFunc(spec, s.job(TriggerSchedule)); err != nil {
		return nil, err
	}
	if spec != midnightSpec {
		if _, err := c.AddFunc(midnightSpec, s.job(TriggerMidnight)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) job(trigger string) func() {
	return func() {
		s.redrawer.Redraw(context.Background(), trigger)
	}
}

// Start begins running entries in the background.
func (s *Scheduler) Start() {
	applog.Info("scheduler started", "spec", s.spec, "next", s.Next().Format(time.RFC3339))
	s.cron.Start()
}

// Stop halts the scheduler and waits, bounded by ctx, for a running pass.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		applog.Warn("scheduler stop timed out")
	}
}

// Next is the earliest upcoming run across all entries.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	now := time.Now()
	for _, e := range s.cron.Entries() {
		t := e.Next
		if t.IsZero() {
			t = e.Schedule.Next(now)
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}

// Entries is the number of registered cron entries.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
