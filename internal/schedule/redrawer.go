package schedule

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	applog "mincal/internal/log"
	"mincal/internal/metrics"
	"mincal/internal/model"
	"mincal/internal/widget"
)

// Redraw triggers.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerMidnight = "midnight"
	TriggerSettings = "settings"
	TriggerManual   = "manual"
)

// Redrawer owns the widget's render passes. Passes never overlap; readers
// get the last finished result without waiting on a pass in flight.
type Redrawer struct {
	env     widget.Env
	limiter *rate.Limiter

	passMu sync.Mutex

	mu   sync.RWMutex
	size widget.Size
	last *widget.Widget
}

// NewRedrawer returns a Redrawer laid out for size. Trigger requests beyond
// limiter's budget reuse the last result; a nil limiter allows one pass
// every two seconds.
func NewRedrawer(env widget.Env, size widget.Size, limiter *rate.Limiter) *Redrawer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(2*time.Second), 1)
	}
	return &Redrawer{env: env, size: size, limiter: limiter}
}

// Redraw runs a pass now.
func (r *Redrawer) Redraw(ctx context.Context, trigger string) *widget.Widget {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	start := time.Now()
	env := r.env
	counter := &countingSource{src: env.Source}
	if env.Source != nil {
		env.Source = counter
	}

	w := widget.Redraw(ctx, env, r.Size())

	r.mu.Lock()
	r.last = w
	r.mu.Unlock()

	metrics.ObserveRedraw(trigger, start, counter.n)
	applog.Info("widget redrawn", "trigger", trigger, "format", w.Format, "instances", counter.n, "took", time.Since(start).Round(time.Millisecond).String())
	return w
}

// Trigger asks for a pass. When requests arrive faster than the limiter
// allows, the last result is returned and false reports that no new pass
// ran.
func (r *Redrawer) Trigger(ctx context.Context, trigger string) (*widget.Widget, bool) {
	if last := r.Last(); last != nil && !r.limiter.Allow() {
		metrics.ObserveCoalesced()
		applog.Debug("redraw coalesced", "trigger", trigger)
		return last, false
	}
	return r.Redraw(ctx, trigger), true
}

// Last is the most recent result, nil before the first pass.
func (r *Redrawer) Last() *widget.Widget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Current returns Last, running a first pass if there is none yet.
func (r *Redrawer) Current(ctx context.Context) *widget.Widget {
	if w := r.Last(); w != nil {
		return w
	}
	return r.Redraw(ctx, TriggerStartup)
}

func (r *Redrawer) Size() widget.Size {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Resize changes the layout size and redraws.
func (r *Redrawer) Resize(ctx context.Context, size widget.Size) *widget.Widget {
	r.mu.Lock()
	r.size = size
	r.mu.Unlock()
	return r.Redraw(ctx, TriggerSettings)
}

type countingSource struct {
	src widget.InstanceSource
	n   int
}

func (c *countingSource) Instances(ctx context.Context, from, to time.Time) []model.Instance {
	out := c.src.Instances(ctx, from, to)
	c.n = len(out)
	return out
}
