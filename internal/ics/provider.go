package ics

import (
	"context"
	"errors"
	"time"

	"mincal/internal/config"
	applog "mincal/internal/log"
	"mincal/internal/metrics"
	"mincal/internal/model"
)

// ErrNoCalendarAccess is returned by Events when calendar access is off.
var ErrNoCalendarAccess = errors.New("calendar access not granted")

type ProviderConfig struct {
	Sources        []Source
	CalendarAccess bool
	Parse          ParseOptions
	// MaxInstancesPerEvent is passed to ExpandInstances.
	MaxInstancesPerEvent int
}

// Provider turns the configured feeds into instances for a query window.
type Provider struct {
	fetcher *Fetcher
	cfg     ProviderConfig
}

func NewProvider(fetcher *Fetcher, cfg ProviderConfig) *Provider {
	return &Provider{fetcher: fetcher, cfg: cfg}
}

// SourcesFromConfig maps the enabled ICS entries of cfg to sources.
func SourcesFromConfig(cfg *config.Config) []Source {
	var out []Source
	for _, s := range cfg.EnabledICS() {
		out = append(out, Source{ID: s.ID, Name: s.Name, URL: s.URL})
	}
	return out
}

// Events fetches, parses and expands every source over [from, to). A feed
// that fails is skipped; the error is returned only when no source at all
// produced a body.
func (p *Provider) Events(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	if !p.cfg.CalendarAccess {
		return nil, ErrNoCalendarAccess
	}
	if len(p.cfg.Sources) == 0 {
		return nil, nil
	}

	results, errs := p.fetcher.FetchAll(ctx, p.cfg.Sources)
	if len(results) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var parsed []ParsedEvent
	for _, res := range results {
		evs, err := ParseICS(res.Source, res.Body, p.cfg.Parse)
		if err != nil {
			applog.Error("ics parse failed", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, evs...)
	}

	expanded, err := ExpandInstances(parsed, ExpandConfig{
		RangeStart:           from,
		RangeEnd:             to,
		MaxInstancesPerEvent: p.cfg.MaxInstancesPerEvent,
	})
	if err != nil {
		return nil, err
	}
	if n := len(expanded.Truncated); n > 0 {
		metrics.ObserveTruncated(n)
	}
	return expanded.Events, nil
}

// Instances never fails: without access or on error the widget simply
// shows no instances.
func (p *Provider) Instances(ctx context.Context, from, to time.Time) []model.Instance {
	events, err := p.Events(ctx, from, to)
	if err != nil {
		if !errors.Is(err, ErrNoCalendarAccess) {
			applog.Error("query instances", err, "from", from.Format(time.RFC3339), "to", to.Format(time.RFC3339))
		}
		return nil
	}
	out := make([]model.Instance, len(events))
	for i, e := range events {
		out[i] = e.Instance
	}
	return out
}
