package ics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mincal/internal/config"
	"mincal/internal/widget"
)

func TestProviderInstances(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(calendar(
			"BEGIN:VEVENT",
			"UID:standup",
			"DTSTART:20181203T080000Z",
			"DTEND:20181203T081500Z",
			"RRULE:FREQ=DAILY;COUNT=10",
			"END:VEVENT",
			"BEGIN:VEVENT",
			"UID:offsite",
			"DTSTART;VALUE=DATE:20181210",
			"DTEND;VALUE=DATE:20181212",
			"ATTENDEE;PARTSTAT=DECLINED:mailto:me@example.com",
			"END:VEVENT",
		))
	}))
	defer srv.Close()

	p := NewProvider(NewFetcher(t.TempDir(), srv.Client()), ProviderConfig{
		Sources:        []Source{{ID: "work", URL: srv.URL}},
		CalendarAccess: true,
		Parse:          ParseOptions{Location: time.UTC, SelfEmails: []string{"me@example.com"}},
	})
	var _ widget.InstanceSource = p

	from, to := widget.QueryWindow(widget.Date(2018, time.December, 4), time.UTC)
	instances := p.Instances(context.Background(), from, to)
	if len(instances) != 11 {
		t.Fatalf("got %d instances, want 11", len(instances))
	}

	day := widget.Date(2018, time.December, 10)
	if n := widget.NumberOfInstances(day, instances, false); n != 1 {
		t.Errorf("without declined: %d", n)
	}
	if n := widget.NumberOfInstances(day, instances, true); n != 2 {
		t.Errorf("with declined: %d", n)
	}
	if n := widget.NumberOfInstances(widget.Date(2018, time.December, 12), instances, true); n != 1 {
		t.Errorf("day after all-day end: %d", n)
	}
}

func TestProviderWithoutAccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	p := NewProvider(NewFetcher(t.TempDir(), srv.Client()), ProviderConfig{
		Sources: []Source{{ID: "work", URL: srv.URL}},
	})
	if got := p.Instances(context.Background(), time.Now(), time.Now().Add(time.Hour)); got != nil {
		t.Errorf("instances without access = %v", got)
	}
	if _, err := p.Events(context.Background(), time.Now(), time.Now().Add(time.Hour)); !errors.Is(err, ErrNoCalendarAccess) {
		t.Errorf("Events err = %v, want ErrNoCalendarAccess", err)
	}
	if hits.Load() != 0 {
		t.Error("feed fetched without calendar access")
	}
}

func TestProviderAllSourcesFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProvider(NewFetcher(t.TempDir(), srv.Client()), ProviderConfig{
		Sources:        []Source{{ID: "work", URL: srv.URL}},
		CalendarAccess: true,
	})
	if _, err := p.Events(context.Background(), time.Now(), time.Now().Add(time.Hour)); err == nil {
		t.Error("Events succeeded with every source failing")
	}
	if got := p.Instances(context.Background(), time.Now(), time.Now().Add(time.Hour)); len(got) != 0 {
		t.Errorf("Instances = %v", got)
	}
}

func TestSourcesFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ICS = []config.ICSConfig{
		{ID: "a", Name: "A", URL: "https://example.com/a.ics", Enabled: true},
		{ID: "b", URL: "https://example.com/b.ics"},
	}
	got := SourcesFromConfig(cfg)
	if len(got) != 1 || got[0].ID != "a" || got[0].Name != "A" {
		t.Errorf("sources = %+v", got)
	}
}
