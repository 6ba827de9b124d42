package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchOneUsesValidatorsAndCache(t *testing.T) {
	body := calendar("BEGIN:VEVENT", "UID:a", "DTSTART:20181204T100000Z", "END:VEVENT")
	var hits, conditional atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write(body)
	}))

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "a", URL: srv.URL + "/private.ics?token=secret"}

	first, err := f.FetchOne(context.Background(), src)
	if err != nil || first.FromCache || string(first.Body) != string(body) {
		t.Fatalf("first fetch = %+v, %v", first, err)
	}

	second, err := f.FetchOne(context.Background(), src)
	if err != nil || !second.FromCache || string(second.Body) != string(body) {
		t.Fatalf("second fetch = %+v, %v", second, err)
	}
	if conditional.Load() != 1 {
		t.Errorf("conditional requests = %d, want 1", conditional.Load())
	}

	srv.Close()
	third, err := f.FetchOne(context.Background(), src)
	if err != nil || !third.FromCache {
		t.Fatalf("offline fetch = %+v, %v", third, err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d", hits.Load())
	}
}

func TestFetchAllReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.ics" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write(calendar())
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "ok", URL: srv.URL + "/ok.ics"},
		{ID: "broken", URL: srv.URL + "/broken.ics"},
		{ID: "empty"},
	})
	if len(results) != 1 || results[0].Source.ID != "ok" {
		t.Errorf("results = %+v", results)
	}
	if len(errs) != 2 {
		t.Errorf("errs = %v", errs)
	}
}

func TestRedactURL(t *testing.T) {
	tests := map[string]string{
		"https://calendar.example.com/private/abc.ics?token=x": "https://calendar.example.com/...(redacted)",
		"webcal://example.com/a.ics":                           "webcal://example.com/...(redacted)",
		"not a url":                                            "ics://...(redacted)",
	}
	for in, want := range tests {
		if got := redactURL(in); got != want {
			t.Errorf("redactURL(%q) = %q, want %q", in, got, want)
		}
	}
}
