package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMiddlewareLabelsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/action/{view}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/action/day", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t)
	for _, want := range []string{
		`mincal_http_requests_total{method="GET",route="/action/{view}",status="302"}`,
		`mincal_http_requests_total{method="GET",route="unmatched",status="404"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %s", want)
		}
	}
}

func TestObserveHelpers(t *testing.T) {
	ObserveRedraw("manual", time.Now(), 7)
	ObserveCoalesced()
	ObserveFetch("work", FetchNotModified)
	ObserveTruncated(2)

	body := scrape(t)
	for _, want := range []string{
		`mincal_redraws_total{trigger="manual"}`,
		"mincal_instances_in_window 7",
		`mincal_ics_fetch_total{result="not_modified",source="work"}`,
		"mincal_ics_truncated_events_total",
		"mincal_redraws_coalesced_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %s", want)
		}
	}
}
