package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mincal_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mincal_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	redrawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mincal_redraws_total",
		Help: "Widget redraw passes by trigger.",
	}, []string{"trigger"})

	redrawsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mincal_redraws_coalesced_total",
		Help: "Redraw requests served from the last result instead of a new pass.",
	})

	redrawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mincal_redraw_duration_seconds",
		Help:    "Histogram of redraw pass latencies.",
		Buckets: prometheus.DefBuckets,
	})

	instancesInWindow = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mincal_instances_in_window",
		Help: "Instances returned by the last query window.",
	})

	icsFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mincal_ics_fetch_total",
		Help: "ICS fetches by source and result.",
	}, []string{"source", "result"})

	icsTruncatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mincal_ics_truncated_events_total",
		Help: "Recurring events whose expansion hit the per-event cap.",
	})
)

// ICS fetch results.
const (
	FetchOK          = "ok"
	FetchNotModified = "not_modified"
	FetchStale       = "stale"
	FetchError       = "error"
)

// Middleware records request counts and latencies per chi route pattern.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRedraw records a finished redraw pass.
func ObserveRedraw(trigger string, start time.Time, instances int) {
	redrawsTotal.WithLabelValues(trigger).Inc()
	redrawDuration.Observe(time.Since(start).Seconds())
	instancesInWindow.Set(float64(instances))
}

func ObserveCoalesced() {
	redrawsCoalesced.Inc()
}

// ObserveFetch counts one ICS fetch outcome for source.
func ObserveFetch(source, result string) {
	icsFetchTotal.WithLabelValues(source, result).Inc()
}

func ObserveTruncated(n int) {
	icsTruncatedTotal.Add(float64(n))
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
