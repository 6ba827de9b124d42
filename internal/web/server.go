package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mincal/internal/config"
	applog "mincal/internal/log"
	"mincal/internal/metrics"
	"mincal/internal/model"
	"mincal/internal/prefs"
	"mincal/internal/schedule"
	"mincal/internal/widget"
)

//go:embed templates/*.html
var templateFS embed.FS

// EventLister lists the events behind the widget's instances.
type EventLister interface {
	Events(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

type Options struct {
	Config   *config.Config
	Redrawer *schedule.Redrawer
	Prefs    prefs.Store
	// Events backs /api/events. Optional.
	Events EventLister
	Clock  widget.Clock
	Locale *widget.Locale
}

// Server is the HTTP surface of the widget: JSON descriptors, an HTML
// rendition for browsers and the headless capture, and the settings page.
type Server struct {
	cfg      *config.Config
	redrawer *schedule.Redrawer
	prefs    prefs.Store
	events   EventLister
	clock    widget.Clock
	locale   *widget.Locale
	pages    *template.Template
}

func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Redrawer == nil || opts.Prefs == nil {
		return nil, errors.New("web: config, redrawer and prefs are required")
	}
	pages, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = widget.SystemClock{Loc: opts.Config.Location()}
	}
	locale := opts.Locale
	if locale == nil {
		locale = widget.NewLocale(opts.Config.Locale)
	}
	return &Server{
		cfg:      opts.Config,
		redrawer: opts.Redrawer,
		prefs:    opts.Prefs,
		events:   opts.Events,
		clock:    clock,
		locale:   locale,
		pages:    pages,
	}, nil
}

// Handler wires every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(metrics.Middleware())
	if s.basicAuthEnabled() {
		applog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		r.Use(s.basicAuth)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/widget", s.handleWidget)
		r.Post("/redraw", s.handleRedraw)
		r.Get("/events", s.handleEvents)
		r.Get("/preferences", s.handleListPreferences)
		r.Put("/preferences/{key}", s.handlePutPreference)
		r.Delete("/preferences", s.handleResetPreferences)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/widget", http.StatusFound)
	})
	r.Get("/widget", s.handleWidgetPage)
	r.Get("/action/{view}", s.handleAction)
	r.Get("/settings", s.handleSettingsPage)
	r.Post("/settings", s.handleSettingsForm)
	r.Post("/settings/reset", s.handleSettingsReset)
	r.Get("/preview.png", s.handlePreview)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		applog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	applog.Info("HTTP server stopped")
	return nil
}

func (s *Server) basicAuthEnabled() bool {
	return s.cfg.BasicAuth != nil && s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuth guards everything except /health.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="mincal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		applog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Microsecond).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
