package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	applog "mincal/internal/log"
	"mincal/internal/schedule"
	"mincal/internal/widget"
)

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.redrawer.Current(r.Context()))
}

type redrawResponse struct {
	Redrawn bool           `json:"redrawn"`
	Widget  *widget.Widget `json:"widget"`
}

func (s *Server) handleRedraw(w http.ResponseWriter, r *http.Request) {
	wd, ran := s.redrawer.Trigger(r.Context(), schedule.TriggerManual)
	writeJSON(w, http.StatusOK, redrawResponse{Redrawn: ran, Widget: wd})
}

type eventsResponse struct {
	Events     []eventDTO `json:"events"`
	RangeStart time.Time  `json:"range_start"`
	RangeEnd   time.Time  `json:"range_end"`
	TimeZone   string     `json:"timezone"`
}

type eventDTO struct {
	SourceID string    `json:"source_id"`
	UID      string    `json:"uid"`
	EventID  int       `json:"event_id"`
	Summary  string    `json:"summary"`
	AllDay   bool      `json:"all_day"`
	Declined bool      `json:"declined"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Zone     string    `json:"zone"`
}

// handleEvents lists the events behind the query window.
//
// GET /api/events?from=2018-12-01&to=2018-12-31 (both optional, defaulting
// to the widget's query window).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusNotFound, "no event source configured")
		return
	}
	loc := s.clock.Location()
	from, to := widget.QueryWindow(widget.Today(s.clock), loc)

	q := r.URL.Query()
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = time.ParseInLocation("2006-01-02", v, loc); err != nil {
			writeError(w, http.StatusBadRequest, "from: want YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.ParseInLocation("2006-01-02", v, loc); err != nil {
			writeError(w, http.StatusBadRequest, "to: want YYYY-MM-DD")
			return
		}
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}

	events, err := s.events.Events(r.Context(), from, to)
	if err != nil {
		applog.Error("api events", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventDTO{
			SourceID: e.SourceID,
			UID:      e.UID,
			EventID:  e.Instance.EventID,
			Summary:  e.Summary,
			AllDay:   e.AllDay,
			Declined: e.Instance.Declined,
			Start:    e.Instance.Start,
			End:      e.Instance.End,
			Zone:     e.Instance.Location().String(),
		})
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:     dtos,
		RangeStart: from,
		RangeEnd:   to,
		TimeZone:   loc.String(),
	})
}

type preferencesResponse struct {
	// Effective is what the next render pass uses.
	Effective map[string]string `json:"effective"`
	// Stored holds only the keys present in the store.
	Stored  map[string]string   `json:"stored"`
	Choices map[string][]string `json:"choices"`
}

func (s *Server) preferencesResponse() (preferencesResponse, error) {
	stored, err := s.prefs.All()
	if err != nil {
		return preferencesResponse{}, err
	}
	choices := map[string][]string{}
	for _, k := range widget.PreferenceKeys {
		if c := widget.PreferenceChoices(k, s.cfg.AccentSupported); c != nil {
			choices[k] = c
		}
	}
	return preferencesResponse{
		Effective: widget.LoadPreferences(s.prefs, s.cfg.AccentSupported).Values(),
		Stored:    stored,
		Choices:   choices,
	}, nil
}

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	resp, err := s.preferencesResponse()
	if err != nil {
		applog.Error("list preferences", err)
		writeError(w, http.StatusInternalServerError, "failed to read preferences")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type preferenceBody struct {
	Value string `json:"value"`
}

// handlePutPreference stores one key. The body is {"value": "..."} or the
// raw value as text/plain.
func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	key := strings.ToUpper(chi.URLParam(r, "key"))

	raw, err := io.ReadAll(io.LimitReader(r.Body, 4<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	value := strings.TrimSpace(string(raw))
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body preferenceBody
		if err := json.Unmarshal(raw, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		value = body.Value
	}

	if err := s.setPreference(key, value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.redrawer.Redraw(r.Context(), schedule.TriggerSettings)
	s.handleListPreferences(w, r)
}

// canonicalPreference validates value for key on this host and returns the
// spelling that gets stored.
func (s *Server) canonicalPreference(key, value string) (string, error) {
	p := widget.DefaultPreferences()
	if err := p.Set(key, value); err != nil {
		return "", err
	}
	if key == widget.KeyInstancesColour && !p.InstancesColour.Available(s.cfg.AccentSupported) {
		return "", fmt.Errorf("preference %s: %s is not available on this host", key, p.InstancesColour)
	}
	return p.Values()[key], nil
}

// setPreference validates value and stores its canonical spelling.
func (s *Server) setPreference(key, value string) error {
	canonical, err := s.canonicalPreference(key, value)
	if err != nil {
		return err
	}
	return s.storePreference(key, canonical)
}

func (s *Server) storePreference(key, canonical string) error {
	if err := s.prefs.Set(key, canonical); err != nil {
		applog.Error("store preference", err, "key", key)
		return errors.New("failed to store preference")
	}
	applog.Info("preference updated", "key", key, "value", canonical)
	return nil
}

func (s *Server) handleResetPreferences(w http.ResponseWriter, r *http.Request) {
	if err := s.prefs.Clear(); err != nil {
		applog.Error("reset preferences", err)
		writeError(w, http.StatusInternalServerError, "failed to reset preferences")
		return
	}
	s.redrawer.Redraw(r.Context(), schedule.TriggerSettings)
	s.handleListPreferences(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
