package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mincal/internal/config"
	"mincal/internal/model"
	"mincal/internal/prefs"
	"mincal/internal/schedule"
	"mincal/internal/widget"
)

var testNow = time.Date(2018, time.December, 4, 10, 0, 0, 0, time.UTC)

type fakeEvents struct {
	events []model.Event
	err    error
}

func (f fakeEvents) Events(context.Context, time.Time, time.Time) ([]model.Event, error) {
	return f.events, f.err
}

type fixture struct {
	cfg      *config.Config
	store    *prefs.Memory
	redrawer *schedule.Redrawer
	handler  http.Handler
}

func newFixture(t *testing.T, mutate func(*config.Config), events EventLister) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.CalendarURL = "https://calendar.example.com/day/{date}?t={millis}"
	cfg.Capture.Output = filepath.Join(t.TempDir(), "widget.png")
	if mutate != nil {
		mutate(cfg)
	}

	clock := widget.FixedClock{At: testNow, Loc: time.UTC}
	day := time.Date(2018, time.December, 10, 9, 0, 0, 0, time.UTC)
	store := prefs.NewMemory(nil)
	redrawer := schedule.NewRedrawer(widget.Env{
		Clock:       clock,
		Source:      widget.StaticSource{{EventID: 7, Start: day, End: day.Add(time.Hour)}},
		Preferences: store,
		Locale:      widget.NewLocale("en"),
	}, widget.Size{Width: 250, Height: 200}, nil)

	srv, err := NewServer(Options{Config: cfg, Redrawer: redrawer, Prefs: store, Events: events, Clock: clock})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &fixture{cfg: cfg, store: store, redrawer: redrawer, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, nil, nil)
	if rec := f.do(t, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("/health = %d %q", rec.Code, rec.Body.String())
	}
	rec := f.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "mincal_http_requests_total") {
		t.Errorf("/metrics = %d", rec.Code)
	}
}

func TestAPIWidget(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(t, http.MethodGet, "/api/widget", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Format string `json:"format"`
		Header struct {
			Text string `json:"text"`
		} `json:"header"`
		Cells []struct {
			Text          string `json:"text"`
			InstanceCount int    `json:"instanceCount"`
			Background    string `json:"background"`
		} `json:"cells"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Format != "STANDARD" || got.Header.Text != "December 2018" || len(got.Cells) != widget.CellsInGrid {
		t.Errorf("widget = %+v", got)
	}
	if c := got.Cells[14]; c.Text != "10" || c.InstanceCount != 1 || !strings.HasPrefix(c.Background, "#") {
		t.Errorf("cell 14 = %+v", c)
	}
}

func TestAPIRedraw(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(t, http.MethodPost, "/api/redraw", "", "")
	var got redrawResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Redrawn || got.Widget == nil {
		t.Fatalf("redraw = %+v", got)
	}
	if got.Widget.Format != widget.FormatStandard || got.Widget.Cells[14].InstanceCount != 1 {
		t.Errorf("decoded widget format %s, cell 14 count %d", got.Widget.Format, got.Widget.Cells[14].InstanceCount)
	}
}

func TestAPIPreferences(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodPut, "/api/preferences/WIDGET_THEME", "application/json", `{"value":"light"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT theme = %d %s", rec.Code, rec.Body.String())
	}
	if v, _ := f.store.Get(widget.KeyTheme); v != "LIGHT" {
		t.Errorf("stored theme = %q", v)
	}
	if last := f.redrawer.Last(); last == nil || last.Theme != widget.ThemeLight {
		t.Error("settings change did not redraw")
	}

	if rec := f.do(t, http.MethodPut, "/api/preferences/widget_transparency", "text/plain", "75"); rec.Code != http.StatusOK {
		t.Errorf("PUT transparency = %d", rec.Code)
	}

	var resp preferencesResponse
	if err := json.NewDecoder(f.do(t, http.MethodGet, "/api/preferences", "", "").Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Effective[widget.KeyTransparency] != "75" || resp.Effective[widget.KeyTextSize] != "40" {
		t.Errorf("effective = %v", resp.Effective)
	}
	if len(resp.Stored) != 2 || len(resp.Choices[widget.KeyTheme]) != 2 {
		t.Errorf("stored = %v, choices = %v", resp.Stored, resp.Choices)
	}

	bad := []struct{ key, body string }{
		{"WIDGET_TRANSPARENCY", "101"},
		{"WIDGET_THEME", "PURPLE"},
		{"NOT_A_KEY", "1"},
		{"INSTANCES_COLOUR", "SYSTEM_ACCENT"},
	}
	for _, b := range bad {
		if rec := f.do(t, http.MethodPut, "/api/preferences/"+b.key, "text/plain", b.body); rec.Code != http.StatusBadRequest {
			t.Errorf("PUT %s=%s = %d, want 400", b.key, b.body, rec.Code)
		}
	}

	if rec := f.do(t, http.MethodDelete, "/api/preferences", "", ""); rec.Code != http.StatusOK {
		t.Errorf("DELETE = %d", rec.Code)
	}
	if all, _ := f.store.All(); len(all) != 0 {
		t.Errorf("after reset: %v", all)
	}
}

func TestAccentAllowedWhenSupported(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.AccentSupported = true }, nil)
	if rec := f.do(t, http.MethodPut, "/api/preferences/INSTANCES_COLOUR", "text/plain", "system_accent"); rec.Code != http.StatusOK {
		t.Errorf("PUT accent = %d %s", rec.Code, rec.Body.String())
	}
}

func TestActions(t *testing.T) {
	f := newFixture(t, nil, nil)
	tests := []struct {
		target string
		code   int
		want   string
	}{
		{"/action/configuration", http.StatusFound, "/settings"},
		{"/action/action.mincal.configuration_icon_click", http.StatusFound, "/settings"},
		{"/action/header", http.StatusFound, "https://calendar.example.com/day/2018-12-04?t=1543917600000"},
		{"/action/day?date=2018-12-10", http.StatusFound, "https://calendar.example.com/day/2018-12-10?t=1544400000000"},
		{"/action/day?date=10/12/2018", http.StatusBadRequest, ""},
		{"/action/bogus", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := f.do(t, http.MethodGet, tt.target, "", "")
		if rec.Code != tt.code {
			t.Errorf("%s = %d, want %d", tt.target, rec.Code, tt.code)
			continue
		}
		if tt.want != "" && rec.Header().Get("Location") != tt.want {
			t.Errorf("%s -> %q, want %q", tt.target, rec.Header().Get("Location"), tt.want)
		}
	}

	plain := newFixture(t, func(c *config.Config) { c.CalendarURL = "" }, nil)
	if loc := plain.do(t, http.MethodGet, "/action/header", "", "").Header().Get("Location"); loc != "/widget" {
		t.Errorf("no calendar url -> %q", loc)
	}
}

func TestWidgetPage(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(t, http.MethodGet, "/widget", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`data-ready="true"`,
		`data-format="STANDARD"`,
		`December`,
		`href="/action/day?date=2018-12-04"`,
		`data-date="2018-12-10" data-instances="1"`,
		`width: 250px`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page lacks %s", want)
		}
	}
}

func TestSettingsForm(t *testing.T) {
	f := newFixture(t, nil, nil)
	if rec := f.do(t, http.MethodGet, "/settings", "", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Widget settings") {
		t.Fatalf("GET /settings = %d", rec.Code)
	}

	f.store.Set(widget.KeyFocusOnCurrentWeek, "true")
	form := url.Values{
		widget.KeyTheme:          {"LIGHT"},
		widget.KeyShowWeekNumber: {"true"},
		widget.KeyTransparency:   {"35"},
	}
	rec := f.do(t, http.MethodPost, "/settings", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /settings = %d %s", rec.Code, rec.Body.String())
	}
	want := map[string]string{
		widget.KeyTheme:              "LIGHT",
		widget.KeyShowWeekNumber:     "true",
		widget.KeyFocusOnCurrentWeek: "false",
		widget.KeyShowDeclinedEvents: "false",
		widget.KeyTransparency:       "35",
	}
	for k, v := range want {
		if got, _ := f.store.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if last := f.redrawer.Last(); last == nil || len(last.WeekNumbers) != widget.WeeksInGrid {
		t.Error("settings form did not redraw with week numbers")
	}

	bad := url.Values{widget.KeyTextSize: {"abc"}}
	if rec := f.do(t, http.MethodPost, "/settings", "application/x-www-form-urlencoded", bad.Encode()); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid form = %d", rec.Code)
	}
	if v, _ := f.store.Get(widget.KeyTextSize); v != "" {
		t.Errorf("invalid form stored text size %q", v)
	}

	if rec := f.do(t, http.MethodPost, "/settings/reset", "", ""); rec.Code != http.StatusSeeOther {
		t.Errorf("reset = %d", rec.Code)
	}
	if all, _ := f.store.All(); len(all) != 0 {
		t.Errorf("after reset: %v", all)
	}
}

func TestSettingsFormStoresNothingOnUnavailableAccent(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.AccentSupported = false }, nil)
	form := url.Values{
		widget.KeyTheme:           {"LIGHT"},
		widget.KeyFirstDayOfWeek:  {"SUNDAY"},
		widget.KeyInstancesColour: {"SYSTEM_ACCENT"},
	}
	rec := f.do(t, http.MethodPost, "/settings", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /settings = %d", rec.Code)
	}
	if all, _ := f.store.All(); len(all) != 0 {
		t.Errorf("rejected form stored %v", all)
	}
}

func TestAPIEvents(t *testing.T) {
	start := time.Date(2018, 12, 10, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, nil, fakeEvents{events: []model.Event{{
		SourceID: "work",
		UID:      "standup@example.com",
		Summary:  "Standup",
		Instance: model.Instance{EventID: 3, Start: start, End: start.Add(15 * time.Minute)},
	}}})

	rec := f.do(t, http.MethodGet, "/api/events", "", "")
	var resp eventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Summary != "Standup" || resp.Events[0].Zone != "UTC" {
		t.Errorf("events = %+v", resp.Events)
	}
	if !resp.RangeStart.Equal(time.Date(2018, 10, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("range start = %s", resp.RangeStart)
	}

	if rec := f.do(t, http.MethodGet, "/api/events?from=2018-12-31&to=2018-12-01", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range = %d", rec.Code)
	}

	failing := newFixture(t, nil, fakeEvents{err: errors.New("feed down")})
	if rec := failing.do(t, http.MethodGet, "/api/events", "", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("failing lister = %d", rec.Code)
	}
	none := newFixture(t, nil, nil)
	if rec := none.do(t, http.MethodGet, "/api/events", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("no lister = %d", rec.Code)
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t, nil, nil)
	if rec := f.do(t, http.MethodGet, "/preview.png", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing preview = %d", rec.Code)
	}
	png := []byte("\x89PNG\r\n\x1a\n")
	if err := os.WriteFile(f.cfg.Capture.Output, png, 0o600); err != nil {
		t.Fatal(err)
	}
	rec := f.do(t, http.MethodGet, "/preview.png", "", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("preview = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestBasicAuth(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "me", Password: "secret"}
	}, nil)

	if rec := f.do(t, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("/health behind auth = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/widget", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /api/widget = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/widget", nil)
	req.SetBasicAuth("me", "secret")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated /api/widget = %d", rec.Code)
	}
}

func TestCSSColour(t *testing.T) {
	if got := cssColour(widget.Colour(0x3F1A2B3C)); got != "rgba(26,43,60,0.247)" {
		t.Errorf("cssColour = %s", got)
	}
}
