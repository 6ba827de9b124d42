package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	applog "mincal/internal/log"
	"mincal/internal/schedule"
	"mincal/internal/widget"
)

var templateFuncs = template.FuncMap{
	"rgba": cssColour,
	"bg": func(c *widget.Colour) template.CSS {
		if c == nil {
			return "transparent"
		}
		return cssColour(*c)
	},
	"em": func(v float64) template.CSS {
		return template.CSS(strconv.FormatFloat(v, 'f', -1, 64) + "em")
	},
	"isoDate": func(t time.Time) string { return t.Format("2006-01-02") },
}

func cssColour(c widget.Colour) template.CSS {
	rgb := uint32(c)
	return template.CSS(fmt.Sprintf("rgba(%d,%d,%d,%.3f)",
		(rgb>>16)&0xFF, (rgb>>8)&0xFF, rgb&0xFF, float64(c.Alpha())/255))
}

type widgetPage struct {
	W      *widget.Widget
	Lang   string
	Width  int
	Height int
	// BaseFont is the pixel size relative sizes scale from.
	BaseFont int
}

func (s *Server) handleWidgetPage(w http.ResponseWriter, r *http.Request) {
	wd := s.redrawer.Current(r.Context())
	size := s.redrawer.Size()
	width, height := size.Width, size.Height
	if size.Orientation == widget.Landscape {
		width, height = height, width
	}
	s.render(w, http.StatusOK, "widget.html", widgetPage{
		W:        wd,
		Lang:     s.locale.Tag().String(),
		Width:    width,
		Height:   height,
		BaseFont: baseFont(wd.Format, height),
	})
}

// baseFont spreads the header, days row and six weeks over the height.
func baseFont(f widget.Format, height int) int {
	px := height / 12
	if f == widget.FormatReduced {
		px = height / 10
	}
	if px < 6 {
		px = 6
	}
	return px
}

// handleAction resolves a click on the widget. Day clicks carry the
// clicked date as ?date=YYYY-MM-DD.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	view, err := widget.ParseActionableView(chi.URLParam(r, "view"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	loc := s.clock.Location()
	var at time.Time
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "date: want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		at = widget.StartOfDay(d, loc)
	}

	target := view.Navigate(s.clock.Now(), at)
	applog.Debug("widget action", "view", view, "code", view.Code(), "at", target.At.Format(time.RFC3339))

	switch target.Kind {
	case widget.TargetSettings:
		http.Redirect(w, r, "/settings", http.StatusFound)
	default:
		http.Redirect(w, r, s.calendarURL(target.At), http.StatusFound)
	}
}

// calendarURL fills the configured template. Without one, the widget page
// is the only calendar there is.
func (s *Server) calendarURL(at time.Time) string {
	if s.cfg.CalendarURL == "" {
		return "/widget"
	}
	return strings.NewReplacer(
		"{date}", at.In(s.clock.Location()).Format("2006-01-02"),
		"{millis}", strconv.FormatInt(at.UnixMilli(), 10),
	).Replace(s.cfg.CalendarURL)
}

type settingField struct {
	Key     string
	Label   string
	Value   string
	Choices []string
	// Numeric fields are percentages.
	Numeric bool
	Bool    bool
}

type settingsPage struct {
	Fields  []settingField
	Error   string
	Saved   bool
	Widget  *widget.Widget
	Access  bool
	Sources int
}

var settingLabels = map[string]string{
	widget.KeyTheme:              "Theme",
	widget.KeyFirstDayOfWeek:     "First day of week",
	widget.KeyInstancesColour:    "Instances colour",
	widget.KeyInstancesSymbolSet: "Instances symbols",
	widget.KeyCalendar:           "Calendar",
	widget.KeyShowDeclinedEvents: "Show declined events",
	widget.KeyFocusOnCurrentWeek: "Focus on current week",
	widget.KeyShowWeekNumber:     "Show week number",
	widget.KeyTransparency:       "Transparency (%)",
	widget.KeyTextSize:           "Text size (%)",
}

func (s *Server) settingsPage(r *http.Request, formErr string) settingsPage {
	current := widget.LoadPreferences(s.prefs, s.cfg.AccentSupported).Values()
	fields := make([]settingField, 0, len(widget.PreferenceKeys))
	for _, k := range widget.PreferenceKeys {
		choices := widget.PreferenceChoices(k, s.cfg.AccentSupported)
		f := settingField{
			Key:     k,
			Label:   settingLabels[k],
			Value:   current[k],
			Numeric: choices == nil,
		}
		switch k {
		case widget.KeyShowDeclinedEvents, widget.KeyFocusOnCurrentWeek, widget.KeyShowWeekNumber:
			f.Bool = true
		default:
			f.Choices = choices
		}
		fields = append(fields, f)
	}
	return settingsPage{
		Fields:  fields,
		Error:   formErr,
		Saved:   r.URL.Query().Get("saved") == "1",
		Widget:  s.redrawer.Last(),
		Access:  s.cfg.CalendarAccess,
		Sources: len(s.cfg.EnabledICS()),
	}
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "settings.html", s.settingsPage(r, ""))
}

// handleSettingsForm saves every submitted key. Nothing is stored when any
// value is invalid.
func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	pending := map[string]string{}
	for _, k := range widget.PreferenceKeys {
		if v, ok := r.PostForm[k]; ok && len(v) > 0 {
			pending[k] = v[len(v)-1]
		}
	}
	// Unchecked boxes are absent from the form.
	for _, k := range []string{widget.KeyShowDeclinedEvents, widget.KeyFocusOnCurrentWeek, widget.KeyShowWeekNumber} {
		if _, ok := pending[k]; !ok {
			pending[k] = "false"
		}
	}

	canonical := make(map[string]string, len(pending))
	for _, k := range widget.PreferenceKeys {
		v, ok := pending[k]
		if !ok {
			continue
		}
		c, err := s.canonicalPreference(k, v)
		if err != nil {
			s.render(w, http.StatusBadRequest, "settings.html", s.settingsPage(r, err.Error()))
			return
		}
		canonical[k] = c
	}
	for _, k := range widget.PreferenceKeys {
		v, ok := canonical[k]
		if !ok {
			continue
		}
		if err := s.storePreference(k, v); err != nil {
			s.render(w, http.StatusBadRequest, "settings.html", s.settingsPage(r, err.Error()))
			return
		}
	}

	s.redrawer.Redraw(r.Context(), schedule.TriggerSettings)
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

func (s *Server) handleSettingsReset(w http.ResponseWriter, r *http.Request) {
	if err := s.prefs.Clear(); err != nil {
		applog.Error("reset preferences", err)
		http.Error(w, "failed to reset preferences", http.StatusInternalServerError)
		return
	}
	s.redrawer.Redraw(r.Context(), schedule.TriggerSettings)
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// handlePreview serves the last PNG written by the capture.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := s.cfg.Capture.Output
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "no preview captured yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		applog.Error("render page", err, "page", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
