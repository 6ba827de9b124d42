package widget

import (
	"fmt"
	"strconv"
	"strings"

	applog "mincal/internal/log"
)

// Preference keys as stored in the key/value store.
const (
	KeyTheme              = "WIDGET_THEME"
	KeyFirstDayOfWeek     = "FIRST_DAY_OF_WEEK"
	KeyInstancesColour    = "INSTANCES_COLOUR"
	KeyInstancesSymbolSet = "INSTANCES_SYMBOL_SET"
	KeyCalendar           = "WIDGET_CALENDAR"
	KeyShowDeclinedEvents = "SHOW_DECLINED_EVENTS"
	KeyFocusOnCurrentWeek = "FOCUS_ON_CURRENT_WEEK"
	KeyShowWeekNumber     = "SHOW_WEEK_NUMBER"
	KeyTransparency       = "WIDGET_TRANSPARENCY"
	KeyTextSize           = "WIDGET_TEXT_SIZE"
)

// PreferenceKeys lists every key in display order.
var PreferenceKeys = []string{
	KeyTheme,
	KeyFirstDayOfWeek,
	KeyInstancesColour,
	KeyInstancesSymbolSet,
	KeyCalendar,
	KeyShowDeclinedEvents,
	KeyFocusOnCurrentWeek,
	KeyShowWeekNumber,
	KeyTransparency,
	KeyTextSize,
}

// PreferenceReader is the read side of the preference store.
type PreferenceReader interface {
	Get(key string) (string, bool)
}

// Preferences are read once at the start of a render pass.
type Preferences struct {
	Theme              Theme
	FirstDayOfWeek     DayOfWeek
	InstancesColour    InstancesColour
	SymbolSet          SymbolSet
	Calendar           Calendar
	ShowDeclinedEvents bool
	FocusOnCurrentWeek bool
	ShowWeekNumber     bool
	Transparency       Transparency
	TextSize           TextSize
}

// DefaultPreferences is what a fresh install shows: DARK, MONDAY, CYAN,
// MINIMAL, GREGORIAN, 20% transparency, text size 40 and every flag off.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:           ThemeDark,
		FirstDayOfWeek:  Monday,
		InstancesColour: ColourCyan,
		SymbolSet:       SymbolSetMinimal,
		Calendar:        CalendarGregorian,
		Transparency:    MustTransparency(20),
		TextSize:        MustTextSize(40),
	}
}

// Values renders p in the store's string encoding.
func (p Preferences) Values() map[string]string {
	return map[string]string{
		KeyTheme:              p.Theme.String(),
		KeyFirstDayOfWeek:     p.FirstDayOfWeek.String(),
		KeyInstancesColour:    p.InstancesColour.String(),
		KeyInstancesSymbolSet: p.SymbolSet.String(),
		KeyCalendar:           p.Calendar.String(),
		KeyShowDeclinedEvents: strconv.FormatBool(p.ShowDeclinedEvents),
		KeyFocusOnCurrentWeek: strconv.FormatBool(p.FocusOnCurrentWeek),
		KeyShowWeekNumber:     strconv.FormatBool(p.ShowWeekNumber),
		KeyTransparency:       strconv.Itoa(p.Transparency.Percentage()),
		KeyTextSize:           strconv.Itoa(p.TextSize.Percentage()),
	}
}

// Set parses value into the field named by key.
func (p *Preferences) Set(key, value string) error {
	var err error
	switch key {
	case KeyTheme:
		p.Theme, err = ParseTheme(value)
	case KeyFirstDayOfWeek:
		p.FirstDayOfWeek, err = ParseDayOfWeek(value)
	case KeyInstancesColour:
		p.InstancesColour, err = ParseInstancesColour(value)
	case KeyInstancesSymbolSet:
		p.SymbolSet, err = ParseSymbolSet(value)
	case KeyCalendar:
		p.Calendar, err = ParseCalendar(value)
	case KeyShowDeclinedEvents:
		p.ShowDeclinedEvents, err = strconv.ParseBool(value)
	case KeyFocusOnCurrentWeek:
		p.FocusOnCurrentWeek, err = strconv.ParseBool(value)
	case KeyShowWeekNumber:
		p.ShowWeekNumber, err = strconv.ParseBool(value)
	case KeyTransparency:
		var n int
		if n, err = strconv.Atoi(strings.TrimSpace(value)); err == nil {
			p.Transparency, err = NewTransparency(n)
		}
	case KeyTextSize:
		var n int
		if n, err = strconv.Atoi(strings.TrimSpace(value)); err == nil {
			p.TextSize, err = NewTextSize(n)
		}
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
	if err != nil {
		return fmt.Errorf("preference %s: %w", key, err)
	}
	return nil
}

// ValidatePreference checks value without keeping it.
func ValidatePreference(key, value string) error {
	p := DefaultPreferences()
	return p.Set(key, value)
}

// LoadPreferences reads every key from r. Missing or unparsable values keep
// their default. The system accent falls back to the default colour when
// the platform does not support it.
func LoadPreferences(r PreferenceReader, accentSupported bool) Preferences {
	p := DefaultPreferences()
	if r == nil {
		return p
	}
	for _, key := range PreferenceKeys {
		v, ok := r.Get(key)
		if !ok {
			continue
		}
		candidate := p
		if err := candidate.Set(key, v); err != nil {
			applog.Warn("ignoring invalid preference", "key", key, "value", v, "err", err)
			continue
		}
		p = candidate
	}
	if !p.InstancesColour.Available(accentSupported) {
		p.InstancesColour = DefaultPreferences().InstancesColour
	}
	return p
}

// MapPreferences is a PreferenceReader over a plain map.
type MapPreferences map[string]string

func (m MapPreferences) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// PreferenceChoices lists the accepted values of an enumerated key. Numeric
// keys return nil.
func PreferenceChoices(key string, accentSupported bool) []string {
	switch key {
	case KeyTheme:
		return append([]string(nil), themeNames...)
	case KeyFirstDayOfWeek:
		return append([]string(nil), dayOfWeekNames...)
	case KeyInstancesColour:
		var out []string
		for _, c := range AvailableInstancesColours(accentSupported) {
			out = append(out, c.String())
		}
		return out
	case KeyInstancesSymbolSet:
		return append([]string(nil), symbolSetNames...)
	case KeyCalendar:
		return append([]string(nil), calendarNames...)
	case KeyShowDeclinedEvents, KeyFocusOnCurrentWeek, KeyShowWeekNumber:
		return []string{"false", "true"}
	}
	return nil
}
