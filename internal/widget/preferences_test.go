package widget

import (
	"errors"
	"testing"
)

func TestLoadPreferencesDefaults(t *testing.T) {
	got := LoadPreferences(MapPreferences{}, false)
	want := DefaultPreferences()
	if got != want {
		t.Errorf("LoadPreferences(empty) = %+v, want %+v", got, want)
	}
	if got.Transparency.Percentage() != 20 || got.TextSize.Percentage() != 40 {
		t.Errorf("defaults transparency=%d text=%d", got.Transparency.Percentage(), got.TextSize.Percentage())
	}
	if LoadPreferences(nil, false) != want {
		t.Error("nil reader should give defaults")
	}
}

func TestLoadPreferencesParsesValues(t *testing.T) {
	got := LoadPreferences(MapPreferences{
		KeyTheme:              "light",
		KeyFirstDayOfWeek:     "SUNDAY",
		KeyInstancesColour:    "MINT",
		KeyInstancesSymbolSet: "ROMAN",
		KeyCalendar:           "HOLOCENE",
		KeyShowDeclinedEvents: "true",
		KeyFocusOnCurrentWeek: "1",
		KeyShowWeekNumber:     "true",
		KeyTransparency:       "75",
		KeyTextSize:           "100",
	}, false)

	if got.Theme != ThemeLight || got.FirstDayOfWeek != Sunday || got.InstancesColour != ColourMint ||
		got.SymbolSet != SymbolSetRoman || got.Calendar != CalendarHolocene {
		t.Errorf("enum preferences = %+v", got)
	}
	if !got.ShowDeclinedEvents || !got.FocusOnCurrentWeek || !got.ShowWeekNumber {
		t.Errorf("bool preferences = %+v", got)
	}
	if got.Transparency.Percentage() != 75 || got.TextSize.Percentage() != 100 {
		t.Errorf("percentages = %d, %d", got.Transparency.Percentage(), got.TextSize.Percentage())
	}
}

func TestLoadPreferencesInvalidKeepsDefault(t *testing.T) {
	got := LoadPreferences(MapPreferences{
		KeyTheme:          "SEPIA",
		KeyFirstDayOfWeek: "FUNDAY",
		KeyTransparency:   "101",
		KeyTextSize:       "big",
		KeyShowWeekNumber: "maybe",
	}, false)
	if got != DefaultPreferences() {
		t.Errorf("invalid values leaked: %+v", got)
	}
}

func TestLoadPreferencesSystemAccent(t *testing.T) {
	prefs := MapPreferences{KeyInstancesColour: "SYSTEM_ACCENT"}
	if got := LoadPreferences(prefs, true).InstancesColour; got != ColourSystemAccent {
		t.Errorf("supported accent = %s", got)
	}
	if got := LoadPreferences(prefs, false).InstancesColour; got != ColourCyan {
		t.Errorf("unsupported accent = %s, want CYAN", got)
	}
}

func TestPreferencesValuesRoundTrip(t *testing.T) {
	p := DefaultPreferences()
	p.Theme = ThemeLight
	p.FirstDayOfWeek = Thursday
	p.TextSize = MustTextSize(77)

	got := LoadPreferences(MapPreferences(p.Values()), false)
	if got != p {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
	if len(p.Values()) != len(PreferenceKeys) {
		t.Errorf("Values has %d keys, want %d", len(p.Values()), len(PreferenceKeys))
	}
}

func TestValidatePreference(t *testing.T) {
	if err := ValidatePreference(KeyTransparency, "50"); err != nil {
		t.Errorf("valid transparency: %v", err)
	}
	if err := ValidatePreference(KeyTransparency, "-5"); !errors.Is(err, ErrPercentageOutOfRange) {
		t.Errorf("negative transparency err = %v", err)
	}
	if err := ValidatePreference("NOPE", "x"); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestPreferenceChoices(t *testing.T) {
	for _, key := range PreferenceKeys {
		for _, v := range PreferenceChoices(key, true) {
			if err := ValidatePreference(key, v); err != nil {
				t.Errorf("choice %s=%s rejected: %v", key, v, err)
			}
		}
	}
	if got := PreferenceChoices(KeyInstancesColour, false); got[0] == "SYSTEM_ACCENT" {
		t.Errorf("accent offered without support: %v", got)
	}
	if PreferenceChoices(KeyTransparency, true) != nil {
		t.Error("numeric key has choices")
	}
}
