package widget

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type localeNames struct {
	months [12]string
	days   [DaysInWeek]string // Monday first
	short  [DaysInWeek]string
}

var supportedLocales = []language.Tag{
	language.English,
	language.Spanish,
	language.Catalan,
	language.German,
	language.French,
	language.Italian,
	language.Portuguese,
}

var localeTables = []localeNames{
	{
		months: [12]string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
		days:   [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		short:  [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"},
	},
	{
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		days:   [7]string{"lunes", "martes", "miércoles", "jueves", "viernes", "sábado", "domingo"},
		short:  [7]string{"lun", "mar", "mié", "jue", "vie", "sáb", "dom"},
	},
	{
		months: [12]string{"gener", "febrer", "març", "abril", "maig", "juny", "juliol", "agost", "setembre", "octubre", "novembre", "desembre"},
		days:   [7]string{"dilluns", "dimarts", "dimecres", "dijous", "divendres", "dissabte", "diumenge"},
		short:  [7]string{"dl.", "dt.", "dc.", "dj.", "dv.", "ds.", "dg."},
	},
	{
		months: [12]string{"januar", "februar", "märz", "april", "mai", "juni", "juli", "august", "september", "oktober", "november", "dezember"},
		days:   [7]string{"montag", "dienstag", "mittwoch", "donnerstag", "freitag", "samstag", "sonntag"},
		short:  [7]string{"mo", "di", "mi", "do", "fr", "sa", "so"},
	},
	{
		months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		days:   [7]string{"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche"},
		short:  [7]string{"lun", "mar", "mer", "jeu", "ven", "sam", "dim"},
	},
	{
		months: [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
		days:   [7]string{"lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato", "domenica"},
		short:  [7]string{"lun", "mar", "mer", "gio", "ven", "sab", "dom"},
	},
	{
		months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		days:   [7]string{"segunda", "terça", "quarta", "quinta", "sexta", "sábado", "domingo"},
		short:  [7]string{"seg", "ter", "qua", "qui", "sex", "sáb", "dom"},
	},
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Locale holds month and day names for one supported language.
type Locale struct {
	tag   language.Tag
	names localeNames
}

// NewLocale matches name (a BCP 47 tag such as "es-ES") against the
// supported languages. No match falls back to English.
func NewLocale(name string) *Locale {
	idx := 0
	if name != "" {
		if tag, err := language.Parse(name); err == nil {
			_, i, conf := localeMatcher.Match(tag)
			if conf != language.No {
				idx = i
			}
		}
	}
	return &Locale{tag: supportedLocales[idx], names: localeTables[idx]}
}

func (l *Locale) Tag() language.Tag { return l.tag }

// MonthName is the capitalized name of m.
func (l *Locale) MonthName(m time.Month) string {
	return l.capitalize(l.names.months[m-1])
}

// DayName is the capitalized name of d.
func (l *Locale) DayName(d DayOfWeek) string {
	return l.capitalize(l.names.days[d])
}

// DayShortName is the capitalized abbreviation of d, e.g. "Dl." in Catalan.
func (l *Locale) DayShortName(d DayOfWeek) string {
	return l.capitalize(l.names.short[d])
}

// Casers keep state, so one is built per call.
func (l *Locale) capitalize(s string) string {
	return cases.Title(l.tag).String(s)
}
