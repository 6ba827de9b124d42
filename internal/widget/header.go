package widget

import "time"

// HeaderRelativeYearSize scales the year against the month name.
const HeaderRelativeYearSize = 0.7

// Header is the month and year row.
type Header struct {
	Text             string  `json:"text"`
	Month            string  `json:"month"`
	Year             string  `json:"year"`
	TextColour       Colour  `json:"textColour"`
	RelativeYearSize float64 `json:"relativeYearSize"`
	TextRelativeSize float64 `json:"textRelativeSize"`
}

// MonthAndYearHeader builds the header for the month of now in loc, with
// the month label cut by f and the year written by cal.
func MonthAndYearHeader(now time.Time, loc *time.Location, locale *Locale, cal Calendar, f Format, theme Theme) Header {
	if loc == nil {
		loc = time.UTC
	}
	month := f.MonthHeaderLabel(locale.MonthName(now.In(loc).Month()))
	year := cal.Year(now, loc)
	return Header{
		Text:             month + " " + year,
		Month:            month,
		Year:             year,
		TextColour:       theme.MainTextColour(),
		RelativeYearSize: HeaderRelativeYearSize,
		TextRelativeSize: f.HeaderTextRelativeSize(),
	}
}

// DayHeaderCell is one column label of the days header row.
type DayHeaderCell struct {
	DayOfWeek    DayOfWeek `json:"dayOfWeek"`
	Label        string    `json:"label"`
	TextColour   Colour    `json:"textColour"`
	Background   *Colour   `json:"background,omitempty"`
	RelativeSize float64   `json:"relativeSize"`
}

// DaysHeader labels the seven columns starting at first.
func DaysHeader(first DayOfWeek, locale *Locale, f Format, theme Theme, t Transparency, size TextSize) []DayHeaderCell {
	days := RotatedDaysOfWeek(first)
	out := make([]DayHeaderCell, 0, len(days))
	for _, d := range days {
		style := theme.CellHeader(d)
		cell := DayHeaderCell{
			DayOfWeek:    d,
			Label:        f.DayHeaderLabel(locale.DayShortName(d)),
			TextColour:   style.TextColour,
			RelativeSize: size.RelativeValue(),
		}
		if style.Background != nil {
			bg := t.Apply(*style.Background, RangeModerate)
			cell.Background = &bg
		}
		out = append(out, cell)
	}
	return out
}
