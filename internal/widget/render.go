package widget

import (
	"context"
	"time"

	applog "mincal/internal/log"
	"mincal/internal/model"
)

// DayCell is the fully resolved descriptor of one grid cell.
type DayCell struct {
	Date               time.Time `json:"date"`
	DayOfWeek          DayOfWeek `json:"dayOfWeek"`
	Text               string    `json:"text"`
	IsToday            bool      `json:"isToday"`
	IsInMonth          bool      `json:"isInMonth"`
	IsSingleDigit      bool      `json:"isSingleDigit"`
	InstanceCount      int       `json:"instanceCount"`
	Symbol             string    `json:"symbol"`
	SymbolVisible      bool      `json:"symbolVisible"`
	Slot               CellSlot  `json:"slot"`
	TextColour         Colour    `json:"textColour"`
	InstancesColour    Colour    `json:"instancesColour"`
	Background         *Colour   `json:"background,omitempty"`
	Bold               bool      `json:"bold"`
	TextRelativeSize   float64   `json:"textRelativeSize"`
	SymbolRelativeSize float64   `json:"symbolRelativeSize"`
	StartOfDay         time.Time `json:"startOfDay"`
}

// WeekNumberCell labels one grid row.
type WeekNumberCell struct {
	Week         int     `json:"week"`
	TextColour   Colour  `json:"textColour"`
	RelativeSize float64 `json:"relativeSize"`
}

// Widget is the output of one render pass.
type Widget struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Today       time.Time        `json:"today"`
	Format      Format           `json:"format"`
	Theme       Theme            `json:"theme"`
	Background  Colour           `json:"background"`
	Header      Header           `json:"header"`
	DaysHeader  []DayHeaderCell  `json:"daysHeader"`
	WeekNumbers []WeekNumberCell `json:"weekNumbers,omitempty"`
	Cells       []DayCell        `json:"cells"`
}

// Rows splits Cells into weeks.
func (w *Widget) Rows() [][]DayCell {
	rows := make([][]DayCell, 0, WeeksInGrid)
	for i := 0; i+DaysInWeek <= len(w.Cells); i += DaysInWeek {
		rows = append(rows, w.Cells[i:i+DaysInWeek])
	}
	return rows
}

// Input is everything one pass reads.
type Input struct {
	Now         time.Time
	Location    *time.Location
	Locale      *Locale
	Format      Format
	Preferences Preferences
	Instances   []model.Instance
}

// Render computes the widget for in. It has no side effects.
func Render(in Input) *Widget {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	locale := in.Locale
	if locale == nil {
		locale = NewLocale("")
	}
	p := in.Preferences
	today := DateOf(in.Now.In(loc))
	textSize := round3(p.TextSize.RelativeValue() * in.Format.DayCellValueRelativeSize())

	w := &Widget{
		GeneratedAt: in.Now,
		Today:       today,
		Format:      in.Format,
		Theme:       p.Theme,
		Background:  p.Transparency.Apply(p.Theme.MainBackground(), RangeComplete),
		Header:      MonthAndYearHeader(in.Now, loc, locale, p.Calendar, in.Format, p.Theme),
		DaysHeader:  DaysHeader(p.FirstDayOfWeek, locale, in.Format, p.Theme, p.Transparency, p.TextSize),
		Cells:       make([]DayCell, 0, CellsInGrid),
	}

	showSymbols := p.SymbolSet != SymbolSetNone && len(in.Instances) > 0
	for _, date := range GridDates(today, p.FirstDayOfWeek, p.FocusOnCurrentWeek) {
		w.Cells = append(w.Cells, resolveCell(Day{Date: date}, today, loc, p, in.Instances, showSymbols, textSize))
	}

	if p.ShowWeekNumber {
		style := p.Theme.CellWeekNumber()
		for _, row := range w.Rows() {
			w.WeekNumbers = append(w.WeekNumbers, WeekNumberCell{
				Week:         Day{Date: row[3].Date}.ISOWeek(),
				TextColour:   style.TextColour,
				RelativeSize: textSize,
			})
		}
	}
	return w
}

func resolveCell(day Day, today time.Time, loc *time.Location, p Preferences, instances []model.Instance, showSymbols bool, textSize float64) DayCell {
	isToday := day.IsToday(today)
	dow := day.DayOfWeek()
	style := p.Theme.CellDay(isToday, day.IsInMonth(today), dow)
	count := NumberOfInstances(day.Date, instances, p.ShowDeclinedEvents)

	cell := DayCell{
		Date:               day.Date,
		DayOfWeek:          dow,
		Text:               day.Text(),
		IsToday:            isToday,
		IsInMonth:          day.IsInMonth(today),
		IsSingleDigit:      day.IsSingleDigit(),
		InstanceCount:      count,
		Symbol:             string(p.SymbolSet.Get(count)),
		SymbolVisible:      showSymbols,
		Slot:               style.Slot,
		TextColour:         style.TextColour,
		InstancesColour:    p.InstancesColour.ForDay(isToday, p.Theme),
		Bold:               isToday,
		TextRelativeSize:   textSize,
		SymbolRelativeSize: round3(p.SymbolSet.RelativeSize() * textSize),
		StartOfDay:         StartOfDay(day.Date, loc),
	}
	if style.Background != nil {
		r := RangeLow
		if day.IsWeekend() {
			r = RangeModerate
		}
		bg := p.Transparency.Apply(*style.Background, r)
		cell.Background = &bg
	}
	return cell
}

// Size is the widget size reported by the host.
type Size struct {
	Width       int
	Height      int
	Orientation Orientation
}

// Env wires the collaborators of a redraw.
type Env struct {
	Clock           Clock
	Source          InstanceSource
	Preferences     PreferenceReader
	Locale          *Locale
	AccentSupported bool
}

// Redraw runs one full pass: read preferences, query instances over the
// window around today and render.
func Redraw(ctx context.Context, env Env, size Size) *Widget {
	clock := env.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	now := clock.Now()
	loc := clock.Location()
	prefs := LoadPreferences(env.Preferences, env.AccentSupported)

	var instances []model.Instance
	if env.Source != nil {
		from, to := QueryWindow(Today(clock), loc)
		instances = env.Source.Instances(ctx, from, to)
	}

	w := Render(Input{
		Now:         now,
		Location:    loc,
		Locale:      env.Locale,
		Format:      ResolveFormat(size.Width, size.Height, size.Orientation),
		Preferences: prefs,
		Instances:   instances,
	})
	applog.Debug("widget rendered",
		"today", w.Today.Format("2006-01-02"),
		"format", w.Format,
		"instances", len(instances),
	)
	return w
}
