package widget

// Theme is the WIDGET_THEME preference.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

var themeNames = []string{"DARK", "LIGHT"}

// ParseTheme accepts DARK or LIGHT in any case.
func ParseTheme(s string) (Theme, error) {
	i, err := parseName("theme", s, themeNames)
	return Theme(i), err
}

func (t Theme) String() string { return nameOf(int(t), themeNames) }

func (t Theme) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Theme) UnmarshalText(b []byte) error {
	v, err := ParseTheme(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CellSlot names the layout a cell is drawn with.
type CellSlot int

const (
	SlotHeader CellSlot = iota
	SlotOutOfMonth
	SlotInMonth
	SlotToday
)

var cellSlotNames = []string{"header", "out_of_month", "in_month", "today"}

func (s CellSlot) String() string { return nameOf(int(s), cellSlotNames) }

// ParseCellSlot is the inverse of CellSlot.String.
func ParseCellSlot(s string) (CellSlot, error) {
	i, err := parseName("cell slot", s, cellSlotNames)
	return CellSlot(i), err
}

func (s CellSlot) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *CellSlot) UnmarshalText(b []byte) error {
	v, err := ParseCellSlot(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CellStyle is what a theme resolves for one cell. Background is nil when
// the cell draws none.
type CellStyle struct {
	Slot       CellSlot
	TextColour Colour
	Background *Colour
}

type cellPack struct {
	slot               CellSlot
	textColour         Colour
	weekdayBackground  *Colour
	saturdayBackground *Colour
	sundayBackground   *Colour
}

func (p cellPack) get(d DayOfWeek) CellStyle {
	style := CellStyle{Slot: p.slot, TextColour: p.textColour}
	switch d {
	case Saturday:
		style.Background = p.saturdayBackground
	case Sunday:
		style.Background = p.sundayBackground
	default:
		style.Background = p.weekdayBackground
	}
	return style
}

type palette struct {
	mainBackground Colour
	mainTextColour Colour
	header         cellPack
	outOfMonth     cellPack
	thisMonth      cellPack
	today          cellPack
}

func colourRef(rgb uint32) *Colour {
	c := RGB(rgb)
	return &c
}

var palettes = [...]palette{
	ThemeDark: {
		mainBackground: RGB(0x161616),
		mainTextColour: RGB(0xFFFFFF),
		header: cellPack{
			slot:               SlotHeader,
			textColour:         RGB(0xFFFFFF),
			saturdayBackground: colourRef(0x3A3A3A),
			sundayBackground:   colourRef(0x4A4A4A),
		},
		outOfMonth: cellPack{
			slot:               SlotOutOfMonth,
			textColour:         RGB(0x8C8C8C),
			saturdayBackground: colourRef(0x222222),
			sundayBackground:   colourRef(0x2C2C2C),
		},
		thisMonth: cellPack{
			slot:               SlotInMonth,
			textColour:         RGB(0xFFFFFF),
			weekdayBackground:  colourRef(0x2A2A2A),
			saturdayBackground: colourRef(0x3A3A3A),
			sundayBackground:   colourRef(0x4A4A4A),
		},
		today: cellPack{
			slot:               SlotToday,
			textColour:         RGB(0xFFFFFF),
			weekdayBackground:  colourRef(0x1E5C66),
			saturdayBackground: colourRef(0x1E5C66),
			sundayBackground:   colourRef(0x1E5C66),
		},
	},
	ThemeLight: {
		mainBackground: RGB(0xF5F5F5),
		mainTextColour: RGB(0x222222),
		header: cellPack{
			slot:               SlotHeader,
			textColour:         RGB(0x222222),
			saturdayBackground: colourRef(0xD8D8D8),
			sundayBackground:   colourRef(0xCCCCCC),
		},
		outOfMonth: cellPack{
			slot:               SlotOutOfMonth,
			textColour:         RGB(0x8C8C8C),
			saturdayBackground: colourRef(0xEEEEEE),
			sundayBackground:   colourRef(0xE6E6E6),
		},
		thisMonth: cellPack{
			slot:               SlotInMonth,
			textColour:         RGB(0x222222),
			weekdayBackground:  colourRef(0xE4E4E4),
			saturdayBackground: colourRef(0xD8D8D8),
			sundayBackground:   colourRef(0xCCCCCC),
		},
		today: cellPack{
			slot:               SlotToday,
			textColour:         RGB(0x111111),
			weekdayBackground:  colourRef(0xBFE6EE),
			saturdayBackground: colourRef(0xBFE6EE),
			sundayBackground:   colourRef(0xBFE6EE),
		},
	},
}

func (t Theme) palette() palette {
	if t < 0 || int(t) >= len(palettes) {
		return palettes[ThemeDark]
	}
	return palettes[t]
}

// MainBackground is the widget background before transparency.
func (t Theme) MainBackground() Colour { return t.palette().mainBackground }

func (t Theme) MainTextColour() Colour { return t.palette().mainTextColour }

// CellHeader styles the day-name column for d.
func (t Theme) CellHeader(d DayOfWeek) CellStyle { return t.palette().header.get(d) }

// CellDay resolves a grid cell: today wins over in-month, which wins over
// out-of-month.
func (t Theme) CellDay(isToday, inMonth bool, d DayOfWeek) CellStyle {
	p := t.palette()
	switch {
	case isToday:
		return p.today.get(d)
	case inMonth:
		return p.thisMonth.get(d)
	default:
		return p.outOfMonth.get(d)
	}
}

// CellWeekNumber styles the week number column like an out-of-month
// weekday.
func (t Theme) CellWeekNumber() CellStyle { return t.palette().outOfMonth.get(Monday) }
