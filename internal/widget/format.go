package widget

import (
	"fmt"
	"math"
	"strings"
)

// Format is the width bucket a widget is drawn in.
type Format int

const (
	FormatStandard Format = iota
	FormatReduced
)

type formatSpec struct {
	name                     string
	minWidth                 int
	minHeight                int
	monthHeaderLabelLength   int
	dayHeaderLabelLength     int
	dayCellValueRelativeSize float64
	headerTextRelativeSize   float64
}

// Ordered by preference: the first one that fits wins.
var formatSpecs = [...]formatSpec{
	FormatStandard: {
		name:                     "STANDARD",
		minWidth:                 180,
		minHeight:                70,
		monthHeaderLabelLength:   math.MaxInt,
		dayHeaderLabelLength:     3,
		dayCellValueRelativeSize: 1.0,
		headerTextRelativeSize:   1.0,
	},
	FormatReduced: {
		name:                     "REDUCED",
		monthHeaderLabelLength:   3,
		dayHeaderLabelLength:     1,
		dayCellValueRelativeSize: 0.6,
		headerTextRelativeSize:   0.8,
	},
}

// Orientation is how the host reports the widget size. Landscape hosts
// report width and height swapped.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// ParseOrientation reads the config spelling. Anything but "landscape" is
// Portrait.
func ParseOrientation(s string) Orientation {
	if s == "landscape" || s == "LANDSCAPE" {
		return Landscape
	}
	return Portrait
}

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

func (f Format) spec() formatSpec {
	if f < 0 || int(f) >= len(formatSpecs) {
		return formatSpecs[FormatStandard]
	}
	return formatSpecs[f]
}

// ParseFormat looks a format up by name, e.g. "REDUCED".
func ParseFormat(s string) (Format, error) {
	want := strings.TrimSpace(s)
	for i, spec := range formatSpecs {
		if strings.EqualFold(spec.name, want) {
			return Format(i), nil
		}
	}
	return FormatStandard, fmt.Errorf("unknown format %q", s)
}

func (f Format) String() string { return f.spec().name }

func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FitsSize reports whether a width x height widget meets the minimum size
// of f. REDUCED has no minimum and fits everything.
func (f Format) FitsSize(width, height int) bool {
	s := f.spec()
	return s.minWidth <= width && s.minHeight <= height
}

// MonthHeaderLabel cuts a month name to the length f allows.
func (f Format) MonthHeaderLabel(v string) string { return take(v, f.spec().monthHeaderLabelLength) }

// DayHeaderLabel cuts a day abbreviation to the length f allows.
func (f Format) DayHeaderLabel(v string) string { return take(v, f.spec().dayHeaderLabelLength) }

// DayCellValueRelativeSize scales the day number text.
func (f Format) DayCellValueRelativeSize() float64 { return f.spec().dayCellValueRelativeSize }

func (f Format) HeaderTextRelativeSize() float64 { return f.spec().headerTextRelativeSize }

// ResolveFormat picks the first format that fits. Landscape widgets report
// their sizes swapped. Sizes no format accepts resolve to FormatStandard.
func ResolveFormat(width, height int, o Orientation) Format {
	if o == Landscape {
		width, height = height, width
	}
	for i := range formatSpecs {
		if f := Format(i); f.FitsSize(width, height) {
			return f
		}
	}
	return FormatStandard
}

func take(s string, n int) string {
	if n < 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
