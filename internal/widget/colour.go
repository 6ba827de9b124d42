package widget

import (
	"fmt"
	"strconv"
	"strings"
)

// Colour is a 0xAARRGGBB value.
type Colour uint32

// RGB returns an opaque colour from 0xRRGGBB.
func RGB(rgb uint32) Colour {
	return Colour(0xFF000000 | rgb&0x00FFFFFF)
}

// ParseColour reads "#RRGGBB" (opaque) or "#AARRGGBB". The leading "#" is
// optional.
func ParseColour(s string) (Colour, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse colour %q: %w", s, err)
	}
	switch len(hex) {
	case 6:
		return RGB(uint32(v)), nil
	case 8:
		return Colour(v), nil
	default:
		return 0, fmt.Errorf("parse colour %q: want #RRGGBB or #AARRGGBB", s)
	}
}

// Alpha is the top byte, 0 transparent and 255 opaque.
func (c Colour) Alpha() uint8 { return uint8(c >> 24) }

// WithAlpha keeps the RGB channels of c and replaces its alpha.
func (c Colour) WithAlpha(a uint8) Colour {
	return Colour(uint32(a)<<24 | uint32(c)&0x00FFFFFF)
}

// String is "#AARRGGBB".
func (c Colour) String() string { return fmt.Sprintf("#%08X", uint32(c)) }

// RGBHex is "#RRGGBB", dropping alpha.
func (c Colour) RGBHex() string { return fmt.Sprintf("#%06X", uint32(c)&0x00FFFFFF) }

func (c Colour) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Colour) UnmarshalText(b []byte) error {
	v, err := ParseColour(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// InstancesColour is the user's choice of colour for instance symbols.
type InstancesColour int

const (
	ColourSystemAccent InstancesColour = iota
	ColourCyan
	ColourMint
	ColourBlue
	ColourGreen
	ColourYellow
	ColourBlack
	ColourWhite
)

var instancesColourNames = []string{"SYSTEM_ACCENT", "CYAN", "MINT", "BLUE", "GREEN", "YELLOW", "BLACK", "WHITE"}

var (
	TodayInstancesColour = RGB(0xF5F5F5)

	accentLight = RGB(0xA8C7FA)
	accentDark  = RGB(0x0B57D0)
)

var fixedInstancesColours = map[InstancesColour]Colour{
	ColourCyan:   RGB(0x2FD1E2),
	ColourMint:   RGB(0x3EB489),
	ColourBlue:   RGB(0x448AFF),
	ColourGreen:  RGB(0x4CAF50),
	ColourYellow: RGB(0xFFD600),
	ColourBlack:  RGB(0x000000),
	ColourWhite:  RGB(0xFFFFFF),
}

// ParseInstancesColour accepts the INSTANCES_COLOUR preference values.
// Availability on the host is checked separately by Available.
func ParseInstancesColour(s string) (InstancesColour, error) {
	i, err := parseName("instances colour", s, instancesColourNames)
	return InstancesColour(i), err
}

func (c InstancesColour) String() string { return nameOf(int(c), instancesColourNames) }

func (c InstancesColour) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *InstancesColour) UnmarshalText(b []byte) error {
	v, err := ParseInstancesColour(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Available reports whether the colour can be offered. The system accent
// needs platform support.
func (c InstancesColour) Available(accentSupported bool) bool {
	if c == ColourSystemAccent {
		return accentSupported
	}
	return c >= 0 && int(c) < len(instancesColourNames)
}

// AvailableInstancesColours lists what Available allows, in order.
func AvailableInstancesColours(accentSupported bool) []InstancesColour {
	var out []InstancesColour
	for i := range instancesColourNames {
		if c := InstancesColour(i); c.Available(accentSupported) {
			out = append(out, c)
		}
	}
	return out
}

// Value resolves the colour against theme. The system accent inverts the
// theme so it keeps contrast.
func (c InstancesColour) Value(theme Theme) Colour {
	if c == ColourSystemAccent {
		if theme == ThemeLight {
			return accentDark
		}
		return accentLight
	}
	if v, ok := fixedInstancesColours[c]; ok {
		return v
	}
	return fixedInstancesColours[ColourCyan]
}

// ForDay is the symbol colour of one cell.
func (c InstancesColour) ForDay(isToday bool, theme Theme) Colour {
	if isToday {
		return TodayInstancesColour
	}
	return c.Value(theme)
}
