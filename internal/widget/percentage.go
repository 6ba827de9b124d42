package widget

import (
	"errors"
	"fmt"
	"math"
)

// ErrPercentageOutOfRange is returned for values outside 0..100.
var ErrPercentageOutOfRange = errors.New("percentage out of range")

// Percentage is a slider value in 0..100.
type Percentage int

// NewPercentage validates v against 0..100.
func NewPercentage(v int) (Percentage, error) {
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: %d", ErrPercentageOutOfRange, v)
	}
	return Percentage(v), nil
}

// TransparencyRange bounds the alpha interpolation for one visual layer.
type TransparencyRange struct {
	Name     string
	MinAlpha int
	MaxAlpha int
}

var (
	RangeComplete = TransparencyRange{Name: "COMPLETE", MinAlpha: 0, MaxAlpha: 255}
	RangeModerate = TransparencyRange{Name: "MODERATE", MinAlpha: 0, MaxAlpha: 80}
	RangeLow      = TransparencyRange{Name: "LOW", MinAlpha: 0, MaxAlpha: 30}
)

// Transparency is the WIDGET_TRANSPARENCY preference. 0 is opaque and 100
// fully transparent.
type Transparency struct {
	p Percentage
}

// NewTransparency wraps NewPercentage.
func NewTransparency(v int) (Transparency, error) {
	p, err := NewPercentage(v)
	if err != nil {
		return Transparency{}, fmt.Errorf("transparency: %w", err)
	}
	return Transparency{p: p}, nil
}

// MustTransparency panics on an invalid value. Use it for constants only.
func MustTransparency(v int) Transparency {
	t, err := NewTransparency(v)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Transparency) Percentage() int { return int(t.p) }

// Alpha maps the percentage into r. 100% is MinAlpha, 0% is MaxAlpha.
// The division truncates.
func (t Transparency) Alpha(r TransparencyRange) int {
	return (r.MaxAlpha-r.MinAlpha)*(100-int(t.p))/100 + r.MinAlpha
}

// HexAlpha is Alpha as two uppercase hex digits.
func (t Transparency) HexAlpha(r TransparencyRange) string {
	return fmt.Sprintf("%02X", t.Alpha(r))
}

// Apply replaces the alpha channel of c.
func (t Transparency) Apply(c Colour, r TransparencyRange) Colour {
	return c.WithAlpha(uint8(t.Alpha(r)))
}

// TextSize is the WIDGET_TEXT_SIZE preference.
type TextSize struct {
	p Percentage
}

// NewTextSize wraps NewPercentage.
func NewTextSize(v int) (TextSize, error) {
	p, err := NewPercentage(v)
	if err != nil {
		return TextSize{}, fmt.Errorf("text size: %w", err)
	}
	return TextSize{p: p}, nil
}

// MustTextSize is NewTextSize for constants. It panics on invalid input.
func MustTextSize(v int) TextSize {
	s, err := NewTextSize(v)
	if err != nil {
		panic(err)
	}
	return s
}

func (s TextSize) Percentage() int { return int(s.p) }

// RelativeValue interpolates linearly between 0.5 and 1.8.
func (s TextSize) RelativeValue() float64 {
	return round3(0.5 + 1.3*float64(s.p)/100)
}

// round3 rounds half to even at three decimals.
func round3(v float64) float64 {
	return math.RoundToEven(v*1000) / 1000
}
