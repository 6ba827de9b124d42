package term

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mincal/internal/widget"
)

const cellWidth = 4

// Renderer draws a widget as coloured text for -once runs.
type Renderer struct {
	lg *lipgloss.Renderer
}

// NewRenderer detects the colour profile of out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{lg: lipgloss.NewRenderer(out)}
}

// Render lays the widget out as a header line, the day names and six
// weeks. Translucent colours are composited over the widget background,
// and the background over black.
func (r *Renderer) Render(w *widget.Widget) string {
	base := blend(w.Background, widget.RGB(0x000000))
	frame := r.lg.NewStyle().
		Background(lipgloss.Color(base.RGBHex())).
		Padding(0, 1)

	weekCol := len(w.WeekNumbers) > 0
	var lines []string

	header := r.lg.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(w.Header.TextColour.RGBHex())).
		Render(w.Header.Month + " " + w.Header.Year)
	lines = append(lines, header)

	var days []string
	if weekCol {
		days = append(days, r.cell("", nil, base, false))
	}
	for _, d := range w.DaysHeader {
		days = append(days, r.cell(d.Label, &d.TextColour, layer(d.Background, base), false))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, days...))

	for i, row := range w.Rows() {
		var cells []string
		if weekCol && i < len(w.WeekNumbers) {
			wn := w.WeekNumbers[i]
			cells = append(cells, r.cell(strconv.Itoa(wn.Week), &wn.TextColour, base, false))
		}
		for _, c := range row {
			bg := lipgloss.Color(layer(c.Background, base).RGBHex())
			content := r.lg.NewStyle().
				Foreground(lipgloss.Color(c.TextColour.RGBHex())).
				Background(bg).
				Bold(c.Bold).
				Render(c.Text)
			if c.SymbolVisible {
				content += r.lg.NewStyle().
					Foreground(lipgloss.Color(c.InstancesColour.RGBHex())).
					Background(bg).
					Render(c.Symbol)
			}
			cells = append(cells, r.lg.NewStyle().Width(cellWidth).Background(bg).Render(content))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return frame.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) cell(text string, fg *widget.Colour, bg widget.Colour, bold bool) string {
	s := r.lg.NewStyle().Width(cellWidth).Bold(bold).Background(lipgloss.Color(bg.RGBHex()))
	if fg != nil {
		s = s.Foreground(lipgloss.Color(fg.RGBHex()))
	}
	return s.Render(text)
}

// layer composites an optional translucent background over base.
func layer(c *widget.Colour, base widget.Colour) widget.Colour {
	if c == nil {
		return base
	}
	return blend(*c, base)
}

// blend composites c over an opaque base.
func blend(c, base widget.Colour) widget.Colour {
	a := uint32(c.Alpha())
	mix := func(shift uint) uint32 {
		fg := (uint32(c) >> shift) & 0xFF
		bg := (uint32(base) >> shift) & 0xFF
		return (fg*a + bg*(255-a)) / 255
	}
	return widget.RGB(mix(16)<<16 | mix(8)<<8 | mix(0))
}

// Summary is a one-line description for logs and -once output.
func Summary(w *widget.Widget) string {
	busy := 0
	for _, c := range w.Cells {
		if c.InstanceCount > 0 {
			busy++
		}
	}
	return fmt.Sprintf("%s, %s, %d of %d days with instances", w.Header.Text, w.Format, busy, len(w.Cells))
}
