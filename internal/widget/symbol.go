package widget

// SymbolSet is the glyph table used to show how many instances a day has.
type SymbolSet int

const (
	SymbolSetMinimal SymbolSet = iota
	SymbolSetVertical
	SymbolSetCircles
	SymbolSetNumbers
	SymbolSetRoman
	SymbolSetBinary
	SymbolSetNone
)

var symbolSetNames = []string{"MINIMAL", "VERTICAL", "CIRCLES", "NUMBERS", "ROMAN", "BINARY", "NONE"}

type symbolTable struct {
	relativeSize float64
	glyphs       []rune
}

var symbolTables = [...]symbolTable{
	SymbolSetMinimal:  {1.0, []rune("·∶∴∷◇◈")},
	SymbolSetVertical: {1.0, []rune("·∶⁝⁞|")},
	SymbolSetCircles:  {1.0, []rune("◔◑◕●๑")},
	SymbolSetNumbers:  {0.6, []rune("123456789+")},
	SymbolSetRoman:    {0.6, []rune("ⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩ∾")},
	SymbolSetBinary:   {0.8, []rune("☱☲☳☴☵☶☷※")},
	SymbolSetNone:     {1.0, []rune(" ")},
}

// ParseSymbolSet accepts the INSTANCES_SYMBOL_SET preference values.
func ParseSymbolSet(s string) (SymbolSet, error) {
	i, err := parseName("symbol set", s, symbolSetNames)
	return SymbolSet(i), err
}

func (s SymbolSet) String() string { return nameOf(int(s), symbolSetNames) }

func (s SymbolSet) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SymbolSet) UnmarshalText(b []byte) error {
	v, err := ParseSymbolSet(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s SymbolSet) table() symbolTable {
	if s < 0 || int(s) >= len(symbolTables) {
		return symbolTables[SymbolSetMinimal]
	}
	return symbolTables[s]
}

// RelativeSize scales the glyphs against the day number text.
func (s SymbolSet) RelativeSize() float64 { return s.table().relativeSize }

// Get returns the glyph for n instances. Zero is a blank and anything past
// the table saturates on its last glyph.
func (s SymbolSet) Get(n int) rune {
	glyphs := s.table().glyphs
	switch {
	case n <= 0:
		return ' '
	case n < len(glyphs):
		return glyphs[n-1]
	default:
		return glyphs[len(glyphs)-1]
	}
}

// Len is the number of glyphs in the table.
func (s SymbolSet) Len() int { return len(s.table().glyphs) }
