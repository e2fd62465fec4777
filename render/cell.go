package render

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrBlink     Attr = 1 << 4
	AttrReverse   Attr = 1 << 5
	AttrStrike    Attr = 1 << 6
)

// Continuation is the glyph held by the right half of a wide cluster
// The encoder never emits it; the terminal advances past it when drawing the left half
const Continuation = "\x00"

// Cell is one terminal character position's full visual state
// Glyph is a complete grapheme cluster and is never empty
type Cell struct {
	Glyph string
	Fg    Color
	Bg    Color
	Attrs Attr
}

// Blank is the default empty cell
var Blank = Cell{Glyph: " "}

// IsContinuation reports whether the cell is the right half of a wide glyph
func (c Cell) IsContinuation() bool {
	return c.Glyph == Continuation
}

// blankWithBg returns a padding cell carrying only the background style
func blankWithBg(bg Color) Cell {
	return Cell{Glyph: " ", Bg: bg}
}
