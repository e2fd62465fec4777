package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowText(g *Grid, r int) string {
	s := ""
	for _, c := range g.Row(r) {
		if c.IsContinuation() {
			continue
		}
		s += c.Glyph
	}
	return s
}

func TestRasterize_PlainText(t *testing.T) {
	res := Rasterize("abc", 3, 10, RasterOptions{})
	require.Equal(t, RasterOK, res.Status)
	g := res.Grid
	require.Equal(t, 3, g.Rows())
	require.Equal(t, 10, g.Cols())

	assert.Equal(t, "abc       ", rowText(g, 0))
	assert.Equal(t, Cell{Glyph: "a"}, g.At(0, 0))
	for r := 1; r < 3; r++ {
		for c := 0; c < 10; c++ {
			assert.Equal(t, Blank, g.At(r, c), "missing rows must be default blanks")
		}
	}
}

func TestRasterize_SGR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Cell
	}{
		{"bold red", "\x1b[1;31mA", Cell{Glyph: "A", Fg: Indexed(1), Attrs: AttrBold}},
		{"bright bg", "\x1b[102mA", Cell{Glyph: "A", Bg: Indexed(10)}},
		{"palette", "\x1b[38;5;208mA", Cell{Glyph: "A", Fg: Indexed(208)}},
		{"truecolor", "\x1b[48;2;1;2;3mA", Cell{Glyph: "A", Bg: RGB(1, 2, 3)}},
		{"truecolor colon", "\x1b[38:2::10:20:30mA", Cell{Glyph: "A", Fg: RGB(10, 20, 30)}},
		{"reset", "\x1b[1;4;7m\x1b[0mA", Cell{Glyph: "A"}},
		{"empty reset", "\x1b[31m\x1b[mA", Cell{Glyph: "A"}},
		{"partial reset", "\x1b[1;2;4m\x1b[22mA", Cell{Glyph: "A", Attrs: AttrUnderline}},
		{"reverse dim", "\x1b[2;7mA", Cell{Glyph: "A", Attrs: AttrDim | AttrReverse}},
		{"default fg", "\x1b[31;39mA", Cell{Glyph: "A"}},
		{"unknown code ignored", "\x1b[53mA", Cell{Glyph: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Rasterize(tt.input, 1, 4, RasterOptions{})
			assert.Equal(t, RasterOK, res.Status)
			assert.Equal(t, tt.want, res.Grid.At(0, 0))
		})
	}
}

func TestRasterize_BackgroundPadding(t *testing.T) {
	res := Rasterize("\x1b[44mhi\nx", 3, 5, RasterOptions{})
	g := res.Grid

	for c := 2; c < 5; c++ {
		assert.Equal(t, Cell{Glyph: " ", Bg: Indexed(4)}, g.At(0, c), "col %d", c)
	}
	// Pen state persists across lines
	assert.Equal(t, Cell{Glyph: "x", Bg: Indexed(4)}, g.At(1, 0))
	assert.Equal(t, Indexed(4), g.At(1, 4).Bg)
	// Rows with no source text are default blanks
	assert.Equal(t, Blank, g.At(2, 0))
}

func TestRasterize_Boundary(t *testing.T) {
	exact := Rasterize("abcde", 1, 5, RasterOptions{})
	assert.Equal(t, 0, exact.Truncated)
	assert.Equal(t, "abcde", rowText(exact.Grid, 0))

	over := Rasterize("abcdef", 1, 5, RasterOptions{})
	assert.Equal(t, 1, over.Truncated)
	assert.Equal(t, "abcde", rowText(over.Grid, 0))
}

func TestRasterize_TruncateAtClusterBoundary(t *testing.T) {
	// e + combining acute is one cluster of two code points
	res := Rasterize("abe\u0301", 1, 2, RasterOptions{})
	assert.Equal(t, "ab", rowText(res.Grid, 0))
	assert.Equal(t, 1, res.Truncated)

	res = Rasterize("abe\u0301", 1, 3, RasterOptions{})
	assert.Equal(t, "e\u0301", res.Grid.At(0, 2).Glyph)
	assert.Equal(t, 0, res.Truncated)
}

func TestRasterize_TruncatedPadKeepsCutBackground(t *testing.T) {
	// 日 does not fit the last column; the SGR after the cut must not recolor the pad
	g := Rasterize("\x1b[44mabc日\x1b[41mxyz\nq", 2, 4, RasterOptions{}).Grid

	assert.Equal(t, Cell{Glyph: "c", Bg: Indexed(4)}, g.At(0, 2))
	assert.Equal(t, Cell{Glyph: " ", Bg: Indexed(4)}, g.At(0, 3))

	// Pen state still carries to the next line
	assert.Equal(t, Cell{Glyph: "q", Bg: Indexed(1)}, g.At(1, 0))
}

func TestRasterize_WideGlyphs(t *testing.T) {
	res := Rasterize("日本", 1, 4, RasterOptions{})
	g := res.Grid
	assert.Equal(t, "日", g.At(0, 0).Glyph)
	assert.True(t, g.At(0, 1).IsContinuation())
	assert.Equal(t, "本", g.At(0, 2).Glyph)
	assert.True(t, g.At(0, 3).IsContinuation())

	// Second wide glyph does not fit in the last column and is dropped whole
	res = Rasterize("日本", 1, 3, RasterOptions{})
	g = res.Grid
	assert.Equal(t, "日", g.At(0, 0).Glyph)
	assert.True(t, g.At(0, 1).IsContinuation())
	assert.Equal(t, " ", g.At(0, 2).Glyph)
	assert.Equal(t, 1, res.Truncated)
}

func TestRasterize_ContinuationCarriesStyle(t *testing.T) {
	res := Rasterize("\x1b[41m日", 1, 2, RasterOptions{})
	assert.Equal(t, Indexed(1), res.Grid.At(0, 0).Bg)
	assert.Equal(t, Cell{Glyph: Continuation, Bg: Indexed(1)}, res.Grid.At(0, 1))
}

func TestRasterize_MalformedFallsBackToLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"oversized param", "a\x1b[1234567mb", "a␛[1234567mb"},
		{"bad colon form", "\x1b[38:9mz", "␛[38:9mz"},
		{"unterminated csi", "a\x1b[", "a␛["},
		{"lone escape", "a\x1b", "a␛"},
		{"color out of range", "\x1b[38;5;300mz", "␛[38;5;300mz"},
		{"truncated rgb", "\x1b[38;2;1;2mz", "␛[38;2;1;2mz"},
		{"unterminated osc", "\x1b]0;title", "␛]0;title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Rasterize(tt.input, 1, 20, RasterOptions{})
			assert.Equal(t, RasterFallback, res.Status)
			assert.Equal(t, 1, res.Malformed)
			assert.True(t, strings.HasPrefix(rowText(res.Grid, 0), tt.want), rowText(res.Grid, 0))
		})
	}
}

func TestRasterize_IgnoredSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"erase line", "a\x1b[2Kb"},
		{"cursor move", "a\x1b[10;4Hb"},
		{"private mode", "a\x1b[?25lb"},
		{"osc hyperlink", "\x1b]8;;http://example.com\x1b\\a\x1b]8;;\x1b\\b"},
		{"osc bel", "a\x1b]2;title\x07b"},
		{"charset", "a\x1b(Bb"},
		{"keypad", "a\x1b=b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Rasterize(tt.input, 1, 4, RasterOptions{})
			assert.Equal(t, RasterOK, res.Status)
			assert.Equal(t, "ab  ", rowText(res.Grid, 0))
		})
	}
}

func TestRasterize_ExtraRowsIgnored(t *testing.T) {
	res := Rasterize("a\nb\nc\nd", 2, 3, RasterOptions{})
	require.Equal(t, 2, res.Grid.Rows())
	assert.Equal(t, "a  ", rowText(res.Grid, 0))
	assert.Equal(t, "b  ", rowText(res.Grid, 1))
}

func TestRasterize_ControlCharacters(t *testing.T) {
	res := Rasterize("a\tb", 1, 10, RasterOptions{})
	assert.Equal(t, "a", res.Grid.At(0, 0).Glyph)
	assert.Equal(t, "b", res.Grid.At(0, 8).Glyph)

	res = Rasterize("\x01\x7f", 1, 3, RasterOptions{})
	assert.Equal(t, "␁", res.Grid.At(0, 0).Glyph)
	assert.Equal(t, "␡", res.Grid.At(0, 1).Glyph)

	res = Rasterize("ab\r\ncd", 2, 2, RasterOptions{})
	assert.Equal(t, "ab", rowText(res.Grid, 0))
	assert.Equal(t, "cd", rowText(res.Grid, 1))
}

func TestRasterize_EmptyGrid(t *testing.T) {
	res := Rasterize("abc", 0, 0, RasterOptions{})
	assert.Equal(t, 0, res.Grid.Len())
}
