package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encode(mode ColorMode, ops ...WriteOp) string {
	var buf bytes.Buffer
	NewEncoder(mode).Encode(&buf, ops)
	return buf.String()
}

func TestEncoder_PlainCell(t *testing.T) {
	out := encode(ColorModeTrueColor, WriteOp{Row: 2, Col: 4, Cells: []Cell{{Glyph: "a"}}})
	assert.Equal(t, "\x1b[3;5H\x1b[0;39;49ma\x1b[0m", out)
}

func TestEncoder_Colors(t *testing.T) {
	tests := []struct {
		name string
		mode ColorMode
		cell Cell
		sgr  string
	}{
		{"basic", ColorModeTrueColor, Cell{Glyph: "x", Fg: Indexed(1), Attrs: AttrBold}, "\x1b[0;1;31;49m"},
		{"bright", ColorModeTrueColor, Cell{Glyph: "x", Fg: Indexed(9), Bg: Indexed(12)}, "\x1b[0;91;104m"},
		{"palette", ColorModeTrueColor, Cell{Glyph: "x", Fg: Indexed(200)}, "\x1b[0;38;5;200;49m"},
		{"truecolor", ColorModeTrueColor, Cell{Glyph: "x", Bg: RGB(1, 2, 3)}, "\x1b[0;39;48;2;1;2;3m"},
		{"downgrade", ColorMode256, Cell{Glyph: "x", Bg: RGB(255, 0, 0)}, "\x1b[0;39;48;5;196m"},
		{"attrs", ColorModeTrueColor, Cell{Glyph: "x", Attrs: AttrItalic | AttrUnderline | AttrStrike}, "\x1b[0;3;4;9;39;49m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := encode(tt.mode, WriteOp{Cells: []Cell{tt.cell}})
			assert.Equal(t, "\x1b[1;1H"+tt.sgr+"x\x1b[0m", out)
		})
	}
}

func TestEncoder_CoalescesStyleWithinOp(t *testing.T) {
	cells := []Cell{{Glyph: "a", Fg: Indexed(1)}, {Glyph: "b", Fg: Indexed(1)}, {Glyph: "c"}}

	out := encode(ColorModeTrueColor, WriteOp{Cells: cells})
	assert.Equal(t, "\x1b[1;1H\x1b[0;31;49mab\x1b[0;39;49mc\x1b[0m", out)
}

func TestEncoder_EveryOpStartsWithFullStyle(t *testing.T) {
	cell := []Cell{{Glyph: "a", Attrs: AttrBold}}
	out := encode(ColorModeTrueColor,
		WriteOp{Row: 0, Col: 0, Cells: cell},
		WriteOp{Row: 1, Col: 5, Cells: cell},
	)
	assert.Equal(t, 2, strings.Count(out, "\x1b[0;1;39;49m"))
	assert.Contains(t, out, "\x1b[2;6H")
	assert.Equal(t, "\x1b[1;1H\x1b[0;1;39;49ma\x1b[0m\x1b[2;6H\x1b[0;1;39;49ma\x1b[0m", out)
}

func TestEncoder_SkipsContinuation(t *testing.T) {
	g := Rasterize("日x", 1, 3, RasterOptions{}).Grid
	out := encode(ColorModeTrueColor, FullRepaint(g)...)
	assert.Equal(t, "\x1b[1;1H\x1b[0;39;49m日x\x1b[0m", out)
	assert.NotContains(t, out, Continuation)
}

func TestEncoder_EmptyAndClear(t *testing.T) {
	assert.Empty(t, encode(ColorModeTrueColor))

	var buf bytes.Buffer
	NewEncoder(ColorMode256).EncodeClear(&buf)
	assert.Equal(t, "\x1b[0m\x1b[2J\x1b[H", buf.String())
}

func TestRGBTo256(t *testing.T) {
	assert.Equal(t, uint8(16), RGBTo256(0, 0, 0))
	assert.Equal(t, uint8(231), RGBTo256(255, 255, 255))
	assert.Equal(t, uint8(196), RGBTo256(255, 0, 0))
	assert.Equal(t, uint8(21), RGBTo256(0, 0, 255))
	assert.Equal(t, uint8(244), RGBTo256(128, 128, 128))
}
