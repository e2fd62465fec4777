package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// RasterStatus tags how a frame was rasterized
type RasterStatus uint8

const (
	// RasterOK means every escape sequence was understood or deliberately ignored
	RasterOK RasterStatus = iota
	// RasterFallback means at least one malformed sequence was drawn as literal text
	RasterFallback
)

// String returns the status name
func (s RasterStatus) String() string {
	if s == RasterFallback {
		return "fallback"
	}
	return "ok"
}

// RasterResult is the tagged outcome of Rasterize; the grid is always complete
type RasterResult struct {
	Grid      *Grid
	Status    RasterStatus
	Malformed int // Count of sequences rendered literally
	Truncated int // Count of lines cut at the right edge
}

// RasterOptions tunes width measurement
type RasterOptions struct {
	// AmbiguousWide treats East Asian ambiguous-width runes as two cells
	AmbiguousWide bool
}

// Literal stand-ins for bytes that must never reach the terminal raw
const (
	escapePicture = "␛" // ␛
	deletePicture = "␡" // ␡
	tabWidth      = 8
)

// rasterizer carries the pen state across lines, like a terminal would
type rasterizer struct {
	grid *Grid
	cond *runewidth.Condition
	pen  Cell

	row, col  int
	full      bool
	fullBg    Color // Pen background when the row filled up
	malformed int
	truncated int
}

// Rasterize converts a styled text frame into a grid of rows x cols cells
// Source lines beyond rows are ignored, missing rows stay blank, short lines are padded
// with the current background, long lines are cut at a grapheme cluster boundary
func Rasterize(text string, rows, cols int, opts RasterOptions) RasterResult {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = opts.AmbiguousWide

	rz := &rasterizer{
		grid: NewGrid(rows, cols),
		cond: cond,
	}

	for rz.row < rows {
		line, rest, more := strings.Cut(text, "\n")
		line = strings.TrimSuffix(line, "\r")
		rz.drawLine(line)
		rz.row++
		if !more {
			break
		}
		text = rest
	}

	status := RasterOK
	if rz.malformed > 0 {
		status = RasterFallback
	}
	return RasterResult{
		Grid:      rz.grid,
		Status:    status,
		Malformed: rz.malformed,
		Truncated: rz.truncated,
	}
}

// drawLine walks one source line and pads the remainder of the row
func (rz *rasterizer) drawLine(line string) {
	rz.col = 0
	rz.full = false
	state := -1

	for len(line) > 0 {
		b := line[0]
		switch {
		case b == 0x1b:
			n, ok := rz.escape(line)
			if !ok {
				rz.malformed++
				rz.put(escapePicture, 1)
				n = 1
			}
			line = line[n:]
			state = -1

		case b == '\t':
			next := (rz.col/tabWidth + 1) * tabWidth
			for rz.col < next && !rz.full {
				rz.put(" ", 1)
			}
			line = line[1:]
			state = -1

		case b < 0x20:
			rz.put(string(rune(0x2400+int(b))), 1)
			line = line[1:]
			state = -1

		case b == 0x7f:
			rz.put(deletePicture, 1)
			line = line[1:]
			state = -1

		default:
			var cluster string
			cluster, line, _, state = uniseg.FirstGraphemeClusterInString(line, state)
			rz.put(cluster, rz.cond.StringWidth(cluster))
		}
	}

	if rz.full {
		rz.truncated++
	}

	row := rz.grid.Row(rz.row)
	bg := rz.pen.Bg
	if rz.full {
		bg = rz.fullBg
	}
	pad := blankWithBg(bg)
	for c := rz.col; c < len(row); c++ {
		row[c] = pad
	}
}

// put places a cluster of the given display width at the pen position
func (rz *rasterizer) put(glyph string, width int) {
	if rz.full {
		return
	}
	row := rz.grid.Row(rz.row)

	if width <= 0 {
		// Zero-width cluster joins the preceding glyph
		if rz.col == 0 {
			return
		}
		prev := rz.col - 1
		if row[prev].IsContinuation() && prev > 0 {
			prev--
		}
		row[prev].Glyph += glyph
		return
	}
	if width > 2 {
		width = 2
	}
	if rz.col+width > len(row) {
		rz.full = true
		rz.fullBg = rz.pen.Bg
		return
	}

	cell := Cell{Glyph: glyph, Fg: rz.pen.Fg, Bg: rz.pen.Bg, Attrs: rz.pen.Attrs}
	row[rz.col] = cell
	if width == 2 {
		cell.Glyph = Continuation
		row[rz.col+1] = cell
	}
	rz.col += width
}

// escape consumes one escape sequence starting at s[0] == ESC
// Returns ok=false for malformed input, which the caller renders literally
func (rz *rasterizer) escape(s string) (int, bool) {
	if len(s) < 2 {
		return 0, false
	}

	switch intro := s[1]; {
	case intro == '[':
		return rz.csi(s)

	case intro == ']':
		// OSC, terminated by BEL or ST
		for i := 2; i < len(s); i++ {
			switch s[i] {
			case 0x07:
				return i + 1, true
			case 0x1b:
				if i+1 < len(s) && s[i+1] == '\\' {
					return i + 2, true
				}
				return 0, false
			}
		}
		return 0, false

	case intro == 'P' || intro == 'X' || intro == '^' || intro == '_':
		// DCS, SOS, PM, APC strings, terminated by ST
		if i := strings.Index(s[2:], "\x1b\\"); i >= 0 {
			return i + 4, true
		}
		return 0, false

	case intro >= 0x20 && intro <= 0x2f:
		// nF: intermediates followed by a final byte
		for i := 2; i < len(s); i++ {
			switch c := s[i]; {
			case c >= 0x20 && c <= 0x2f:
				continue
			case c >= 0x30 && c <= 0x7e:
				return i + 1, true
			default:
				return 0, false
			}
		}
		return 0, false

	case intro >= 0x30 && intro <= 0x7e:
		// Two byte sequences (DECSC, RIS, keypad modes): no visual effect on a frame
		return 2, true

	default:
		return 0, false
	}
}

// csi consumes a control sequence, applying it when it is SGR
func (rz *rasterizer) csi(s string) (int, bool) {
	i := 2
	for i < len(s) && s[i] >= 0x30 && s[i] <= 0x3f {
		i++
	}
	paramEnd := i
	for i < len(s) && s[i] >= 0x20 && s[i] <= 0x2f {
		i++
	}
	if i >= len(s) || s[i] < 0x40 || s[i] > 0x7e {
		return 0, false
	}
	final := s[i]
	params := s[2:paramEnd]
	n := i + 1

	if final != 'm' || paramEnd != i {
		// Non-SGR sequences carry no cell state
		return n, true
	}
	if params != "" && params[0] >= 0x3c {
		// Private SGR variants (e.g. "\x1b[>4;2m") are ignored
		return n, true
	}

	pen, ok := applySGR(rz.pen, params)
	if !ok {
		return 0, false
	}
	rz.pen = pen
	return n, true
}
