package render

import (
	"bytes"
)

// Pre-allocated ANSI fragments
var (
	csi        = []byte("\x1b[")
	csiSGR0    = []byte("\x1b[0m")
	csiClear   = []byte("\x1b[0m\x1b[2J\x1b[H")
	sgrFg256   = []byte("38;5;")
	sgrBg256   = []byte("48;5;")
	sgrFgRGB   = []byte("38;2;")
	sgrBgRGB   = []byte("48;2;")
	attrParams = [...]struct {
		attr Attr
		code byte
	}{
		{AttrBold, '1'},
		{AttrDim, '2'},
		{AttrItalic, '3'},
		{AttrUnderline, '4'},
		{AttrBlink, '5'},
		{AttrReverse, '7'},
		{AttrStrike, '9'},
	}
)

// Encoder turns write ops into terminal bytes
// Every op opens with a cursor position and a complete SGR, so no attribute state
// leaks between ops; within an op SGR is only re-emitted when the style changes
type Encoder struct {
	Mode ColorMode

	last      Cell
	lastValid bool
}

// NewEncoder creates an encoder for the given color capability
func NewEncoder(mode ColorMode) *Encoder {
	return &Encoder{Mode: mode}
}

// Encode appends the byte form of ops to w
// Each op is closed with SGR0 so no style outlives its run
func (e *Encoder) Encode(w *bytes.Buffer, ops []WriteOp) {
	for _, op := range ops {
		writeCursorPos(w, op.Col, op.Row)
		e.lastValid = false

		for _, c := range op.Cells {
			if c.IsContinuation() {
				continue
			}
			e.writeStyle(w, c)
			w.WriteString(c.Glyph)
		}
		w.Write(csiSGR0)
	}
	e.lastValid = false
}

// EncodeClear appends a full screen clear with the cursor homed
func (e *Encoder) EncodeClear(w *bytes.Buffer) {
	w.Write(csiClear)
	e.lastValid = false
}

// writeStyle emits a combined reset+attrs+fg+bg sequence when the style differs from the last cell
func (e *Encoder) writeStyle(w *bytes.Buffer, c Cell) {
	if e.lastValid && c.Fg == e.last.Fg && c.Bg == e.last.Bg && c.Attrs == e.last.Attrs {
		return
	}

	w.Write(csi)
	w.WriteByte('0')
	for _, ap := range attrParams {
		if c.Attrs&ap.attr != 0 {
			w.WriteByte(';')
			w.WriteByte(ap.code)
		}
	}
	w.WriteByte(';')
	e.writeColor(w, c.Fg, false)
	w.WriteByte(';')
	e.writeColor(w, c.Bg, true)
	w.WriteByte('m')

	e.last = c
	e.lastValid = true
}

// writeColor writes fg/bg color parameters (no CSI prefix, no 'm' suffix)
func (e *Encoder) writeColor(w *bytes.Buffer, c Color, bg bool) {
	switch c.Kind {
	case ColorDefault:
		if bg {
			w.WriteString("49")
		} else {
			w.WriteString("39")
		}

	case ColorIndexed:
		n := int(c.R)
		switch {
		case n < 8:
			base := 30
			if bg {
				base = 40
			}
			writeInt(w, base+n)
		case n < 16:
			base := 90
			if bg {
				base = 100
			}
			writeInt(w, base+n-8)
		default:
			if bg {
				w.Write(sgrBg256)
			} else {
				w.Write(sgrFg256)
			}
			writeInt(w, n)
		}

	case ColorRGB:
		if e.Mode != ColorModeTrueColor {
			if bg {
				w.Write(sgrBg256)
			} else {
				w.Write(sgrFg256)
			}
			writeInt(w, int(RGBTo256(c.R, c.G, c.B)))
			return
		}
		if bg {
			w.Write(sgrBgRGB)
		} else {
			w.Write(sgrFgRGB)
		}
		writeInt(w, int(c.R))
		w.WriteByte(';')
		writeInt(w, int(c.G))
		w.WriteByte(';')
		writeInt(w, int(c.B))
	}
}

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bytes.Buffer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	w.Write(buf[i:])
}

// writeCursorPos writes cursor positioning sequence (0-indexed input)
func writeCursorPos(w *bytes.Buffer, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}
