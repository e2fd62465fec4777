package render

import (
	"strings"
)

// maxParamDigits bounds SGR numeric parameters; longer runs are malformed
const maxParamDigits = 5

// parseParam converts an SGR parameter, empty means 0
func parseParam(s string) (int, bool) {
	if len(s) > maxParamDigits {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// applySGR applies a Select Graphic Rendition parameter list to a copy of pen
// The pen is only committed by the caller when the whole list is valid
func applySGR(pen Cell, params string) (Cell, bool) {
	if params == "" {
		return Cell{}, true
	}

	tokens := strings.Split(params, ";")
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// Colon sub-parameter form, e.g. 38:2::255:0:0 or 4:3
		if strings.IndexByte(tok, ':') >= 0 {
			sub := strings.Split(tok, ":")
			code, ok := parseParam(sub[0])
			if !ok {
				return pen, false
			}
			switch code {
			case 38, 48, 58:
				c, ok := extendedColorColon(sub[1:])
				if !ok {
					return pen, false
				}
				if code == 38 {
					pen.Fg = c
				} else if code == 48 {
					pen.Bg = c
				}
			case 4:
				style, ok := parseParam(sub[1])
				if !ok {
					return pen, false
				}
				if style == 0 {
					pen.Attrs &^= AttrUnderline
				} else {
					pen.Attrs |= AttrUnderline
				}
			default:
				return pen, false
			}
			continue
		}

		code, ok := parseParam(tok)
		if !ok {
			return pen, false
		}

		switch {
		case code == 0:
			pen = Cell{}
		case code == 1:
			pen.Attrs |= AttrBold
		case code == 2:
			pen.Attrs |= AttrDim
		case code == 3:
			pen.Attrs |= AttrItalic
		case code == 4 || code == 21:
			pen.Attrs |= AttrUnderline
		case code == 5 || code == 6:
			pen.Attrs |= AttrBlink
		case code == 7:
			pen.Attrs |= AttrReverse
		case code == 9:
			pen.Attrs |= AttrStrike
		case code == 22:
			pen.Attrs &^= AttrBold | AttrDim
		case code == 23:
			pen.Attrs &^= AttrItalic
		case code == 24:
			pen.Attrs &^= AttrUnderline
		case code == 25:
			pen.Attrs &^= AttrBlink
		case code == 27:
			pen.Attrs &^= AttrReverse
		case code == 29:
			pen.Attrs &^= AttrStrike
		case code >= 30 && code <= 37:
			pen.Fg = Indexed(uint8(code - 30))
		case code == 39:
			pen.Fg = DefaultColor
		case code >= 40 && code <= 47:
			pen.Bg = Indexed(uint8(code - 40))
		case code == 49:
			pen.Bg = DefaultColor
		case code >= 90 && code <= 97:
			pen.Fg = Indexed(uint8(code - 90 + 8))
		case code >= 100 && code <= 107:
			pen.Bg = Indexed(uint8(code - 100 + 8))
		case code == 38 || code == 48 || code == 58:
			c, used, ok := extendedColorSemi(tokens[i+1:])
			if !ok {
				return pen, false
			}
			i += used
			if code == 38 {
				pen.Fg = c
			} else if code == 48 {
				pen.Bg = c
			}
		default:
			// Unsupported but well-formed (hidden, fonts, overline, ...)
		}
	}
	return pen, true
}

// extendedColorSemi parses "5;n" or "2;r;g;b" following 38/48, returning tokens consumed
func extendedColorSemi(rest []string) (Color, int, bool) {
	if len(rest) == 0 {
		return DefaultColor, 0, false
	}
	mode, ok := parseParam(rest[0])
	if !ok {
		return DefaultColor, 0, false
	}
	switch mode {
	case 5:
		if len(rest) < 2 {
			return DefaultColor, 0, false
		}
		n, ok := parseParam(rest[1])
		if !ok || n > 255 {
			return DefaultColor, 0, false
		}
		return Indexed(uint8(n)), 2, true
	case 2:
		if len(rest) < 4 {
			return DefaultColor, 0, false
		}
		c, ok := rgbParams(rest[1], rest[2], rest[3])
		return c, 4, ok
	default:
		return DefaultColor, 0, false
	}
}

// extendedColorColon parses the sub-parameters after 38:/48:
// Accepts 5:n, 2:r:g:b and 2:colorspace:r:g:b
func extendedColorColon(sub []string) (Color, bool) {
	if len(sub) == 0 {
		return DefaultColor, false
	}
	mode, ok := parseParam(sub[0])
	if !ok {
		return DefaultColor, false
	}
	switch {
	case mode == 5 && len(sub) == 2:
		n, ok := parseParam(sub[1])
		if !ok || n > 255 {
			return DefaultColor, false
		}
		return Indexed(uint8(n)), true
	case mode == 2 && len(sub) == 4:
		return rgbParams(sub[1], sub[2], sub[3])
	case mode == 2 && len(sub) == 5:
		return rgbParams(sub[2], sub[3], sub[4])
	default:
		return DefaultColor, false
	}
}

// rgbParams parses three 0-255 components
func rgbParams(rs, gs, bs string) (Color, bool) {
	var v [3]uint8
	for i, s := range [3]string{rs, gs, bs} {
		n, ok := parseParam(s)
		if !ok || n > 255 {
			return DefaultColor, false
		}
		v[i] = uint8(n)
	}
	return RGB(v[0], v[1], v[2]), true
}
