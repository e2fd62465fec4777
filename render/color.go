package render

import (
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
)

// ColorKind distinguishes how a Color is resolved by the terminal
type ColorKind uint8

const (
	ColorDefault ColorKind = iota // Terminal default fg/bg (zero value)
	ColorIndexed                  // xterm palette index stored in R
	ColorRGB                      // 24-bit color
)

// Color is a comparable terminal color; the zero value is the terminal default
type Color struct {
	Kind    ColorKind
	R, G, B uint8
}

// DefaultColor is the terminal's own foreground/background
var DefaultColor = Color{}

// Indexed returns a palette color (0-255)
func Indexed(n uint8) Color {
	return Color{Kind: ColorIndexed, R: n}
}

// RGB returns a 24-bit color
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// IsDefault reports whether the color defers to the terminal default
func (c Color) IsDefault() bool {
	return c.Kind == ColorDefault
}

// Index returns the palette index of an indexed color
func (c Color) Index() uint8 {
	return c.R
}

// RGB resolves the color to 24-bit components
// Indexed colors resolve through the xterm palette, default resolves to ok=false
func (c Color) RGB() (r, g, b uint8, ok bool) {
	switch c.Kind {
	case ColorRGB:
		return c.R, c.G, c.B, true
	case ColorIndexed:
		pr, pg, pb := tcell.PaletteColor(int(c.R)).RGB()
		return uint8(pr), uint8(pg), uint8(pb), true
	default:
		return 0, 0, 0, false
	}
}

// String renders the color in the form accepted by ParseColor
func (c Color) String() string {
	switch c.Kind {
	case ColorIndexed:
		return strconv.Itoa(int(c.R))
	case ColorRGB:
		const hex = "0123456789abcdef"
		b := []byte{'#', 0, 0, 0, 0, 0, 0}
		for i, v := range [3]uint8{c.R, c.G, c.B} {
			b[1+i*2] = hex[v>>4]
			b[2+i*2] = hex[v&0x0f]
		}
		return string(b)
	default:
		return "default"
	}
}

// ParseColor accepts "default", a palette index "0".."255", "#rrggbb", or a color name
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "default" || s == "reset" {
		return DefaultColor, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return DefaultColor, false
		}
		return Indexed(uint8(n)), true
	}

	tc := tcell.GetColor(s)
	if tc == tcell.ColorDefault || !tc.Valid() {
		return DefaultColor, false
	}
	r, g, b := tc.RGB()
	if r < 0 {
		return DefaultColor, false
	}
	return RGB(uint8(r), uint8(g), uint8(b)), true
}

// ColorMode indicates terminal color capability
type ColorMode uint8

const (
	ColorMode256       ColorMode = iota // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
)

// String returns the config spelling of the mode
func (m ColorMode) String() string {
	if m == ColorModeTrueColor {
		return "truecolor"
	}
	return "256"
}

// DetectColorMode determines terminal color capability from environment
func DetectColorMode() ColorMode {
	if termenv.EnvColorProfile() == termenv.TrueColor {
		return ColorModeTrueColor
	}

	// Terminals known to support truecolor without advertising COLORTERM
	if os.Getenv("KITTY_WINDOW_ID") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("ALACRITTY_WINDOW_ID") != "" ||
		os.Getenv("WEZTERM_PANE") != "" {
		return ColorModeTrueColor
	}

	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "truecolor") ||
		strings.Contains(term, "24bit") ||
		strings.Contains(term, "direct") {
		return ColorModeTrueColor
	}

	return ColorMode256
}

// Color cube levels for palette indices 16-231
var cubeValues = [6]uint8{0, 95, 135, 175, 215, 255}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// cubeIndex maps a channel value to the nearest cube level
func cubeIndex(v uint8) int {
	best := 0
	bestDist := abs(int(v) - int(cubeValues[0]))
	for j := 1; j < 6; j++ {
		if d := abs(int(v) - int(cubeValues[j])); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

// RGBTo256 finds the nearest 256-color palette index for an RGB value
func RGBTo256(r, g, b uint8) uint8 {
	cr, cg, cb := cubeIndex(r), cubeIndex(g), cubeIndex(b)

	gray := (int(r) + int(g) + int(b)) / 3
	maxDiff := max(abs(int(r)-gray), abs(int(g)-gray), abs(int(b)-gray))
	if maxDiff < 10 {
		if gray < 4 {
			return 16
		}
		if gray > 243 {
			return 231
		}
		grayIdx := 232 + (gray-8)/10
		if grayIdx > 255 {
			grayIdx = 255
		}
		grayLevel := 8 + (grayIdx-232)*10
		grayDist := abs(int(r)-grayLevel) + abs(int(g)-grayLevel) + abs(int(b)-grayLevel)
		cubeDist := abs(int(r)-int(cubeValues[cr])) +
			abs(int(g)-int(cubeValues[cg])) +
			abs(int(b)-int(cubeValues[cb]))
		if grayDist < cubeDist {
			return uint8(grayIdx)
		}
	}

	return uint8(16 + 36*cr + 6*cg + cb)
}
