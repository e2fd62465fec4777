package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// OverlayStats is the measured state drawn by the instrumentation overlay
type OverlayStats struct {
	FPS       float64
	TPS       float64
	TargetFPS int
	TargetTPS int
}

// Overlay draws measured frame and tick rates into the top-right corner
type Overlay struct {
	healthy colorful.Color
	starved colorful.Color
	bg      Color
}

// NewOverlay creates an overlay with green-to-red load coloring
func NewOverlay() *Overlay {
	return &Overlay{
		healthy: colorful.Color{R: 0.35, G: 0.85, B: 0.45},
		starved: colorful.Color{R: 0.95, G: 0.25, B: 0.25},
		bg:      Indexed(236),
	}
}

// SetColors replaces the healthy foreground and the background
// A default color keeps the built-in one
func (o *Overlay) SetColors(fg, bg Color) {
	if r, g, b, ok := fg.RGB(); ok {
		o.healthy = colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	}
	if !bg.IsDefault() {
		o.bg = bg
	}
}

// Text returns the label for the given stats
func (o *Overlay) Text(s OverlayStats) string {
	return fmt.Sprintf(" FPS %5.1f | TPS %5.1f ", s.FPS, s.TPS)
}

// loadColor blends from healthy to starved as the paint rate falls below target
func (o *Overlay) loadColor(s OverlayStats) Color {
	t := 0.0
	if s.TargetFPS > 0 {
		t = 1 - s.FPS/float64(s.TargetFPS)
		t = min(max(t*2, 0), 1)
	}
	r, g, b := o.healthy.BlendLab(o.starved, t).Clamped().RGB255()
	return RGB(r, g, b)
}

// Draw writes the overlay into g on row 0, right aligned
// Returns false when the grid is too narrow to hold the label
func (o *Overlay) Draw(g *Grid, s OverlayStats) bool {
	text := o.Text(s)
	width := runewidth.StringWidth(text)
	if g.Rows() == 0 || width > g.Cols() {
		return false
	}

	col := g.Cols() - width
	row := g.Row(0)
	// Do not leave the left half of a wide glyph without its right half
	if row[col].IsContinuation() && col > 0 {
		row[col-1] = blankWithBg(row[col-1].Bg)
	}

	fg := o.loadColor(s)
	for _, r := range text {
		row[col] = Cell{Glyph: string(r), Fg: fg, Bg: o.bg, Attrs: AttrBold}
		col++
	}
	return true
}
