package engine

import (
	"bytes"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cellpaint/logging"
	"github.com/lixenwraith/cellpaint/render"
	"github.com/lixenwraith/cellpaint/status"
	"github.com/lixenwraith/cellpaint/terminal"
)

// painter is the render state: front grid, encoder and counters
// Owned exclusively by the paint loop
type painter struct {
	term   Terminal
	differ *render.Differ
	enc    *render.Encoder
	buf    bytes.Buffer
	raster render.RasterOptions

	overlay   *render.Overlay
	targetFPS int
	targetTPS int

	rec       Recorder
	log       *slog.Logger
	writeWarn *logging.Throttled
	recWarn   *logging.Throttled

	last  *Frame // Last frame painted
	clear bool   // Clear the screen before the next repaint

	frames   *atomic.Int64
	scrubs   *atomic.Int64
	bytesOut *atomic.Int64
	fps      *status.AtomicFloat
	tps      *status.AtomicFloat
	meter    *status.RateMeter
}

func (p *painter) size() terminal.Size {
	front := p.differ.Front()
	return terminal.Size{Rows: front.Rows(), Cols: front.Cols()}
}

// resize reallocates the front grid; the next paint clears and repaints everything
func (p *painter) resize(size terminal.Size) {
	p.differ.Resize(size.Rows, size.Cols)
	p.clear = true
	p.last = nil
}

// paint renders f and writes the difference to the terminal
// A frame with unchanged text is skipped unless the overlay is shown or a scrub is due
// Skipped ticks still advance the scrub interval
func (p *painter) paint(f *Frame, now time.Time) {
	p.frames.Add(1)
	p.meter.Mark(now)

	if f == nil {
		return
	}
	// Frames are republished every tick, compare content rather than identity
	unchanged := p.last != nil && f.Text == p.last.Text
	if unchanged && p.overlay == nil && !p.clear && !p.differ.ScrubDue() {
		p.differ.Skip()
		return
	}
	if p.clear {
		// A cleared screen holds nothing the front grid can be diffed against
		p.differ.ForceScrub()
	}

	size := p.size()
	res := render.Rasterize(f.Text, size.Rows, size.Cols, p.raster)
	if res.Status == render.RasterFallback && !unchanged {
		p.log.Debug("frame rendered with literal fallback", "seq", f.Seq, "malformed", res.Malformed)
	}
	if p.overlay != nil {
		p.overlay.Draw(res.Grid, render.OverlayStats{
			FPS:       p.fps.Load(),
			TPS:       p.tps.Load(),
			TargetFPS: p.targetFPS,
			TargetTPS: p.targetTPS,
		})
	}

	ops, scrubbed := p.differ.ApplyAndSwap(res.Grid)

	p.buf.Reset()
	if p.clear {
		p.enc.EncodeClear(&p.buf)
		p.clear = false
	}
	p.enc.Encode(&p.buf, ops)
	if scrubbed {
		p.scrubs.Add(1)
	}

	if p.buf.Len() > 0 {
		n, err := p.term.Write(p.buf.Bytes())
		p.bytesOut.Add(int64(n))
		if err != nil {
			// Screen content is unknown after a failed write
			p.writeWarn.Warn("frame write failed", "err", err, "seq", f.Seq)
			p.differ.ForceScrub()
		}
	}

	if p.rec != nil && !unchanged {
		if err := p.rec.Frame(f.Seq, size, p.differ.LastHash(), f.Text); err != nil {
			p.recWarn.Warn("capture frame failed", "err", err)
		}
	}
	p.last = f
}
