package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cellpaint/config"
	"github.com/lixenwraith/cellpaint/core"
	"github.com/lixenwraith/cellpaint/logging"
	"github.com/lixenwraith/cellpaint/render"
	"github.com/lixenwraith/cellpaint/status"
	"github.com/lixenwraith/cellpaint/terminal"
)

// Option configures a Scheduler
type Option func(*options)

type options struct {
	log       *slog.Logger
	reg       *status.Registry
	rec       Recorder
	colorMode *render.ColorMode
	mouseMode *terminal.MouseMode
}

// WithLogger sets the logger, default discards
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRegistry publishes loop metrics into reg
func WithRegistry(reg *status.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// WithRecorder captures input events and painted frames
func WithRecorder(rec Recorder) Option {
	return func(o *options) { o.rec = rec }
}

// WithColorMode overrides the color mode resolved from config
func WithColorMode(m render.ColorMode) Option {
	return func(o *options) { o.colorMode = &m }
}

// WithMouseMode sets the tracking modes restored when a page recaptures the mouse
// Defaults to click and drag when mouse is enabled in config
func WithMouseMode(m terminal.MouseMode) Option {
	return func(o *options) { o.mouseMode = &m }
}

type resizeRequest struct {
	size terminal.Size
	done chan struct{}
}

// Scheduler runs the dual-rate loops: interaction at TPS feeding the page and
// publishing frames, paint at FPS rasterizing the latest frame and writing the diff
type Scheduler[S any] struct {
	cfg  config.Config
	term Terminal
	page Page[S]
	opts options
	log  *slog.Logger

	slot     FrameSlot
	resizeCh chan resizeRequest

	paintState    stateCell
	interactState stateCell

	stopCh   chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// Cached metric pointers
	statTicks      *atomic.Int64
	statEvents     *atomic.Int64
	statTickOver   *atomic.Int64
	statPaintOver  *atomic.Int64
	statTPS        *status.AtomicFloat
	statFocus      *atomic.Bool
	statLastEvent  *status.AtomicString
	recWarn        *logging.Throttled
	pageWarn       *logging.Throttled
	lastPublishSeq uint64

	mouseMode     terminal.MouseMode // Modes in effect while captured
	mouseCaptured bool
}

// NewScheduler creates a scheduler; cfg is used as given, callers validate it first
func NewScheduler[S any](cfg config.Config, term Terminal, page Page[S], opts ...Option) *Scheduler[S] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	if o.reg == nil {
		o.reg = status.NewRegistry()
	}

	s := &Scheduler[S]{
		cfg:      cfg,
		term:     term,
		page:     page,
		opts:     o,
		log:      o.log,
		resizeCh: make(chan resizeRequest),
		stopCh:   make(chan struct{}),

		statTicks:     o.reg.Ints.Get("interact.ticks"),
		statEvents:    o.reg.Ints.Get("interact.events"),
		statTickOver:  o.reg.Ints.Get("interact.overruns"),
		statPaintOver: o.reg.Ints.Get("paint.overruns"),
		statTPS:       o.reg.Floats.Get("interact.tps"),
		statFocus:     o.reg.Bools.Get("interact.focus"),
		statLastEvent: o.reg.Strings.Get("interact.last_event"),
		recWarn:       logging.NewThrottled(o.log, 5*time.Second),
		pageWarn:      logging.NewThrottled(o.log, 5*time.Second),
	}
	s.statFocus.Store(true)

	if cfg.Mouse {
		s.mouseMode = terminal.MouseModeClick | terminal.MouseModeDrag
	}
	if o.mouseMode != nil {
		s.mouseMode = *o.mouseMode
	}
	s.mouseCaptured = s.mouseMode != terminal.MouseModeNone
	return s
}

// Registry returns the metrics registry the loops publish into
func (s *Scheduler[S]) Registry() *status.Registry {
	return s.opts.reg
}

// PaintState returns the paint loop state
func (s *Scheduler[S]) PaintState() LoopState {
	return s.paintState.load()
}

// InteractState returns the interaction loop state
func (s *Scheduler[S]) InteractState() LoopState {
	return s.interactState.load()
}

// Latest returns the most recently published frame
func (s *Scheduler[S]) Latest() *Frame {
	return s.slot.Load()
}

// Stop asks both loops to finish their current tick and exit; safe to call repeatedly
func (s *Scheduler[S]) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Scheduler[S]) stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Run starts both loops and blocks until the page quits, Ctrl+C is pressed without a modal,
// input is closed, Stop is called or ctx is done
// Returns once no write is in flight
func (s *Scheduler[S]) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}

	size := s.term.QuerySize()
	if !size.Valid() {
		size = terminal.DefaultSize
	}
	s.log.Info("scheduler starting", "fps", s.cfg.FPS, "tps", s.cfg.TPS, "size", size.String(),
		"scrub", s.cfg.ScrubInterval, "overlay", s.cfg.Overlay)

	var wg sync.WaitGroup
	wg.Add(2)
	core.Go(func() {
		defer wg.Done()
		s.paintLoop(size)
	})
	core.Go(func() {
		defer wg.Done()
		s.interactLoop(size)
	})

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.log.Info("context done, stopping", "cause", context.Cause(ctx))
			s.Stop()
		case <-done:
		}
	}()

	wg.Wait()
	close(done)
	s.Stop()

	s.log.Info("scheduler stopped", "metrics", s.opts.reg.Snapshot())
	return nil
}

// interactLoop drains input, drives the page and publishes one frame per tick
func (s *Scheduler[S]) interactLoop(size terminal.Size) {
	s.interactState.to(StateRunning)
	defer func() {
		s.interactState.to(StateShuttingDown)
		s.interactState.to(StateTerminated)
	}()

	state := s.page.Init()
	focused := true
	s.publish(state, focused, size, time.Now())

	p := newPacer(s.cfg.TickInterval(), s.statTickOver)
	defer p.close()
	meter := status.NewRateMeter(s.statTPS, 0)
	p.start(time.Now())

	for tick := uint64(0); ; tick++ {
		if s.stopping() {
			return
		}

		evs, err := s.term.ReadInput(0)
		closed := errors.Is(err, io.EOF)

		for _, ev := range evs {
			s.statEvents.Add(1)
			s.statLastEvent.Store(ev.String())
			if s.opts.rec != nil {
				if rerr := s.opts.rec.Input(tick, ev); rerr != nil {
					s.recWarn.Warn("capture input failed", "err", rerr)
				}
			}

			switch ev.Type {
			case terminal.EventResize:
				next := terminal.Size{Rows: ev.Height, Cols: ev.Width}
				if !next.Valid() || next == size {
					continue
				}
				if !s.requestResize(next) {
					return
				}
				size = next
				continue
			case terminal.EventFocus:
				focused = ev.Focused
				s.statFocus.Store(focused)
				continue
			case terminal.EventClosed, terminal.EventError:
				continue
			}

			if ev.IsInterrupt() && !s.page.HasModal(state) {
				s.log.Info("interrupt received")
				s.Stop()
				return
			}

			var herr error
			state, herr = s.page.HandleKey(state, ev, size)
			if errors.Is(herr, ErrQuit) {
				s.log.Info("page requested quit")
				s.Stop()
				return
			}
			if herr != nil {
				s.pageWarn.Warn("page rejected event", "event", ev.String(), "err", herr)
			}
		}

		if closed {
			s.log.Info("input closed")
			s.Stop()
			return
		}

		state = s.page.Refresh(state)
		s.syncMouse(state)
		now := time.Now()
		s.publish(state, focused, size, now)
		s.statTicks.Add(1)
		meter.Mark(now)

		if d := p.next(time.Now()); d > 0 {
			select {
			case <-p.after(d):
			case <-s.stopCh:
				p.cancel()
				return
			}
		}
	}
}

// syncMouse applies the page's mouse capture choice when the terminal supports it
func (s *Scheduler[S]) syncMouse(state S) {
	if s.mouseMode == terminal.MouseModeNone {
		return
	}
	mc, ok := s.page.(MouseCapturer[S])
	if !ok {
		return
	}
	mt, ok := s.term.(MouseTerminal)
	if !ok {
		return
	}

	want := mc.CapturesMouse(state)
	if want == s.mouseCaptured {
		return
	}
	mode := terminal.MouseModeNone
	if want {
		mode = s.mouseMode
	}
	if err := mt.SetMouse(mode); err != nil {
		s.pageWarn.Warn("mouse mode change failed", "err", err)
		return
	}
	s.mouseCaptured = want
	s.log.Debug("mouse capture changed", "captured", want)
}

// publish renders the page and replaces the slot content
func (s *Scheduler[S]) publish(state S, focused bool, size terminal.Size, now time.Time) {
	s.lastPublishSeq++
	s.slot.Publish(&Frame{
		Seq:     s.lastPublishSeq,
		Text:    s.page.View(state, focused, size),
		Size:    size,
		Modal:   s.page.HasModal(state),
		Focused: focused,
		At:      now,
	})
}

// requestResize hands the new size to the paint loop and waits until both grids are reallocated
// Returns false when the scheduler stopped meanwhile
func (s *Scheduler[S]) requestResize(size terminal.Size) bool {
	s.interactState.to(StateResizing)
	req := resizeRequest{size: size, done: make(chan struct{})}

	select {
	case s.resizeCh <- req:
	case <-s.stopCh:
		return false
	}
	select {
	case <-req.done:
	case <-s.stopCh:
		return false
	}

	s.interactState.to(StateRunning)
	s.log.Debug("resized", "size", size.String())
	return true
}

func (s *Scheduler[S]) newPainter(size terminal.Size) *painter {
	reg := s.opts.reg
	mode := s.cfg.ColorMode()
	if s.opts.colorMode != nil {
		mode = *s.opts.colorMode
	}

	p := &painter{
		term: s.term,
		differ: render.NewDiffer(size.Rows, size.Cols, render.DifferOptions{
			ScrubInterval: s.cfg.ScrubInterval,
			MergeGap:      s.cfg.MergeGap,
		}),
		enc:       render.NewEncoder(mode),
		raster:    render.RasterOptions{AmbiguousWide: s.cfg.AmbiguousWide},
		targetFPS: s.cfg.FPS,
		targetTPS: s.cfg.TPS,
		rec:       s.opts.rec,
		log:       s.log,
		writeWarn: logging.NewThrottled(s.log, 5*time.Second),
		recWarn:   s.recWarn,
		clear:     true,
		frames:    reg.Ints.Get("paint.frames"),
		scrubs:    reg.Ints.Get("paint.scrubs"),
		bytesOut:  reg.Ints.Get("paint.bytes"),
		fps:       reg.Floats.Get("paint.fps"),
		tps:       s.statTPS,
	}
	p.meter = status.NewRateMeter(p.fps, 0)
	if s.cfg.Overlay {
		p.overlay = render.NewOverlay()
		p.overlay.SetColors(s.cfg.OverlayColors())
	}
	return p
}

// paintLoop wakes at FPS, paints the latest frame and services resize requests
func (s *Scheduler[S]) paintLoop(size terminal.Size) {
	s.paintState.to(StateRunning)
	defer func() {
		s.paintState.to(StateShuttingDown)
		s.paintState.to(StateTerminated)
	}()

	pt := s.newPainter(size)
	p := newPacer(s.cfg.FrameInterval(), s.statPaintOver)
	defer p.close()
	p.start(time.Now())

	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.resizeCh:
			s.applyResize(pt, req)
		default:
		}

		pt.paint(s.slot.Load(), time.Now())

		d := p.next(time.Now())
		if d <= 0 {
			continue
		}
		select {
		case <-p.after(d):
		case req := <-s.resizeCh:
			p.cancel()
			// Loop repaints at the new size without waiting out the tick
			s.applyResize(pt, req)
		case <-s.stopCh:
			p.cancel()
			return
		}
	}
}

func (s *Scheduler[S]) applyResize(pt *painter, req resizeRequest) {
	s.paintState.to(StateResizing)
	pt.resize(req.size)
	close(req.done)
	s.paintState.to(StateRunning)
}
