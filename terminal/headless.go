package terminal

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// Headless is an in-memory terminal with the same engine-facing surface as Adapter
// Tests and capture replay feed it events and inspect everything written to it
type Headless struct {
	mu     sync.Mutex
	size   Size
	queue  []Event
	notify chan struct{}
	out    bytes.Buffer
	writes int
	closed bool

	modes  modeSet
	raw    bool
	enters int
	leaves int
}

// NewHeadless creates a headless terminal of the given size with mouse, focus and paste reporting
func NewHeadless(rows, cols int) *Headless {
	return &Headless{
		size:   Size{Rows: rows, Cols: cols},
		notify: make(chan struct{}, 1),
		modes:  modeSet{mouse: MouseModeClick | MouseModeDrag, focus: true, paste: true},
	}
}

// EnterRawMode records the entry sequence, once
func (h *Headless) EnterRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.raw {
		return nil
	}
	h.raw = true
	h.enters++
	h.out.Write(enterSequence(h.modes))
	return nil
}

// LeaveRawMode records the restore sequence, once
func (h *Headless) LeaveRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.raw {
		return nil
	}
	h.raw = false
	h.leaves++
	h.out.Write(leaveSequence())
	return nil
}

// SetMouse changes the mouse tracking modes, writing the transition while raw
func (h *Headless) SetMouse(mode MouseMode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if mode == h.modes.mouse {
		return nil
	}
	if h.raw {
		h.out.Write(appendMouseMode(nil, h.modes.mouse, mode))
	}
	h.modes.mouse = mode
	return nil
}

// Mouse returns the current mouse tracking modes
func (h *Headless) Mouse() MouseMode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modes.mouse
}

// Raw reports whether the headless terminal is in raw mode
func (h *Headless) Raw() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw
}

// Transitions returns how many times raw mode was entered and left
func (h *Headless) Transitions() (enters, leaves int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enters, h.leaves
}

// Push queues input events
func (h *Headless) Push(evs ...Event) {
	h.mu.Lock()
	h.queue = append(h.queue, evs...)
	h.mu.Unlock()
	h.wake()
}

// Feed decodes raw input bytes and queues the result; a trailing lone ESC is flushed
func (h *Headless) Feed(raw []byte) {
	d := newDecoder()
	evs := d.feed(raw, nil)
	evs = d.flush(evs)
	h.Push(evs...)
}

// Resize changes the size and queues the matching resize event
func (h *Headless) Resize(rows, cols int) {
	h.mu.Lock()
	h.size = Size{Rows: rows, Cols: cols}
	h.queue = append(h.queue, Event{Type: EventResize, Width: cols, Height: rows})
	h.mu.Unlock()
	h.wake()
}

// Close makes ReadInput report io.EOF once the queue is drained
func (h *Headless) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.wake()
}

func (h *Headless) wake() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// ReadInput returns queued events, waiting up to timeout when the queue is empty
func (h *Headless) ReadInput(timeout time.Duration) ([]Event, error) {
	if evs, err, ok := h.take(); ok {
		return evs, err
	}
	if timeout <= 0 {
		return nil, nil
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-h.notify:
	case <-t.C:
	}
	evs, err, _ := h.take()
	return evs, err
}

// take removes all queued events; ok is false when there was nothing to report
func (h *Headless) take() ([]Event, error, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) > 0 {
		evs := h.queue
		h.queue = nil
		return evs, nil, true
	}
	if h.closed {
		return []Event{{Type: EventClosed}}, io.EOF, true
	}
	return nil, nil, false
}

// Write appends to the captured output
func (h *Headless) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes++
	return h.out.Write(p)
}

// QuerySize returns the current size
func (h *Headless) QuerySize() Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Output returns a copy of everything written so far
func (h *Headless) Output() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Clone(h.out.Bytes())
}

// Writes returns the number of Write calls
func (h *Headless) Writes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writes
}

// ResetOutput discards captured output
func (h *Headless) ResetOutput() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.Reset()
	h.writes = 0
}
