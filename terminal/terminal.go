package terminal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/cellpaint/logging"
)

// DefaultSize is reported until the first successful size query
var DefaultSize = Size{Rows: 24, Cols: 80}

// Options configures an Adapter
type Options struct {
	In  *os.File // Defaults to os.Stdin
	Out *os.File // Defaults to os.Stdout

	Mouse MouseMode // Tracking modes enabled on entry
	Focus bool      // Focus in/out reporting
	Paste bool      // Bracketed paste

	Logger *slog.Logger
}

// Adapter is the only component touching the terminal file descriptors
// Write, SetMouse and the raw mode transitions are serialised by one mutex so
// teardown never interleaves with an in-flight frame
type Adapter struct {
	backend   Backend
	opts      Options
	log       *slog.Logger
	transient *logging.Throttled

	writeMu sync.Mutex
	active  bool
	mouse   MouseMode

	// Input state, owned by the single reader
	dec       *decoder
	readBuf   []byte
	heldSince time.Time

	sizeMu   sync.Mutex
	lastSize Size
	sizeWarn sync.Once
}

// New creates an Adapter over stdin/stdout
func New(opts Options) *Adapter {
	return newAdapter(newBackend(opts.In, opts.Out), opts)
}

func newAdapter(b Backend, opts Options) *Adapter {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Adapter{
		backend:   b,
		opts:      opts,
		log:       log,
		transient: logging.NewThrottled(log, 5*time.Second),
		dec:       newDecoder(),
		readBuf:   make([]byte, 4096),
		lastSize:  DefaultSize,
	}
}

// EnterRawMode switches to raw mode and the alternate screen
// Calling it while already raw does nothing
func (a *Adapter) EnterRawMode() error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if a.active {
		return nil
	}
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}

	seq := enterSequence(modeSet{mouse: a.opts.Mouse, focus: a.opts.Focus, paste: a.opts.Paste})
	if _, err := a.backend.Write(seq); err != nil {
		_ = a.backend.Fini()
		return fmt.Errorf("enter raw mode: %w", err)
	}
	a.active = true
	a.mouse = a.opts.Mouse
	a.log.Debug("raw mode entered", "mouse", a.mouse != MouseModeNone, "focus", a.opts.Focus)
	return nil
}

// LeaveRawMode disables every reporting mode, leaves the alternate screen and restores
// the saved termios; calling it again does nothing
func (a *Adapter) LeaveRawMode() error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if !a.active {
		return nil
	}
	a.active = false

	seq := leaveSequence()
	_, werr := a.backend.Write(seq)
	if werr != nil {
		// Controlling terminal may still be writable when stdout is not
		werr = writeTTY(seq)
	}
	if err := a.backend.Fini(); err != nil {
		return err
	}
	if werr != nil {
		return fmt.Errorf("%w: %v", ErrRestore, werr)
	}
	a.log.Debug("raw mode left")
	return nil
}

// Active reports whether the terminal is in raw mode
func (a *Adapter) Active() bool {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return a.active
}

// Write sends bytes to the terminal; output after LeaveRawMode is dropped
func (a *Adapter) Write(p []byte) (int, error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if !a.active {
		return len(p), nil
	}
	n, err := a.backend.Write(p)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// SetMouse changes the mouse tracking modes
func (a *Adapter) SetMouse(mode MouseMode) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.opts.Mouse = mode
	if !a.active || mode == a.mouse {
		return nil
	}
	if _, err := a.backend.Write(appendMouseMode(nil, a.mouse, mode)); err != nil {
		return fmt.Errorf("set mouse mode: %w", err)
	}
	a.mouse = mode
	return nil
}

// ReadInput returns the events available within timeout, 0 polls without blocking
// Pending resize notifications are reported first; a held lone ESC is released once
// escapeTimeout passed without further bytes. Returns io.EOF once input is closed
func (a *Adapter) ReadInput(timeout time.Duration) ([]Event, error) {
	var out []Event

	select {
	case <-a.backend.Resizes():
		s := a.QuerySize()
		out = append(out, Event{Type: EventResize, Width: s.Cols, Height: s.Rows})
		timeout = 0
	default:
	}

	n, err := a.backend.Read(a.readBuf, timeout)
	if err != nil {
		if errors.Is(err, io.EOF) {
			out = a.dec.flush(out)
			return append(out, Event{Type: EventClosed}), io.EOF
		}
		a.transient.Warn("terminal read failed", "err", err)
		return out, err
	}

	now := time.Now()
	if n > 0 {
		out = a.dec.feed(a.readBuf[:n], out)
		if a.dec.pending() {
			a.heldSince = now
		} else {
			a.heldSince = time.Time{}
		}
		return out, nil
	}

	if a.dec.pending() && now.Sub(a.heldSince) >= escapeTimeout {
		out = a.dec.flush(out)
		if !a.dec.pending() {
			a.heldSince = time.Time{}
		}
	}
	return out, nil
}

// QuerySize returns the current size, or the last known size when the query fails
func (a *Adapter) QuerySize() Size {
	rows, cols, err := a.backend.Size()

	a.sizeMu.Lock()
	defer a.sizeMu.Unlock()

	if err != nil {
		a.sizeWarn.Do(func() {
			a.log.Warn("terminal size query failed, using last known size", "err", err, "size", a.lastSize.String())
		})
		return a.lastSize
	}
	a.lastSize = Size{Rows: rows, Cols: cols}
	return a.lastSize
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if LeaveRawMode cannot be called normally
func EmergencyReset(w io.Writer) error {
	seq := leaveSequence()
	_, werr := w.Write(seq)
	w.Write(csiRIS)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	if err := resetTerminalMode(); err != nil {
		return fmt.Errorf("%w: %v", ErrRestore, err)
	}
	if werr != nil {
		return fmt.Errorf("%w: %v", ErrRestore, werr)
	}
	return nil
}
