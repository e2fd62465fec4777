package engine

import (
	"errors"
	"time"

	"github.com/lixenwraith/cellpaint/terminal"
)

// ErrQuit is returned by Page.HandleKey to end the run
var ErrQuit = errors.New("quit")

// ErrRunning is returned by Run on a scheduler that was already started
var ErrRunning = errors.New("scheduler already started")

// Page is the application collaborator driven by the interaction loop
// State is owned by the interaction loop; the paint loop only ever sees the rendered text
type Page[S any] interface {
	Init() S
	// View renders state as styled text (ANSI SGR) for the given size
	View(state S, focused bool, size terminal.Size) string
	// HandleKey receives key, mouse and paste events; resize and focus are tracked by the scheduler
	HandleKey(state S, ev terminal.Event, size terminal.Size) (S, error)
	// Refresh runs once per interaction tick after input
	Refresh(state S) S
	// HasModal reports whether a modal owns the keyboard; Ctrl+C is then delivered instead of interrupting
	HasModal(state S) bool
}

// MouseCapturer is optionally implemented by a Page that releases the mouse, e.g. so the
// terminal's own text selection works; checked once per interaction tick
type MouseCapturer[S any] interface {
	CapturesMouse(state S) bool
}

// MouseTerminal is optionally implemented by a Terminal that can change mouse tracking
type MouseTerminal interface {
	SetMouse(mode terminal.MouseMode) error
}

// Terminal is the I/O surface the scheduler needs, implemented by terminal.Adapter,
// terminal.Headless and capture.Replayer
type Terminal interface {
	ReadInput(timeout time.Duration) ([]terminal.Event, error)
	Write(p []byte) (int, error)
	QuerySize() terminal.Size
}

// Recorder receives raw input events and painted frames, called from both loops
// tick is the interaction tick that read the event, zero based
type Recorder interface {
	Input(tick uint64, ev terminal.Event) error
	Frame(seq uint64, size terminal.Size, hash uint64, text string) error
}
