package terminal

import (
	"errors"
	"time"
)

var (
	// ErrNotTerminal is returned when stdin is not an interactive terminal
	ErrNotTerminal = errors.New("stdin is not a terminal")
	// ErrRestore is returned when the terminal could not be returned to cooked mode after a retry
	ErrRestore = errors.New("terminal restore failed")
)

// Backend abstracts the platform file descriptors behind the Adapter
type Backend interface {
	// Init enters raw mode and starts resize notification
	Init() error

	// Fini restores the saved terminal mode, retrying once through /dev/tty
	Fini() error

	// Size returns the current dimensions
	Size() (rows, cols int, err error)

	// Write writes raw bytes to the terminal output
	Write(p []byte) (int, error)

	// Read waits up to timeout for input and reads into buf
	// Returns 0, nil on timeout or a transient interruption; io.EOF when input is closed
	Read(buf []byte, timeout time.Duration) (int, error)

	// Resizes delivers one notification per coalesced window size change
	Resizes() <-chan struct{}
}
