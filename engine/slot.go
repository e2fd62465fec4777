package engine

import (
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cellpaint/terminal"
)

// Frame is one rendered view; immutable once published
type Frame struct {
	Seq     uint64
	Text    string
	Size    terminal.Size // Size the page rendered for
	Modal   bool
	Focused bool
	At      time.Time
}

// FrameSlot is the single-slot mailbox between the loops
// Last write wins, readers never block and never observe a partially built frame
type FrameSlot struct {
	p atomic.Pointer[Frame]
}

// Publish makes f the latest frame and returns the one it replaced
func (s *FrameSlot) Publish(f *Frame) *Frame {
	return s.p.Swap(f)
}

// Load returns the latest frame, nil before the first publish
func (s *FrameSlot) Load() *Frame {
	return s.p.Load()
}
