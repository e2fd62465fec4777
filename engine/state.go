package engine

import "sync/atomic"

// LoopState is the lifecycle position of a scheduler loop
// Idle -> Running -> (Resizing <-> Running) -> ShuttingDown -> Terminated
type LoopState uint32

const (
	StateIdle LoopState = iota
	StateRunning
	StateResizing
	StateShuttingDown
	StateTerminated
)

var loopStateNames = [...]string{
	StateIdle:         "idle",
	StateRunning:      "running",
	StateResizing:     "resizing",
	StateShuttingDown: "shutting_down",
	StateTerminated:   "terminated",
}

func (s LoopState) String() string {
	if int(s) < len(loopStateNames) {
		return loopStateNames[s]
	}
	return "unknown"
}

// validTransition reports whether from -> to is an edge of the loop state machine
func validTransition(from, to LoopState) bool {
	switch from {
	case StateIdle:
		return to == StateRunning || to == StateShuttingDown
	case StateRunning:
		return to == StateResizing || to == StateShuttingDown
	case StateResizing:
		return to == StateRunning || to == StateShuttingDown
	case StateShuttingDown:
		return to == StateTerminated
	default:
		return false
	}
}

// stateCell holds a LoopState readable from any goroutine, written by its loop only
type stateCell struct {
	v atomic.Uint32
}

func (c *stateCell) load() LoopState {
	return LoopState(c.v.Load())
}

// to moves to next when the edge exists; invalid transitions are ignored and reported
func (c *stateCell) to(next LoopState) bool {
	cur := c.load()
	if !validTransition(cur, next) {
		return false
	}
	c.v.Store(uint32(next))
	return true
}
