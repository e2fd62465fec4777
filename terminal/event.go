package terminal

import (
	"strconv"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventPaste
	EventMouse
	EventFocus
	EventError  // Read error
	EventClosed // Input closed
)

var eventTypeNames = [...]string{
	EventKey:    "key",
	EventResize: "resize",
	EventPaste:  "paste",
	EventMouse:  "mouse",
	EventFocus:  "focus",
	EventError:  "error",
	EventClosed: "closed",
}

// String returns the lower-case event type name
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// ParseEventType is the inverse of EventType.String
func ParseEventType(s string) (EventType, bool) {
	for i, n := range eventTypeNames {
		if n == s {
			return EventType(i), true
		}
	}
	return 0, false
}

// Event represents a decoded terminal input event
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier

	Width  int // For EventResize: columns
	Height int // For EventResize: rows

	Text    string // For EventPaste
	Focused bool   // For EventFocus
	Err     error  // For EventError

	// Mouse event fields, 0-indexed cells
	MouseX      int
	MouseY      int
	MouseBtn    MouseButton
	MouseAction MouseAction
}

// String returns a short human readable description
func (e Event) String() string {
	switch e.Type {
	case EventKey:
		if e.Key == KeyRune {
			return e.Modifiers.String() + strconv.QuoteRune(e.Rune)
		}
		return e.Modifiers.String() + e.Key.String()
	case EventMouse:
		return e.Modifiers.String() + e.MouseBtn.String() + " " + e.MouseAction.String() +
			" @" + strconv.Itoa(e.MouseX) + "," + strconv.Itoa(e.MouseY)
	case EventResize:
		return "resize " + strconv.Itoa(e.Height) + "x" + strconv.Itoa(e.Width)
	case EventPaste:
		return "paste " + strconv.Itoa(len(e.Text)) + "B"
	case EventFocus:
		if e.Focused {
			return "focus in"
		}
		return "focus out"
	case EventError:
		if e.Err != nil {
			return "error: " + e.Err.Error()
		}
		return "error"
	default:
		return e.Type.String()
	}
}

// IsInterrupt reports whether the event is Ctrl+C
func (e Event) IsInterrupt() bool {
	return e.Type == EventKey && e.Key == KeyCtrlC
}

// Size is a terminal size in cells
type Size struct {
	Rows int
	Cols int
}

// Valid reports whether both dimensions are positive
func (s Size) Valid() bool {
	return s.Rows > 0 && s.Cols > 0
}

// String renders the size as rows x cols
func (s Size) String() string {
	return strconv.Itoa(s.Rows) + "x" + strconv.Itoa(s.Cols)
}
