// Package capture writes an append-only JSON-lines log of input events and painted frames
// and replays such logs through the scheduler.
package capture

import (
	"fmt"
	"time"

	"github.com/lixenwraith/cellpaint/terminal"
)

// Kind discriminates capture records
type Kind string

const (
	KindInput Kind = "input"
	KindFrame Kind = "frame"
)

// Record is one line of a capture log
type Record struct {
	Time    time.Time `json:"time"`
	Session string    `json:"session"`
	Kind    Kind      `json:"kind"`
	Seq     uint64    `json:"seq"` // Input ordinal or frame publish sequence

	// Input
	Tick  uint64       `json:"tick,omitempty"`
	Event *EventRecord `json:"event,omitempty"`

	// Frame
	Rows  int    `json:"rows,omitempty"`
	Cols  int    `json:"cols,omitempty"`
	Hash  uint64 `json:"hash,omitempty"`
	Text  string `json:"text,omitempty"`
	Plain string `json:"plain,omitempty"` // Text without escape sequences
}

// EventRecord is the serialised form of a terminal.Event, using names rather than enum values
type EventRecord struct {
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Rune    string `json:"rune,omitempty"`
	Mods    uint8  `json:"mods,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Text    string `json:"text,omitempty"`
	Focused bool   `json:"focused,omitempty"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Button  string `json:"button,omitempty"`
	Action  string `json:"action,omitempty"`
}

// FromEvent converts an event for recording
func FromEvent(ev terminal.Event) *EventRecord {
	r := &EventRecord{
		Type: ev.Type.String(),
		Mods: uint8(ev.Modifiers),
	}
	switch ev.Type {
	case terminal.EventKey:
		r.Key = terminal.KeyName(ev.Key)
		if ev.Key == terminal.KeyRune {
			r.Rune = string(ev.Rune)
		}
	case terminal.EventResize:
		r.Width, r.Height = ev.Width, ev.Height
	case terminal.EventPaste:
		r.Text = ev.Text
	case terminal.EventFocus:
		r.Focused = ev.Focused
	case terminal.EventMouse:
		r.X, r.Y = ev.MouseX, ev.MouseY
		r.Button = ev.MouseBtn.String()
		r.Action = ev.MouseAction.String()
	case terminal.EventError:
		if ev.Err != nil {
			r.Text = ev.Err.Error()
		}
	}
	return r
}

// Event converts the record back
func (r *EventRecord) Event() (terminal.Event, error) {
	typ, ok := terminal.ParseEventType(r.Type)
	if !ok {
		return terminal.Event{}, fmt.Errorf("unknown event type %q", r.Type)
	}
	ev := terminal.Event{Type: typ, Modifiers: terminal.Modifier(r.Mods)}

	switch typ {
	case terminal.EventKey:
		k, ok := terminal.KeyByName(r.Key)
		if !ok {
			return terminal.Event{}, fmt.Errorf("unknown key %q", r.Key)
		}
		ev.Key = k
		if k == terminal.KeyRune {
			runes := []rune(r.Rune)
			if len(runes) != 1 {
				return terminal.Event{}, fmt.Errorf("rune key with %q", r.Rune)
			}
			ev.Rune = runes[0]
		}
	case terminal.EventResize:
		ev.Width, ev.Height = r.Width, r.Height
	case terminal.EventPaste:
		ev.Text = r.Text
	case terminal.EventFocus:
		ev.Focused = r.Focused
	case terminal.EventMouse:
		ev.MouseX, ev.MouseY = r.X, r.Y
		if ev.MouseBtn, ok = terminal.ParseMouseButton(r.Button); !ok {
			return terminal.Event{}, fmt.Errorf("unknown mouse button %q", r.Button)
		}
		if ev.MouseAction, ok = terminal.ParseMouseAction(r.Action); !ok {
			return terminal.Event{}, fmt.Errorf("unknown mouse action %q", r.Action)
		}
	}
	return ev, nil
}
