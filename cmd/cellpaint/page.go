package main

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/cellpaint/engine"
	"github.com/lixenwraith/cellpaint/terminal"
)

// pageState is the status page model, owned by the interaction loop
type pageState struct {
	count   int
	lastKey string
	mouseX  int
	mouseY  int
	mouse   bool // A mouse event was seen
	pasted  int  // Bytes in the last paste
	modal   bool
	ticks   uint64
	release bool // Mouse handed back to the terminal for native selection
}

// statusPage is the built-in page: a counter, the last input and a toggleable modal
type statusPage struct{}

func (statusPage) Init() pageState {
	return pageState{lastKey: "-"}
}

func (statusPage) View(s pageState, focused bool, size terminal.Size) string {
	var b strings.Builder

	focus := "\x1b[32min\x1b[0m"
	if !focused {
		focus = "\x1b[2mout\x1b[0m"
	}
	fmt.Fprintf(&b, "\x1b[1;36mcellpaint\x1b[0m  size %s  focus %s\n", size, focus)
	b.WriteString("\n")
	fmt.Fprintf(&b, " counter   \x1b[1m%d\x1b[0m\n", s.count)
	fmt.Fprintf(&b, " last key  \x1b[33m%s\x1b[0m\n", s.lastKey)
	if s.mouse {
		fmt.Fprintf(&b, " mouse     %d,%d\n", s.mouseX, s.mouseY)
	} else {
		b.WriteString(" mouse     -\n")
	}
	if s.release {
		b.WriteString(" capture   off\n")
	} else {
		b.WriteString(" capture   on\n")
	}
	if s.pasted > 0 {
		fmt.Fprintf(&b, " pasted    %d bytes\n", s.pasted)
	}
	fmt.Fprintf(&b, " ticks     %d\n", s.ticks)
	b.WriteString("\n")
	b.WriteString("\x1b[2m +/- count   m modal   t mouse   q quit   ctrl+c interrupt\x1b[0m\n")

	if s.modal {
		b.WriteString("\n")
		b.WriteString("\x1b[7m  modal open: esc closes, ctrl+c is delivered here  \x1b[0m\n")
	}
	return b.String()
}

func (statusPage) HandleKey(s pageState, ev terminal.Event, size terminal.Size) (pageState, error) {
	switch ev.Type {
	case terminal.EventMouse:
		s.mouse = true
		s.mouseX, s.mouseY = ev.MouseX, ev.MouseY
		return s, nil
	case terminal.EventPaste:
		s.pasted = len(ev.Text)
		return s, nil
	}

	s.lastKey = ev.String()
	if s.modal {
		if ev.Key == terminal.KeyEscape {
			s.modal = false
		}
		return s, nil
	}

	switch {
	case ev.Rune == '+', ev.Key == terminal.KeyUp:
		s.count++
	case ev.Rune == '-', ev.Key == terminal.KeyDown:
		s.count--
	case ev.Rune == 'm':
		s.modal = true
	case ev.Rune == 't':
		s.release = !s.release
	case ev.Rune == 'q':
		return s, engine.ErrQuit
	}
	return s, nil
}

func (statusPage) Refresh(s pageState) pageState {
	s.ticks++
	return s
}

func (statusPage) HasModal(s pageState) bool {
	return s.modal
}

func (statusPage) CapturesMouse(s pageState) bool {
	return !s.release
}

var (
	_ engine.Page[pageState]          = statusPage{}
	_ engine.MouseCapturer[pageState] = statusPage{}
	_ engine.MouseTerminal            = (*terminal.Adapter)(nil)
)
