package terminal

// Pre-allocated ANSI sequences for terminal mode changes
var (
	csiSGR0  = []byte("\x1b[0m")
	csiClear = []byte("\x1b[0m\x1b[2J\x1b[H")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: Auto-Wrap Mode
	// ?7l disables wrapping (cursor sticks at right edge), preventing scroll when writing to bottom-right corner
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")

	// Input reporting
	csiPasteOn  = []byte("\x1b[?2004h")
	csiPasteOff = []byte("\x1b[?2004l")
	csiFocusOn  = []byte("\x1b[?1004h")
	csiFocusOff = []byte("\x1b[?1004l")

	// Mouse tracking
	csiMouseClickOn   = []byte("\x1b[?1000h")
	csiMouseClickOff  = []byte("\x1b[?1000l")
	csiMouseDragOn    = []byte("\x1b[?1002h")
	csiMouseDragOff   = []byte("\x1b[?1002l")
	csiMouseMotionOn  = []byte("\x1b[?1003h")
	csiMouseMotionOff = []byte("\x1b[?1003l")
	csiMouseSGROn     = []byte("\x1b[?1006h")
	csiMouseSGROff    = []byte("\x1b[?1006l")
)

// modeSet selects which optional reporting modes are enabled on entry
type modeSet struct {
	mouse MouseMode
	focus bool
	paste bool
}

// enterSequence builds the bytes that put the terminal into full-screen raw operation
func enterSequence(m modeSet) []byte {
	b := make([]byte, 0, 128)
	b = append(b, csiAltScreenEnter...)
	b = append(b, csiCursorHide...)
	b = append(b, csiAutoWrapOff...)
	if m.paste {
		b = append(b, csiPasteOn...)
	}
	if m.focus {
		b = append(b, csiFocusOn...)
	}
	b = appendMouseMode(b, MouseModeNone, m.mouse)
	b = append(b, csiClear...)
	return b
}

// leaveSequence builds the restore bytes; every mode is switched off regardless of what was enabled
func leaveSequence() []byte {
	b := make([]byte, 0, 128)
	b = append(b, mouseOffSequence()...)
	b = append(b, csiFocusOff...)
	b = append(b, csiPasteOff...)
	b = append(b, csiSGR0...)
	b = append(b, csiCursorShow...)
	b = append(b, csiAltScreenExit...)
	// Re-enable Auto-Wrap AFTER exiting alt screen to ensure the main buffer has wrap enabled
	b = append(b, csiAutoWrapOn...)
	return b
}

// mouseOffSequence disables every mouse tracking mode, reverse order of enable
func mouseOffSequence() []byte {
	b := make([]byte, 0, 32)
	b = append(b, csiMouseMotionOff...)
	b = append(b, csiMouseDragOff...)
	b = append(b, csiMouseClickOff...)
	b = append(b, csiMouseSGROff...)
	return b
}

// appendMouseMode appends the transitions from oldMode to mode
func appendMouseMode(b []byte, oldMode, mode MouseMode) []byte {
	// Disable modes no longer needed (reverse order of enable)
	if oldMode&MouseModeMotion != 0 && mode&MouseModeMotion == 0 {
		b = append(b, csiMouseMotionOff...)
	}
	if oldMode&MouseModeDrag != 0 && mode&MouseModeDrag == 0 {
		b = append(b, csiMouseDragOff...)
	}
	if oldMode&MouseModeClick != 0 && mode&MouseModeClick == 0 {
		b = append(b, csiMouseClickOff...)
	}
	if mode == MouseModeNone && oldMode != MouseModeNone {
		b = append(b, csiMouseSGROff...)
	}

	// Enable SGR first, then click is base, drag extends, motion extends further
	if mode != MouseModeNone && oldMode == MouseModeNone {
		b = append(b, csiMouseSGROn...)
	}
	if mode&MouseModeClick != 0 && oldMode&MouseModeClick == 0 {
		b = append(b, csiMouseClickOn...)
	}
	if mode&MouseModeDrag != 0 && oldMode&MouseModeDrag == 0 {
		b = append(b, csiMouseDragOn...)
	}
	if mode&MouseModeMotion != 0 && oldMode&MouseModeMotion == 0 {
		b = append(b, csiMouseMotionOn...)
	}
	return b
}
