package terminal

import (
	"bytes"
	"time"
	"unicode/utf8"
)

// escapeTimeout is the duration to wait after ESC to distinguish
// standalone ESC from escape sequence start
const escapeTimeout = 50 * time.Millisecond

const (
	// maxSequenceLen bounds a CSI sequence; longer runs are discarded as garbage
	maxSequenceLen = 32
	// maxPasteBytes caps a single bracketed paste, excess is dropped
	maxPasteBytes = 1 << 20
)

var (
	pasteStart = []byte("\x1b[200~")
	pasteEnd   = []byte("\x1b[201~")
)

// decoder turns raw input bytes into events
// Incomplete escape sequences and UTF-8 are held until more bytes arrive or the escape timeout flushes them
type decoder struct {
	buf     []byte
	paste   []byte
	inPaste bool
}

// newDecoder creates an empty decoder
func newDecoder() *decoder {
	return &decoder{buf: make([]byte, 0, 256)}
}

// feed appends data and decodes every complete event into out
func (d *decoder) feed(data []byte, out []Event) []Event {
	d.buf = append(d.buf, data...)
	n, out := d.parse(d.buf, out)
	d.compact(n)
	return out
}

// pending reports whether undecoded bytes are being held
func (d *decoder) pending() bool {
	return len(d.buf) > 0
}

// flush resolves held bytes once the escape timeout expired
// A lone ESC becomes KeyEscape; a truncated sequence becomes ESC followed by its bytes as keys
func (d *decoder) flush(out []Event) []Event {
	if d.inPaste {
		return out
	}
	for len(d.buf) > 0 {
		if d.buf[0] == 0x1b {
			out = append(out, Event{Type: EventKey, Key: KeyEscape})
			d.compact(1)
		}
		n, o := d.parse(d.buf, out)
		out = o
		d.compact(n)
		if n == 0 && len(d.buf) > 0 && d.buf[0] != 0x1b {
			// Truncated UTF-8, nothing more will complete it
			d.compact(1)
		}
	}
	return out
}

// compact drops the first n bytes of the buffer
func (d *decoder) compact(n int) {
	if n <= 0 {
		return
	}
	if n >= len(d.buf) {
		d.buf = d.buf[:0]
		return
	}
	copy(d.buf, d.buf[n:])
	d.buf = d.buf[:len(d.buf)-n]
}

// parse decodes events from data and returns the bytes consumed, stopping at an incomplete sequence
func (d *decoder) parse(data []byte, out []Event) (int, []Event) {
	i := 0
	for i < len(data) {
		if d.inPaste {
			end := bytes.Index(data[i:], pasteEnd)
			if end < 0 {
				// Hold back a possible partial terminator
				avail := len(data) - i - (len(pasteEnd) - 1)
				if avail > 0 {
					d.appendPaste(data[i : i+avail])
					i += avail
				}
				return i, out
			}
			d.appendPaste(data[i : i+end])
			out = append(out, Event{Type: EventPaste, Text: string(d.paste)})
			d.paste = d.paste[:0]
			d.inPaste = false
			i += end + len(pasteEnd)
			continue
		}

		b := data[i]
		switch {
		case b >= 0x20 && b < 0x7f:
			// Fast path: printable ASCII
			out = append(out, Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++

		case b == 0x1b:
			n, ev, ok := d.escape(data[i:])
			if n == 0 {
				return i, out
			}
			if ok {
				out = append(out, ev)
			}
			i += n

		case b < 0x20:
			out = append(out, Event{Type: EventKey, Key: controlKey(b)})
			i++

		case b == 0x7f:
			out = append(out, Event{Type: EventKey, Key: KeyBackspace})
			i++

		default:
			if !utf8.FullRune(data[i:]) {
				return i, out
			}
			r, size := utf8.DecodeRune(data[i:])
			if r != utf8.RuneError || size > 1 {
				out = append(out, Event{Type: EventKey, Key: KeyRune, Rune: r})
			}
			i += size
		}
	}
	return i, out
}

// appendPaste accumulates paste content up to maxPasteBytes
func (d *decoder) appendPaste(p []byte) {
	if room := maxPasteBytes - len(d.paste); room > 0 {
		if len(p) > room {
			p = p[:room]
		}
		d.paste = append(d.paste, p...)
	}
}

// escape decodes a sequence starting with ESC
// Returns n=0 when incomplete; ok=false for consumed sequences that produce no event
func (d *decoder) escape(data []byte) (n int, ev Event, ok bool) {
	if len(data) < 2 {
		return 0, Event{}, false
	}

	switch c := data[1]; {
	case c == 0x1b:
		// ESC ESC -> Alt+Escape
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}, true

	case c == '[':
		return d.csi(data)

	case c == 'O':
		if len(data) < 3 {
			return 0, Event{}, false
		}
		k, ok := ss3Key(data[2])
		return 3, Event{Type: EventKey, Key: k}, ok

	case c < 0x20:
		// Alt+Control character
		return 2, Event{Type: EventKey, Key: controlKey(c), Modifiers: ModAlt}, true

	case c < 0x7f:
		// Alt+printable
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(c), Modifiers: ModAlt}, true

	case c == 0x7f:
		return 2, Event{Type: EventKey, Key: KeyBackspace, Modifiers: ModAlt}, true

	default:
		// Alt+UTF-8
		if !utf8.FullRune(data[1:]) {
			return 0, Event{}, false
		}
		r, size := utf8.DecodeRune(data[1:])
		return 1 + size, Event{Type: EventKey, Key: KeyRune, Rune: r, Modifiers: ModAlt}, r != utf8.RuneError
	}
}

// csi decodes "ESC [ params final"
func (d *decoder) csi(data []byte) (int, Event, bool) {
	if len(data) < 3 {
		return 0, Event{}, false
	}
	if data[2] == '<' {
		return d.sgrMouse(data)
	}
	if data[2] == '[' {
		// Linux console F1-F5: ESC [ [ A..E
		if len(data) < 4 {
			return 0, Event{}, false
		}
		if data[3] >= 'A' && data[3] <= 'E' {
			return 4, Event{Type: EventKey, Key: KeyF1 + Key(data[3]-'A')}, true
		}
		return 4, Event{}, false
	}

	i := 2
	for ; i < len(data); i++ {
		b := data[i]
		if b >= 0x40 && b <= 0x7e {
			break
		}
		if b < 0x20 || b > 0x3f || i >= maxSequenceLen {
			// Not a sequence; drop what was scanned
			return i, Event{}, false
		}
	}
	if i >= len(data) {
		return 0, Event{}, false
	}

	final := data[i]
	params := data[2:i]
	n := i + 1

	switch {
	case final == '~' && bytes.Equal(params, pasteStart[2:len(pasteStart)-1]):
		d.inPaste = true
		d.paste = d.paste[:0]
		return n, Event{}, false
	case final == '~' && bytes.Equal(params, pasteEnd[2:len(pasteEnd)-1]):
		// Stray end marker
		return n, Event{}, false
	case len(params) == 0 && (final == 'I' || final == 'O'):
		return n, Event{Type: EventFocus, Focused: final == 'I'}, true
	}

	nums, ok := parseParams(params)
	if !ok {
		return n, Event{}, false
	}
	k, mod, ok := csiKey(nums, final)
	if !ok {
		return n, Event{}, false
	}
	return n, Event{Type: EventKey, Key: k, Modifiers: mod}, true
}

// parseParams parses "n;n;n", empty fields are 0; private markers are rejected
func parseParams(p []byte) ([]int, bool) {
	if len(p) == 0 {
		return nil, true
	}
	var nums []int
	val := 0
	for _, b := range p {
		switch {
		case b == ';':
			nums = append(nums, val)
			val = 0
		case b >= '0' && b <= '9':
			val = val*10 + int(b-'0')
			if val > 9999 {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return append(nums, val), true
}

// sgrMouse decodes "ESC [ < Btn ; X ; Y M/m"
func (d *decoder) sgrMouse(data []byte) (int, Event, bool) {
	end := 3
	for end < len(data) && data[end] != 'M' && data[end] != 'm' {
		if end >= maxSequenceLen {
			return end, Event{}, false
		}
		end++
	}
	if end >= len(data) {
		return 0, Event{}, false
	}

	nums, ok := parseParams(data[3:end])
	if !ok || len(nums) != 3 {
		return end + 1, Event{}, false
	}
	return end + 1, mouseEvent(nums[0], nums[1], nums[2], data[end] == 'M'), true
}

// mouseEvent builds a mouse event from SGR button code and 1-indexed coordinates
func mouseEvent(btn, x, y int, press bool) Event {
	ev := Event{Type: EventMouse, MouseX: max(x-1, 0), MouseY: max(y-1, 0)}

	// Bits 0-1: button (0=left, 1=middle, 2=right, 3=release)
	// Bit 5 (32): motion, bit 6 (64): wheel, bit 7 (128): extra buttons
	buttonID := btn & 0x03
	isMotion := btn&32 != 0

	switch {
	case btn&64 != 0:
		if buttonID == 0 {
			ev.MouseBtn = MouseBtnWheelUp
		} else {
			ev.MouseBtn = MouseBtnWheelDown
		}
		ev.MouseAction = MouseActionPress
		return withMouseMods(ev, btn)
	case btn&128 != 0:
		if buttonID == 0 {
			ev.MouseBtn = MouseBtnBack
		} else {
			ev.MouseBtn = MouseBtnForward
		}
	default:
		switch buttonID {
		case 0:
			ev.MouseBtn = MouseBtnLeft
		case 1:
			ev.MouseBtn = MouseBtnMiddle
		case 2:
			ev.MouseBtn = MouseBtnRight
		case 3:
			ev.MouseBtn = MouseBtnNone
		}
	}

	switch {
	case !press:
		ev.MouseAction = MouseActionRelease
	case isMotion && ev.MouseBtn != MouseBtnNone:
		ev.MouseAction = MouseActionDrag
	case isMotion:
		ev.MouseAction = MouseActionMove
	default:
		ev.MouseAction = MouseActionPress
	}
	return withMouseMods(ev, btn)
}

// withMouseMods extracts modifiers from the button code
func withMouseMods(ev Event, btn int) Event {
	if btn&4 != 0 {
		ev.Modifiers |= ModShift
	}
	if btn&8 != 0 {
		ev.Modifiers |= ModAlt
	}
	if btn&16 != 0 {
		ev.Modifiers |= ModCtrl
	}
	return ev
}
