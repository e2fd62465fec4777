package terminal

// Key represents a parsed input key
type Key uint16

// Key constants - designed for expansion
const (
	KeyNone Key = iota
	KeyRune     // Printable character (check Event.Rune)

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab // Shift+Tab
	KeyBackspace
	KeyDelete
	KeySpace

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Ctrl+letter (Ctrl+A = 0x01, Ctrl+Z = 0x1A)
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH // Often same as Backspace
	KeyCtrlI // Often same as Tab
	KeyCtrlJ // Often same as Enter
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM // Often same as Enter
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ

	// Ctrl+special
	KeyCtrlSpace
	KeyCtrlBackslash
	KeyCtrlBracketLeft
	KeyCtrlBracketRight
	KeyCtrlCaret
	KeyCtrlUnderscore
)

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

// modifierParam decodes the xterm modifier parameter (1 + shift + 2*alt + 4*ctrl)
func modifierParam(p int) Modifier {
	if p < 2 || p > 8 {
		return ModNone
	}
	return Modifier(p - 1)
}

// letterKeys maps the final byte of "CSI [1;mod] X" and "SS3 X" to keys
var letterKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
	'Z': KeyBacktab,
	'M': KeyEnter, // Keypad enter in application mode
}

// tildeKeys maps the first parameter of "CSI n [;mod] ~" to keys
var tildeKeys = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// csiKey resolves a CSI key sequence from its numeric parameters and final byte
func csiKey(params []int, final byte) (Key, Modifier, bool) {
	mod := ModNone
	if len(params) >= 2 {
		mod = modifierParam(params[1])
	}

	switch final {
	case '~':
		if len(params) == 0 {
			return KeyNone, ModNone, false
		}
		k, ok := tildeKeys[params[0]]
		return k, mod, ok
	case 'Z':
		return KeyBacktab, mod | ModShift, true
	case 'M':
		// Only meaningful in SS3 form; CSI M is legacy mouse
		return KeyNone, ModNone, false
	default:
		k, ok := letterKeys[final]
		return k, mod, ok
	}
}

// ss3Key resolves "ESC O X"
func ss3Key(final byte) (Key, bool) {
	if final == 'Z' {
		return KeyNone, false
	}
	k, ok := letterKeys[final]
	return k, ok
}

// controlKey maps C0 control bytes to keys
func controlKey(b byte) Key {
	switch {
	case b == 0x00:
		return KeyCtrlSpace
	case b == 0x08:
		return KeyBackspace
	case b == 0x09:
		return KeyTab
	case b == 0x0a || b == 0x0d:
		return KeyEnter
	case b == 0x1b:
		return KeyEscape
	case b >= 0x01 && b <= 0x1a:
		return KeyCtrlA + Key(b-0x01)
	case b == 0x1c:
		return KeyCtrlBackslash
	case b == 0x1d:
		return KeyCtrlBracketRight
	case b == 0x1e:
		return KeyCtrlCaret
	case b == 0x1f:
		return KeyCtrlUnderscore
	}
	return KeyNone
}
