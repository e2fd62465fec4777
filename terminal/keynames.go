package terminal

import "strconv"

// keyToName maps Key constants to canonical string names used in capture logs
var keyToName = map[Key]string{
	KeyRune:      "rune",
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBacktab:   "backtab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeySpace:     "space",

	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyPageUp:   "page_up",
	KeyPageDown: "page_down",
	KeyInsert:   "insert",

	KeyCtrlSpace:        "ctrl_space",
	KeyCtrlBackslash:    "ctrl_backslash",
	KeyCtrlBracketLeft:  "ctrl_bracket_left",
	KeyCtrlBracketRight: "ctrl_bracket_right",
	KeyCtrlCaret:        "ctrl_caret",
	KeyCtrlUnderscore:   "ctrl_underscore",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]Key

func init() {
	for i := Key(0); i < 12; i++ {
		keyToName[KeyF1+i] = "f" + strconv.Itoa(int(i)+1)
	}
	for i := Key(0); i < 26; i++ {
		keyToName[KeyCtrlA+i] = "ctrl_" + string(rune('a'+i))
	}

	nameToKey = make(map[string]Key, len(keyToName))
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["shift_tab"] = KeyBacktab
}

// KeyName returns the canonical string name for a Key constant
// Returns empty string for KeyNone
func KeyName(k Key) string {
	return keyToName[k]
}

// KeyByName resolves a canonical name to a Key constant
// Returns KeyNone and false if name is unknown
func KeyByName(name string) (Key, bool) {
	k, ok := nameToKey[name]
	return k, ok
}

// String returns the canonical name, "none" for KeyNone
func (k Key) String() string {
	if n, ok := keyToName[k]; ok {
		return n
	}
	return "none"
}

// String renders modifiers as a "ctrl+alt+shift+" prefix
func (m Modifier) String() string {
	s := ""
	if m&ModCtrl != 0 {
		s += "ctrl+"
	}
	if m&ModAlt != 0 {
		s += "alt+"
	}
	if m&ModShift != 0 {
		s += "shift+"
	}
	return s
}
