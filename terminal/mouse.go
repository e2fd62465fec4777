package terminal

// MouseButton identifies the button of a mouse report
type MouseButton uint8

const (
	MouseBtnNone MouseButton = iota
	MouseBtnLeft
	MouseBtnMiddle
	MouseBtnRight
	MouseBtnWheelUp
	MouseBtnWheelDown
	MouseBtnBack    // Extra button 8
	MouseBtnForward // Extra button 9
)

// MouseAction is what happened to the button
type MouseAction uint8

const (
	MouseActionNone MouseAction = iota
	MouseActionPress
	MouseActionRelease
	MouseActionMove
	MouseActionDrag
)

// MouseMode selects the reported mouse events, bitmask
type MouseMode uint8

const (
	MouseModeNone   MouseMode = 0
	MouseModeClick  MouseMode = 1 << 0 // ?1000 press and release
	MouseModeDrag   MouseMode = 1 << 1 // ?1002 motion with a button held
	MouseModeMotion MouseMode = 1 << 2 // ?1003 any motion
)

var mouseButtonNames = [...]string{
	MouseBtnNone:      "None",
	MouseBtnLeft:      "Left",
	MouseBtnMiddle:    "Middle",
	MouseBtnRight:     "Right",
	MouseBtnWheelUp:   "WheelUp",
	MouseBtnWheelDown: "WheelDown",
	MouseBtnBack:      "Back",
	MouseBtnForward:   "Forward",
}

var mouseActionNames = [...]string{
	MouseActionNone:    "None",
	MouseActionPress:   "Press",
	MouseActionRelease: "Release",
	MouseActionMove:    "Move",
	MouseActionDrag:    "Drag",
}

func (b MouseButton) String() string {
	if int(b) < len(mouseButtonNames) {
		return mouseButtonNames[b]
	}
	return "None"
}

func (a MouseAction) String() string {
	if int(a) < len(mouseActionNames) {
		return mouseActionNames[a]
	}
	return "None"
}

// ParseMouseButton is the inverse of MouseButton.String
func ParseMouseButton(s string) (MouseButton, bool) {
	for i, n := range mouseButtonNames {
		if n == s {
			return MouseButton(i), true
		}
	}
	return MouseBtnNone, false
}

// ParseMouseAction is the inverse of MouseAction.String
func ParseMouseAction(s string) (MouseAction, bool) {
	for i, n := range mouseActionNames {
		if n == s {
			return MouseAction(i), true
		}
	}
	return MouseActionNone, false
}
