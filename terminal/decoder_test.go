package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, input string) []Event {
	t.Helper()
	d := newDecoder()
	evs := d.feed([]byte(input), nil)
	require.False(t, d.pending(), "unexpected held bytes %q", d.buf)
	return evs
}

func TestDecoder_Keys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Event
	}{
		{"rune", "a", Event{Type: EventKey, Key: KeyRune, Rune: 'a'}},
		{"space", " ", Event{Type: EventKey, Key: KeyRune, Rune: ' '}},
		{"ctrl c", "\x03", Event{Type: EventKey, Key: KeyCtrlC}},
		{"ctrl z", "\x1a", Event{Type: EventKey, Key: KeyCtrlZ}},
		{"enter", "\r", Event{Type: EventKey, Key: KeyEnter}},
		{"tab", "\t", Event{Type: EventKey, Key: KeyTab}},
		{"backspace", "\x7f", Event{Type: EventKey, Key: KeyBackspace}},
		{"up", "\x1b[A", Event{Type: EventKey, Key: KeyUp}},
		{"ctrl right", "\x1b[1;5C", Event{Type: EventKey, Key: KeyRight, Modifiers: ModCtrl}},
		{"shift alt home", "\x1b[1;4H", Event{Type: EventKey, Key: KeyHome, Modifiers: ModShift | ModAlt}},
		{"delete", "\x1b[3~", Event{Type: EventKey, Key: KeyDelete}},
		{"shift f5", "\x1b[15;2~", Event{Type: EventKey, Key: KeyF5, Modifiers: ModShift}},
		{"f12", "\x1b[24~", Event{Type: EventKey, Key: KeyF12}},
		{"ss3 f1", "\x1bOP", Event{Type: EventKey, Key: KeyF1}},
		{"linux f3", "\x1b[[C", Event{Type: EventKey, Key: KeyF3}},
		{"backtab", "\x1b[Z", Event{Type: EventKey, Key: KeyBacktab, Modifiers: ModShift}},
		{"alt rune", "\x1bx", Event{Type: EventKey, Key: KeyRune, Rune: 'x', Modifiers: ModAlt}},
		{"alt escape", "\x1b\x1b", Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}},
		{"utf8", "日", Event{Type: EventKey, Key: KeyRune, Rune: '日'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := decodeAll(t, tt.input)
			require.Len(t, evs, 1)
			assert.Equal(t, tt.want, evs[0])
		})
	}
}

func TestDecoder_Mouse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		btn    MouseButton
		action MouseAction
		mods   Modifier
	}{
		{"left press", "\x1b[<0;10;5M", MouseBtnLeft, MouseActionPress, ModNone},
		{"left release", "\x1b[<0;10;5m", MouseBtnLeft, MouseActionRelease, ModNone},
		{"right press", "\x1b[<2;10;5M", MouseBtnRight, MouseActionPress, ModNone},
		{"drag", "\x1b[<32;10;5M", MouseBtnLeft, MouseActionDrag, ModNone},
		{"move", "\x1b[<35;10;5M", MouseBtnNone, MouseActionMove, ModNone},
		{"wheel up", "\x1b[<64;10;5M", MouseBtnWheelUp, MouseActionPress, ModNone},
		{"wheel down", "\x1b[<65;10;5M", MouseBtnWheelDown, MouseActionPress, ModNone},
		{"ctrl click", "\x1b[<16;10;5M", MouseBtnLeft, MouseActionPress, ModCtrl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := decodeAll(t, tt.input)
			require.Len(t, evs, 1)
			ev := evs[0]
			assert.Equal(t, EventMouse, ev.Type)
			assert.Equal(t, 9, ev.MouseX)
			assert.Equal(t, 4, ev.MouseY)
			assert.Equal(t, tt.btn, ev.MouseBtn)
			assert.Equal(t, tt.action, ev.MouseAction)
			assert.Equal(t, tt.mods, ev.Modifiers)
		})
	}
}

func TestDecoder_Focus(t *testing.T) {
	evs := decodeAll(t, "\x1b[I\x1b[O")
	require.Len(t, evs, 2)
	assert.Equal(t, Event{Type: EventFocus, Focused: true}, evs[0])
	assert.Equal(t, Event{Type: EventFocus, Focused: false}, evs[1])
}

func TestDecoder_BracketedPaste(t *testing.T) {
	evs := decodeAll(t, "\x1b[200~hello\x1b[Aworld\r\x1b[201~x")
	require.Len(t, evs, 2)
	assert.Equal(t, Event{Type: EventPaste, Text: "hello\x1b[Aworld\r"}, evs[0])
	assert.Equal(t, 'x', evs[1].Rune)
}

func TestDecoder_PasteSplitAcrossReads(t *testing.T) {
	d := newDecoder()
	evs := d.feed([]byte("\x1b[200~abc\x1b[20"), nil)
	assert.Empty(t, evs)

	// Paste is never flushed by the escape timeout
	assert.Empty(t, d.flush(nil))

	evs = d.feed([]byte("1~"), nil)
	require.Len(t, evs, 1)
	assert.Equal(t, "abc", evs[0].Text)
	assert.False(t, d.pending())
}

func TestDecoder_SplitSequences(t *testing.T) {
	d := newDecoder()

	assert.Empty(t, d.feed([]byte("\x1b["), nil))
	assert.True(t, d.pending())
	evs := d.feed([]byte("A"), nil)
	require.Len(t, evs, 1)
	assert.Equal(t, KeyUp, evs[0].Key)

	utf := []byte("日")
	assert.Empty(t, d.feed(utf[:2], nil))
	evs = d.feed(utf[2:], nil)
	require.Len(t, evs, 1)
	assert.Equal(t, '日', evs[0].Rune)

	assert.Empty(t, d.feed([]byte("\x1b[<0;1"), nil))
	evs = d.feed([]byte(";1M"), nil)
	require.Len(t, evs, 1)
	assert.Equal(t, EventMouse, evs[0].Type)
}

func TestDecoder_LoneEscapeFlush(t *testing.T) {
	d := newDecoder()
	assert.Empty(t, d.feed([]byte("\x1b"), nil))
	assert.True(t, d.pending())

	evs := d.flush(nil)
	require.Len(t, evs, 1)
	assert.Equal(t, KeyEscape, evs[0].Key)
	assert.Equal(t, ModNone, evs[0].Modifiers)
	assert.False(t, d.pending())
}

func TestDecoder_TruncatedSequenceFlush(t *testing.T) {
	d := newDecoder()
	assert.Empty(t, d.feed([]byte("\x1b[1;"), nil))

	evs := d.flush(nil)
	require.Len(t, evs, 4)
	assert.Equal(t, KeyEscape, evs[0].Key)
	assert.Equal(t, '[', evs[1].Rune)
	assert.Equal(t, '1', evs[2].Rune)
	assert.Equal(t, ';', evs[3].Rune)
}

func TestDecoder_UnknownSequencesSwallowed(t *testing.T) {
	evs := decodeAll(t, "\x1b[99X\x1b[?1;2ca\x1bOZb")
	require.Len(t, evs, 2)
	assert.Equal(t, 'a', evs[0].Rune)
	assert.Equal(t, 'b', evs[1].Rune)
}

func TestDecoder_InvalidUTF8Skipped(t *testing.T) {
	evs := decodeAll(t, "\xffa")
	require.Len(t, evs, 1)
	assert.Equal(t, 'a', evs[0].Rune)
}

func TestKeyNames(t *testing.T) {
	for _, k := range []Key{KeyRune, KeyEscape, KeyF1, KeyF12, KeyCtrlA, KeyCtrlZ, KeyPageDown} {
		name := KeyName(k)
		require.NotEmpty(t, name)
		got, ok := KeyByName(name)
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "ctrl_c", KeyName(KeyCtrlC))
	assert.Equal(t, "f10", KeyName(KeyF10))
	assert.Equal(t, "none", KeyNone.String())

	k, ok := KeyByName("shift_tab")
	assert.True(t, ok)
	assert.Equal(t, KeyBacktab, k)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "ctrl+right", Event{Type: EventKey, Key: KeyRight, Modifiers: ModCtrl}.String())
	assert.Equal(t, "'q'", Event{Type: EventKey, Key: KeyRune, Rune: 'q'}.String())
	assert.Equal(t, "Left Press @3,4", Event{Type: EventMouse, MouseBtn: MouseBtnLeft, MouseAction: MouseActionPress, MouseX: 3, MouseY: 4}.String())
	assert.Equal(t, "resize 24x80", Event{Type: EventResize, Width: 80, Height: 24}.String())
	assert.True(t, Event{Type: EventKey, Key: KeyCtrlC}.IsInterrupt())

	typ, ok := ParseEventType("paste")
	assert.True(t, ok)
	assert.Equal(t, EventPaste, typ)
}
