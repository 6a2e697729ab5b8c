package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScrollPolarity: with natural scroll off the translator
// negates both axis deltas; with it true, deltas pass through unchanged.
func TestScrollPolarity(t *testing.T) {
	natural := New(true)
	ev := natural.PointerAxis(1.5, -2.0)
	require.Equal(t, 1.5, ev.DeltaX)
	require.Equal(t, -2.0, ev.DeltaY)

	inverted := New(false)
	ev = inverted.PointerAxis(1.5, -2.0)
	require.Equal(t, -1.5, ev.DeltaX)
	require.Equal(t, 2.0, ev.DeltaY)
}

func TestPointerEnterRecordsSerialAndRequestsPointerShape(t *testing.T) {
	tr := New(true)
	shape := tr.PointerEnter(42)
	require.Equal(t, ShapePointer, shape)
	require.EqualValues(t, 42, tr.EnterSerial())
}

func TestPointerButtonOnlyEverLeft(t *testing.T) {
	tr := New(true)
	pressed := tr.PointerButton(1, 2, true)
	require.Equal(t, PointerPressed, pressed.Kind)
	require.Equal(t, "left", pressed.Button)

	released := tr.PointerButton(1, 2, false)
	require.Equal(t, PointerReleased, released.Kind)
	require.Equal(t, "left", released.Button)
}

func TestKeyEventPrintableRunePreferred(t *testing.T) {
	tr := New(true)
	ev := tr.KeyEvent('a', true)
	require.Equal(t, KeyPressed, ev.Kind)
	require.Equal(t, "a", ev.Text)
}

func TestKeyEventControlKeyFallback(t *testing.T) {
	tr := New(true)
	ev := tr.KeyEvent(0xff0d, true) // Return/Enter keysym
	require.Equal(t, "Enter", ev.Text)

	ev = tr.KeyEvent(0xff1b, false)
	require.Equal(t, KeyReleased, ev.Kind)
	require.Equal(t, "Escape", ev.Text)
}

func TestKeyEventUnknownSymbolYieldsEmptyText(t *testing.T) {
	tr := New(true)
	ev := tr.KeyEvent(0xdeadbeef, true)
	require.Equal(t, "", ev.Text)
}

func TestModifiersRoundTrip(t *testing.T) {
	tr := New(true)
	tr.UpdateModifiers(Modifiers{Ctrl: true, Shift: true})
	require.Equal(t, Modifiers{Ctrl: true, Shift: true}, tr.Modifiers())
}

func TestResolveCursorShapeNoneFallsBackToDefault(t *testing.T) {
	require.Equal(t, ShapeDefault, ResolveCursorShape("none"))
	require.Equal(t, ShapeDefault, ResolveCursorShape("not-a-real-shape"))
	require.Equal(t, ShapePointer, ResolveCursorShape("pointer"))
}
