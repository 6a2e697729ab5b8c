// Package input translates raw Wayland seat events (pointer, keyboard,
// cursor-shape requests) into the toolkit window events the external
// renderer consumes.
package input

import (
	"unicode"
)

// EventKind tags the toolkit-facing event variants.
type EventKind int

const (
	PointerMoved EventKind = iota
	PointerPressed
	PointerReleased
	PointerExited
	PointerScrolled
	KeyPressed
	KeyReleased
)

// Event is the single toolkit-facing event type the translator emits.
// Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	// PointerMoved / PointerPressed / PointerReleased
	X, Y float64
	// PointerPressed/Released button, always "left" — multi-button
	// support is out of scope.
	Button string

	// PointerScrolled
	DeltaX, DeltaY float64

	// KeyPressed / KeyReleased
	Text string
}

// Modifiers is the modifier snapshot the translator retains for later
// interpretation.
type Modifiers struct {
	Ctrl, Shift, Alt, Meta bool
}

// Translator holds the seat-scoped state needed to translate events:
// the last pointer-enter serial, the configured natural-scroll polarity,
// and the last modifier snapshot. One Translator is owned per surface
// adapter.
type Translator struct {
	naturalScroll bool
	enterSerial   uint32
	modifiers     Modifiers
}

// New returns a Translator configured with WidgetConfig.NaturalScroll.
func New(naturalScroll bool) *Translator {
	return &Translator{naturalScroll: naturalScroll}
}

// PointerEnter records the enter serial for later cursor-shape requests
// and returns the default cursor shape to request. It emits no toolkit
// event.
func (t *Translator) PointerEnter(serial uint32) CursorShape {
	t.enterSerial = serial
	return ShapePointer
}

// EnterSerial returns the most recently recorded pointer-enter serial,
// needed by SetCursor to issue a cursor-shape-v1 request (the protocol
// requires the serial from the enter event currently in scope).
func (t *Translator) EnterSerial() uint32 { return t.enterSerial }

// PointerMotion emits PointerMoved with surface-local logical coordinates.
func (t *Translator) PointerMotion(x, y float64) Event {
	return Event{Kind: PointerMoved, X: x, Y: y}
}

// PointerButton emits PointerPressed or PointerReleased. Only the left
// button is modeled.
func (t *Translator) PointerButton(x, y float64, pressed bool) Event {
	kind := PointerReleased
	if pressed {
		kind = PointerPressed
	}
	return Event{Kind: kind, X: x, Y: y, Button: "left"}
}

// PointerLeave emits PointerExited.
func (t *Translator) PointerLeave() Event {
	return Event{Kind: PointerExited}
}

// PointerAxis emits PointerScrolled, negating both deltas when
// NaturalScroll is false.
func (t *Translator) PointerAxis(deltaX, deltaY float64) Event {
	if !t.naturalScroll {
		deltaX, deltaY = -deltaX, -deltaY
	}
	return Event{Kind: PointerScrolled, DeltaX: deltaX, DeltaY: deltaY}
}

// UpdateModifiers stores the modifier snapshot for later interpretation.
func (t *Translator) UpdateModifiers(m Modifiers) {
	t.modifiers = m
}

// Modifiers returns the last-recorded modifier snapshot.
func (t *Translator) Modifiers() Modifiers { return t.modifiers }

// KeyEvent derives the textual payload for a key symbol: a printable
// rune if the symbol carries one, otherwise the named control-string
// table. pressed selects KeyPressed vs KeyReleased.
func (t *Translator) KeyEvent(sym uint32, pressed bool) Event {
	kind := KeyReleased
	if pressed {
		kind = KeyPressed
	}
	return Event{Kind: kind, Text: keyText(sym)}
}

func keyText(sym uint32) string {
	if r, ok := printableRune(sym); ok {
		return string(r)
	}
	if name, ok := controlKeyNames[sym]; ok {
		return name
	}
	return ""
}

// printableRune decodes the xkbcommon keysym space for the printable
// Latin-1/Unicode subset used by this runtime: keysyms 0x20-0x7e map
// directly onto ASCII, and the 0x01000000+codepoint range (the
// "Unicode keysym" convention) maps onto that codepoint directly.
func printableRune(sym uint32) (rune, bool) {
	switch {
	case sym >= 0x20 && sym <= 0x7e:
		r := rune(sym)
		if unicode.IsPrint(r) {
			return r, true
		}
	case sym >= 0x01000100 && sym <= 0x0110ffff:
		r := rune(sym - 0x01000000)
		if unicode.IsPrint(r) {
			return r, true
		}
	}
	return 0, false
}

// controlKeyNames maps the xkbcommon keysyms for non-printable named
// control keys onto the platform's synthetic-key strings.
var controlKeyNames = map[uint32]string{
	0xff0d: "Enter",
	0xff1b: "Escape",
	0xff09: "Tab",
	0xff08: "Backspace",
	0xff51: "ArrowLeft",
	0xff53: "ArrowRight",
	0xff52: "ArrowUp",
	0xff54: "ArrowDown",
	0xff50: "Home",
	0xff57: "End",
	0xff55: "PageUp",
	0xff56: "PageDown",
	0xffff: "Delete",
	0xffe3: "Control",
	0xffe4: "Control",
	0xffe1: "Shift",
	0xffe2: "Shift",
	0xffe9: "Alt",
	0xffea: "Alt",
	0xffeb: "Meta",
	0xffec: "Meta",
	0xffbe: "F1",
	0xffbf: "F2",
	0xffc0: "F3",
	0xffc1: "F4",
	0xffc2: "F5",
	0xffc3: "F6",
	0xffc4: "F7",
	0xffc5: "F8",
	0xffc6: "F9",
	0xffc7: "F10",
	0xffc8: "F11",
	0xffc9: "F12",
}
