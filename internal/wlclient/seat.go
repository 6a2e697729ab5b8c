// Seat input wiring for the solo-widget path: bind wl_pointer and
// wl_keyboard off the seat's capability announcements and forward their
// events through an input.Translator to the toolkit's event sink.

package wlclient

import (
	"errors"
	"image"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	cursorshape "github.com/rajveermalviya/go-wayland/wayland/staging/cursor-shape-v1"

	"github.com/VimYoung/spell-widgets/internal/input"
	"github.com/VimYoung/spell-widgets/internal/surface"
)

// EventSink receives the translated toolkit events.
type EventSink func(input.Event)

// SeatBinding owns one seat's pointer/keyboard proxies and their
// cursor-shape device, gating delivery on the adapter's input region
// (pointer presses) and keyboard mode (keys).
type SeatBinding struct {
	g       *Globals
	adapter *surface.Adapter
	tr      *input.Translator
	deliver EventSink

	pointer  *client.Pointer
	keyboard *client.Keyboard
	cursor   *cursorshape.WpCursorShapeDeviceV1

	// last pointer position, surface-local; wl_pointer.button carries no
	// coordinates of its own.
	x, y float64
}

// BindSeat arms the seat's capability handler so pointer/keyboard attach
// and detach as the compositor announces them.
func BindSeat(g *Globals, adapter *surface.Adapter, tr *input.Translator, deliver EventSink) (*SeatBinding, error) {
	if g.Seat == nil {
		return nil, errors.New("wlclient: no wl_seat global")
	}
	b := &SeatBinding{g: g, adapter: adapter, tr: tr, deliver: deliver}
	g.Seat.SetCapabilitiesHandler(b.handleCapabilities)
	return b, nil
}

func (b *SeatBinding) handleCapabilities(e client.SeatCapabilitiesEvent) {
	havePointer := uint32(e.Capabilities)&uint32(client.SeatCapabilityPointer) != 0
	if havePointer && b.pointer == nil {
		b.attachPointer()
	}
	if !havePointer && b.pointer != nil {
		b.releasePointer()
	}

	haveKeyboard := uint32(e.Capabilities)&uint32(client.SeatCapabilityKeyboard) != 0
	if haveKeyboard && b.keyboard == nil {
		b.attachKeyboard()
	}
	if !haveKeyboard && b.keyboard != nil {
		b.releaseKeyboard()
	}
}

func (b *SeatBinding) attachPointer() {
	pointer, err := b.g.Seat.GetPointer()
	if err != nil {
		return
	}
	b.pointer = pointer
	if b.g.CursorMgr != nil {
		if dev, err := b.g.CursorMgr.GetPointer(pointer); err == nil {
			b.cursor = dev
		}
	}

	pointer.SetEnterHandler(func(e client.PointerEnterEvent) {
		b.x, b.y = e.SurfaceX, e.SurfaceY
		b.setShape(b.tr.PointerEnter(e.Serial))
	})
	pointer.SetLeaveHandler(func(e client.PointerLeaveEvent) {
		b.deliver(b.tr.PointerLeave())
	})
	pointer.SetMotionHandler(func(e client.PointerMotionEvent) {
		b.x, b.y = e.SurfaceX, e.SurfaceY
		b.deliver(b.tr.PointerMotion(e.SurfaceX, e.SurfaceY))
	})
	pointer.SetButtonHandler(func(e client.PointerButtonEvent) {
		// The compositor honours the committed input region, but a region
		// edit may not have reached it yet; never deliver presses the
		// current region excludes.
		if !b.adapter.InputRegion().Contains(image.Pt(int(b.x), int(b.y))) {
			return
		}
		pressed := uint32(e.State) == uint32(client.PointerButtonStatePressed)
		b.deliver(b.tr.PointerButton(b.x, b.y, pressed))
	})
	pointer.SetAxisHandler(func(e client.PointerAxisEvent) {
		var dx, dy float64
		if uint32(e.Axis) == uint32(client.PointerAxisHorizontalScroll) {
			dx = e.Value
		} else {
			dy = e.Value
		}
		b.deliver(b.tr.PointerAxis(dx, dy))
	})
}

func (b *SeatBinding) attachKeyboard() {
	keyboard, err := b.g.Seat.GetKeyboard()
	if err != nil {
		return
	}
	b.keyboard = keyboard

	keyboard.SetKeyHandler(func(e client.KeyboardKeyEvent) {
		if b.adapter.KeyboardMode() == surface.KeyboardNone {
			return
		}
		sym, ok := evdevKeysyms[e.Key]
		if !ok {
			return
		}
		pressed := uint32(e.State) == uint32(client.KeyboardKeyStatePressed)
		b.deliver(b.tr.KeyEvent(sym, pressed))
	})
	keyboard.SetModifiersHandler(func(e client.KeyboardModifiersEvent) {
		mods := e.ModsDepressed | e.ModsLatched
		b.tr.UpdateModifiers(input.Modifiers{
			Shift: mods&0x01 != 0,
			Ctrl:  mods&0x04 != 0,
			Alt:   mods&0x08 != 0,
			Meta:  mods&0x40 != 0,
		})
	})
}

// SetCursor resolves a user-facing shape name and requests it from the
// compositor using the serial of the pointer's current enter event.
func (b *SeatBinding) SetCursor(name string) {
	b.setShape(input.ResolveCursorShape(name))
}

func (b *SeatBinding) setShape(shape input.CursorShape) {
	if b.cursor == nil {
		return
	}
	_ = b.cursor.SetShape(b.tr.EnterSerial(), shape.Protocol())
}

func (b *SeatBinding) releasePointer() {
	if b.cursor != nil {
		_ = b.cursor.Destroy()
		b.cursor = nil
	}
	_ = b.pointer.Release()
	b.pointer = nil
}

func (b *SeatBinding) releaseKeyboard() {
	_ = b.keyboard.Release()
	b.keyboard = nil
}

// Close releases whatever devices are currently attached.
func (b *SeatBinding) Close() {
	if b.pointer != nil {
		b.releasePointer()
	}
	if b.keyboard != nil {
		b.releaseKeyboard()
	}
}

// evdevKeysyms maps the evdev keycodes wl_keyboard.key carries onto
// xkb keysyms for a fixed US layout: the unshifted printable keys plus
// the named control keys the translator knows. Shift does not change the
// keysym, so uppercase letters and shifted symbols are never produced
// here. A full xkb keymap is the
// external toolkit's business, not the runtime's.
var evdevKeysyms = map[uint32]uint32{
	1:  0xff1b, // Esc
	2:  '1',
	3:  '2',
	4:  '3',
	5:  '4',
	6:  '5',
	7:  '6',
	8:  '7',
	9:  '8',
	10: '9',
	11: '0',
	12: '-',
	13: '=',
	14: 0xff08, // Backspace
	15: 0xff09, // Tab
	16: 'q',
	17: 'w',
	18: 'e',
	19: 'r',
	20: 't',
	21: 'y',
	22: 'u',
	23: 'i',
	24: 'o',
	25: 'p',
	26: '[',
	27: ']',
	28: 0xff0d, // Enter
	29: 0xffe3, // left Ctrl
	30: 'a',
	31: 's',
	32: 'd',
	33: 'f',
	34: 'g',
	35: 'h',
	36: 'j',
	37: 'k',
	38: 'l',
	39: ';',
	40: '\'',
	41: '`',
	42: 0xffe1, // left Shift
	43: '\\',
	44: 'z',
	45: 'x',
	46: 'c',
	47: 'v',
	48: 'b',
	49: 'n',
	50: 'm',
	51: ',',
	52: '.',
	53: '/',
	54: 0xffe2, // right Shift
	56: 0xffe9, // left Alt
	57: ' ',
	59: 0xffbe, // F1
	60: 0xffbf,
	61: 0xffc0,
	62: 0xffc1,
	63: 0xffc2,
	64: 0xffc3,
	65: 0xffc4,
	66: 0xffc5,
	67: 0xffc6,
	68: 0xffc7, // F10
	87: 0xffc8, // F11
	88: 0xffc9, // F12

	97:  0xffe4, // right Ctrl
	100: 0xffea, // right Alt
	102: 0xff50, // Home
	103: 0xff52, // Up
	104: 0xff55, // PageUp
	105: 0xff51, // Left
	106: 0xff53, // Right
	107: 0xff57, // End
	108: 0xff54, // Down
	109: 0xff56, // PageDown
	111: 0xffff, // Delete
	125: 0xffeb, // left Meta
	126: 0xffec, // right Meta
}
