// Package host implements the widget host: it composes a surface
// adapter with an optional ForeignState and serialises every public
// operation onto the widget's own loop so concurrent callers observe
// FIFO ordering.
package host

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/VimYoung/spell-widgets/internal/state"
	"github.com/VimYoung/spell-widgets/internal/surface"
)

// adapter is the subset of *surface.Adapter the host drives; named so
// host_test.go can substitute a fake without a live Wayland connection.
type adapter interface {
	Show() error
	Hide() error
	Hidden() bool
	GrabFocus() error
	ReleaseFocus() error
	SetExclusiveZone(px int32) error
	SetInputRegion(add, sub *image.Rectangle) error
	SetOpaqueRegion(add, sub *image.Rectangle) error
	Destroy() error
}

var _ adapter = (*surface.Adapter)(nil)

// command is one serialised unit of work run on the host's own
// goroutine, preserving FIFO order across callers.
type command struct {
	run  func() error
	done chan error
}

// Host composes one widget's surface adapter and ForeignState and
// exposes the widget's public operation set. It implements
// internal/remote.Target.
type Host struct {
	name    string
	surf    adapter
	state   *state.ForeignState
	inbound chan command

	mu     sync.Mutex
	closed bool
}

// New returns a Host bound to surf and, if provided, foreignState (nil is
// valid for a widget with no remotely settable values).
func New(name string, surf adapter, foreignState *state.ForeignState) *Host {
	if foreignState == nil {
		foreignState = state.New(nil)
	}
	h := &Host{
		name:    name,
		surf:    surf,
		state:   foreignState,
		inbound: make(chan command, 20),
	}
	go h.run()
	return h
}

// run is the host's own goroutine: every public operation below enqueues
// a command here instead of calling the adapter directly, guaranteeing
// FIFO order regardless of caller origin.
func (h *Host) run() {
	for cmd := range h.inbound {
		cmd.done <- cmd.run()
	}
}

func (h *Host) submit(f func() error) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errors.New("host: closed")
	}
	h.mu.Unlock()

	done := make(chan error, 1)
	h.inbound <- command{run: f, done: done}
	return <-done
}

// Show shows the widget's surface.
func (h *Host) Show() error {
	return h.submit(h.surf.Show)
}

// Hide hides the widget's surface.
func (h *Host) Hide() error {
	return h.submit(h.surf.Hide)
}

// Toggle shows a hidden widget or hides a visible one.
func (h *Host) Toggle() error {
	return h.submit(func() error {
		if h.surf.Hidden() {
			return h.surf.Show()
		}
		return h.surf.Hide()
	})
}

// GrabFocus requests exclusive keyboard interactivity.
func (h *Host) GrabFocus() error {
	return h.submit(h.surf.GrabFocus)
}

// ReleaseFocus releases keyboard interactivity.
func (h *Host) ReleaseFocus() error {
	return h.submit(h.surf.ReleaseFocus)
}

// SetExclusiveZone overrides the layer-shell exclusive zone.
func (h *Host) SetExclusiveZone(px int32) error {
	return h.submit(func() error { return h.surf.SetExclusiveZone(px) })
}

// AddInputRegion unions rect into the input region.
func (h *Host) AddInputRegion(rect image.Rectangle) error {
	return h.submit(func() error { return h.surf.SetInputRegion(&rect, nil) })
}

// SubtractInputRegion removes rect from the input region.
func (h *Host) SubtractInputRegion(rect image.Rectangle) error {
	return h.submit(func() error { return h.surf.SetInputRegion(nil, &rect) })
}

// AddOpaqueRegion unions rect into the opaque region.
func (h *Host) AddOpaqueRegion(rect image.Rectangle) error {
	return h.submit(func() error { return h.surf.SetOpaqueRegion(&rect, nil) })
}

// SubtractOpaqueRegion removes rect from the opaque region.
func (h *Host) SubtractOpaqueRegion(rect image.Rectangle) error {
	return h.submit(func() error { return h.surf.SetOpaqueRegion(nil, &rect) })
}

// Kind satisfies internal/remote.Target / internal/state.Controller.
func (h *Host) Kind(key string) (state.Kind, error) {
	return h.state.Kind(key)
}

// Apply satisfies internal/remote.Target / internal/state.Controller:
// it enqueues the parse+store+callback sequence onto the host loop.
func (h *Host) Apply(key, literal string) error {
	var applyErr error
	err := h.submit(func() error {
		applyErr = h.state.Apply(key, literal)
		return nil
	})
	if err != nil {
		return err
	}
	return applyErr
}

// Find satisfies internal/remote.Target / internal/state.Controller.
func (h *Host) Find(key string) (string, error) {
	return h.state.Find(key)
}

// State exposes the ForeignState for direct embedder registration calls
// made before the host starts serving remote requests.
func (h *Host) State() *state.ForeignState { return h.state }

// Name returns the widget name this host was constructed for.
func (h *Host) Name() string { return h.name }

// Close stops the host's command loop and destroys its surface adapter.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.inbound)
	if err := h.surf.Destroy(); err != nil {
		return fmt.Errorf("host: destroy surface: %w", err)
	}
	return nil
}
