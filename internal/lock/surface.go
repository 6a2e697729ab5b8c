package lock

import (
	"errors"
	"fmt"
	"sync"

	"github.com/VimYoung/spell-widgets/internal/buffer"
	"github.com/VimYoung/spell-widgets/internal/surface"
)

// ErrTransport mirrors internal/surface.ErrTransport for the lock
// surface's own compositor-teardown case.
var ErrTransport = errors.New("lock: transport lost")

// Renderer is the same paint contract internal/surface.Adapter uses;
// one renderer per output's lock surface.
type Renderer = surface.Renderer

// wlSurface is the wl_surface subset a lock surface drives — the same
// request set internal/surface.Adapter uses, minus the input/opaque
// region calls a modal lock surface has no use for — keyboard focus is
// inherent to a lock surface, not governed by region or keyboard-mode
// like a layer surface.
type wlSurface interface {
	Attach(buf buffer.Handle, x, y int32) error
	Damage(x, y, width, height int32) error
	Commit() error
	Destroy() error
	Frame(done func()) error
}

// wlLockSurface is the subset of ext_session_lock_surface_v1 driven here:
// ack_configure and destroy (configure's width/height arrive as OnConfigure
// arguments, since the real event carries them).
type wlLockSurface interface {
	AckConfigure(serial uint32) error
	Destroy() error
}

// Surface binds one output's ext_session_lock_surface_v1 to a buffer
// broker sized to that output's logical size.
// It follows the exact paint/attach/damage/
// frame-reschedule sequence internal/surface.Adapter.OnFrame uses,
// simplified because a lock surface has no hidden state, no anchors, no
// keyboard-interactivity request and no region management.
type Surface struct {
	mu sync.Mutex

	output   string
	wlSurf   wlSurface
	wlLock   wlLockSurface
	broker   *buffer.Broker
	renderer Renderer

	firstConfigure bool
	destroyed      bool
}

// NewSurface binds surf/lockSurf to broker for the named output. broker
// must already be sized to the output's logical width/height.
func NewSurface(output string, surf wlSurface, lockSurf wlLockSurface, broker *buffer.Broker, renderer Renderer) *Surface {
	return &Surface{
		output:         output,
		wlSurf:         surf,
		wlLock:         lockSurf,
		broker:         broker,
		renderer:       renderer,
		firstConfigure: true,
	}
}

// OnConfigure handles ext_session_lock_surface_v1.configure: ack it and
// run the same paint/attach/damage/commit sequence a layer surface runs.
func (s *Surface) OnConfigure(serial uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.wlLock.AckConfigure(serial); err != nil {
		return fmt.Errorf("lock: ack_configure: %w", err)
	}
	return s.paintAndAttachLocked()
}

// OnFrame handles a wl_surface.frame callback, identical in structure to
// internal/surface.Adapter.OnFrame but without a hidden-state check (a
// lock surface is never hidden).
func (s *Surface) OnFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	needs := s.firstConfigure || (s.renderer != nil && s.renderer.NeedsRedraw())
	if !needs {
		return s.scheduleFrameLocked()
	}
	return s.paintAndAttachLocked()
}

// paintAndAttachLocked runs one paint/publish/attach/damage/commit cycle
// and requests the next frame callback, keeping the cadence alive.
func (s *Surface) paintAndAttachLocked() error {
	dst := s.broker.AcquireWrite()
	if s.renderer != nil {
		s.renderer.Paint(dst, int(s.broker.Width()), int(s.broker.Height()), int(s.broker.Stride()))
	}
	handle, err := s.broker.Publish()
	if errors.Is(err, buffer.ErrBackpressure) {
		return s.scheduleFrameLocked()
	}
	if err != nil {
		return fmt.Errorf("lock: publish: %w", err)
	}
	if err := s.wlSurf.Attach(handle, 0, 0); err != nil {
		return fmt.Errorf("lock: attach: %w", err)
	}
	if err := s.wlSurf.Damage(0, 0, s.broker.Width(), s.broker.Height()); err != nil {
		return fmt.Errorf("lock: damage: %w", err)
	}
	if err := s.wlSurf.Commit(); err != nil {
		return fmt.Errorf("lock: commit: %w", err)
	}
	s.firstConfigure = false
	return s.scheduleFrameLocked()
}

func (s *Surface) scheduleFrameLocked() error {
	return s.wlSurf.Frame(func() { _ = s.OnFrame() })
}

// OnClosed is fatal only to this output's surface, not to its siblings.
func (s *Surface) OnClosed() error {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
	return ErrTransport
}

// Output returns the output name this surface is bound to.
func (s *Surface) Output() string { return s.output }

// Destroy tears down the lock surface and wl_surface.
func (s *Surface) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.broker.Close()
	if err := s.wlLock.Destroy(); err != nil {
		return err
	}
	return s.wlSurf.Destroy()
}
