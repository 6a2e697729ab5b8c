package wlclient

import (
	"errors"
	"fmt"

	sessionlock "github.com/rajveermalviya/go-wayland/wayland/staging/ext-session-lock-v1"

	"github.com/VimYoung/spell-widgets/internal/buffer"
	"github.com/VimYoung/spell-widgets/internal/lock"
)

// BindLockSession locks the session via ext-session-lock-v1 and creates
// one lock surface, with its own buffer broker, per announced output.
// newRenderer supplies the paint implementation for each output; nil
// leaves the surfaces blank.
func BindLockSession(g *Globals, newRenderer func(*Output) lock.Renderer) (*lock.Session, error) {
	if g.LockMgr == nil {
		return nil, errors.New("wlclient: compositor lacks ext-session-lock-v1")
	}
	lk, err := g.LockMgr.Lock()
	if err != nil {
		return nil, fmt.Errorf("wlclient: lock: %w", err)
	}

	var surfaces []*lock.Surface
	for _, out := range g.Outputs() {
		if out.Width <= 0 || out.Height <= 0 {
			// Mode not yet announced; the compositor will configure the
			// surface with a real size, but the broker needs one now.
			continue
		}
		surf, err := g.Compositor.CreateSurface()
		if err != nil {
			return nil, fmt.Errorf("wlclient: create_surface: %w", err)
		}
		ls, err := lk.GetLockSurface(surf, out.Proxy)
		if err != nil {
			return nil, fmt.Errorf("wlclient: get_lock_surface: %w", err)
		}
		// Logical size: the mode's pixel size divided by the output's
		// integer scale (no buffer scale is set on the lock surface).
		width, height := out.Width, out.Height
		if out.Scale > 1 {
			width, height = width/out.Scale, height/out.Scale
		}
		broker, err := buffer.New(width, height, newPoolFactory(g.Shm))
		if err != nil {
			return nil, err
		}
		var renderer lock.Renderer
		if newRenderer != nil {
			renderer = newRenderer(out)
		}
		s := lock.NewSurface(out.OutputName, &BoundSurface{surf: surf}, &boundLockSurface{ls: ls}, broker, renderer)
		ls.SetConfigureHandler(func(e sessionlock.ExtSessionLockSurfaceV1ConfigureEvent) {
			_ = s.OnConfigure(e.Serial)
		})
		surfaces = append(surfaces, s)
	}
	return lock.NewSession(&boundSessionLock{lk: lk}, surfaces), nil
}

// boundSessionLock adapts *sessionlock.ExtSessionLockV1 to the lock
// package's session contract.
type boundSessionLock struct {
	lk *sessionlock.ExtSessionLockV1
}

func (b *boundSessionLock) UnlockAndDestroy() error { return b.lk.UnlockAndDestroy() }
func (b *boundSessionLock) Destroy() error          { return b.lk.Destroy() }

// boundLockSurface adapts *sessionlock.ExtSessionLockSurfaceV1 to the
// lock package's surface contract.
type boundLockSurface struct {
	ls *sessionlock.ExtSessionLockSurfaceV1
}

func (b *boundLockSurface) AckConfigure(serial uint32) error { return b.ls.AckConfigure(serial) }
func (b *boundLockSurface) Destroy() error                   { return b.ls.Destroy() }
