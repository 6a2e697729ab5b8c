package surface

import (
	"fmt"
	"sync"
)

// fractionalScale is the subset of wp_fractional_scale_v1 the adapter's
// optional scale binding drives.
type fractionalScale interface {
	Destroy() error
}

// viewport is the subset of wp_viewport the adapter's scale binding
// drives.
type viewport interface {
	SetSource(x, y, width, height float64) error
	SetDestination(width, height int32) error
	Destroy() error
}

// ScaleBinding pairs one surface's wp_fractional_scale_v1 and wp_viewport
// objects, letting a widget render at the compositor's preferred
// fractional scale instead of always assuming integer scale-1.
// Optional: a widget that never binds one simply renders at logical
// size, matching every other layer surface's default behaviour.
type ScaleBinding struct {
	mu        sync.Mutex
	scale     *fractionalScaleHandle
	viewport  viewport
	preferred uint32 // denominator 120, per wp_fractional_scale_v1
}

// fractionalScaleHandle wraps the wp_fractional_scale_v1 proxy. The
// preferred_scale handler is installed on the proxy by the caller after
// NewScaleBinding returns.
type fractionalScaleHandle struct {
	proxy fractionalScale
}

// NewScaleBinding constructs a ScaleBinding over an already-created
// wp_fractional_scale_v1 (scale) and wp_viewport (vp) pair; the caller
// (wlclient's binding layer) is responsible for creating both from the
// compositor's wp_fractional_scale_manager_v1/wp_viewporter globals and
// wiring scale's preferred_scale event to b.SetPreferred.
func NewScaleBinding(scale fractionalScale, vp viewport) *ScaleBinding {
	return &ScaleBinding{
		scale:     &fractionalScaleHandle{proxy: scale},
		viewport:  vp,
		preferred: 120, // scale 1.0 until the compositor says otherwise
	}
}

// SetPreferred records the compositor's preferred_scale event value
// (denominator 120: a raw value of 180 means a 1.5x scale). Wired by the
// caller that owns the live wp_fractional_scale_v1 proxy (internal/
// wlclient's BindScale) to this binding's constructor.
func (b *ScaleBinding) SetPreferred(raw uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.preferred = raw
}

// Scale returns the preferred scale as a float64 (e.g. 1.5 for a raw
// event value of 180).
func (b *ScaleBinding) Scale() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(b.preferred) / 120.0
}

// ApplyViewport sets the destination size logicalWidth x logicalHeight
// in surface-local coordinates, so the compositor upscales/downscales
// the buffer's physical pixels to match.
func (b *ScaleBinding) ApplyViewport(logicalWidth, logicalHeight int32) error {
	if b.viewport == nil {
		return fmt.Errorf("surface: no viewport bound")
	}
	return b.viewport.SetDestination(logicalWidth, logicalHeight)
}

// Close tears down both protocol objects.
func (b *ScaleBinding) Close() error {
	if b.viewport != nil {
		if err := b.viewport.Destroy(); err != nil {
			return err
		}
	}
	if b.scale != nil && b.scale.proxy != nil {
		return b.scale.proxy.Destroy()
	}
	return nil
}
