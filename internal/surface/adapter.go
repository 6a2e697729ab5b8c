package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/VimYoung/spell-widgets/internal/buffer"
	"github.com/VimYoung/spell-widgets/internal/region"
)

// ErrTransport is returned when the compositor tears down a surface out
// from under its adapter; it is fatal to the owning widget
// only, not to siblings.
var ErrTransport = errors.New("surface: transport lost")

// Renderer is the external GUI toolkit's paint contract: it decides
// whether a redraw is needed and paints a BGRA8888 frame into dst given
// dst's width/height/stride.
type Renderer interface {
	NeedsRedraw() bool
	Paint(dst []byte, width, height, stride int)
}

// wlSurface is the subset of wl_surface the adapter drives.
type wlSurface interface {
	Attach(buf buffer.Handle, x, y int32) error
	Damage(x, y, width, height int32) error
	Commit() error
	SetInputRegion(r WlRegion) error
	SetOpaqueRegion(r WlRegion) error
	Destroy() error
	Frame(done func()) error
}

// wlCompositor is the subset of wl_compositor the adapter uses to build
// the wl_region objects set_input_region/set_opaque_region require.
type wlCompositor interface {
	CreateRegion() (WlRegion, error)
}

// WlRegion is the subset of wl_region; per protocol it may be destroyed
// right after the set_input_region/set_opaque_region request that
// references it (the compositor keeps its own copy of the point set).
// Exported so protocol bindings outside this package can hand their own
// region wrappers to the surface contract.
type WlRegion interface {
	Add(x, y, width, height int32) error
	Destroy() error
}

// wlLayerSurface is the subset of zwlr_layer_surface_v1 the adapter
// drives, named after the real protocol's request set (set_size,
// set_anchor, set_margin, set_exclusive_zone, set_keyboard_interactivity,
// set_layer, ack_configure, destroy; configure/closed events).
type wlLayerSurface interface {
	SetSize(width, height uint32) error
	SetAnchor(anchor uint32) error
	SetMargin(top, right, bottom, left int32) error
	SetExclusiveZone(zone int32) error
	SetKeyboardInteractivity(mode uint32) error
	SetLayer(layer uint32) error
	AckConfigure(serial uint32) error
	Destroy() error
}

// Adapter binds one layer surface to a buffer broker.
// Only the widget host may mutate visibility/regions/focus flags;
// only the renderer may mutate buffer bytes (via Renderer.Paint, invoked
// from within the adapter on the loop thread); firstConfigure/needsRedraw
// are mutated by the configure/frame handlers and by Show.
type Adapter struct {
	mu sync.Mutex

	name     string
	config   *Config
	renderer Renderer

	wlSurf       wlSurface
	wlLayer      wlLayerSurface
	compositor   wlCompositor
	broker       *buffer.Broker
	inputRegion  *region.Set
	opaqueRegion *region.Set

	firstConfigure bool
	hidden         bool
	needsRedraw    bool
	destroyed      bool

	keyboardMode KeyboardMode
}

// New binds a layer surface for name using config, wiring the anchor,
// margin, layer tier, keyboard mode and exclusive-zone policy.
// surf/layer are already-created protocol proxies (constructed by
// the caller via wlclient against the real connection, or by tests via
// fakes); broker must already be sized to config.Width x config.Height.
func New(name string, config *Config, surf wlSurface, layer wlLayerSurface, compositor wlCompositor, broker *buffer.Broker, renderer Renderer) (*Adapter, error) {
	a := &Adapter{
		name:           name,
		config:         config,
		renderer:       renderer,
		wlSurf:         surf,
		wlLayer:        layer,
		compositor:     compositor,
		broker:         broker,
		inputRegion:    region.NewSet(),
		opaqueRegion:   region.NewSet(),
		keyboardMode:   config.Keyboard,
		firstConfigure: true,
	}
	// Full-rectangle input region by default.
	a.inputRegion.Add(fullRect(config))

	if err := layer.SetSize(config.Width, config.Height); err != nil {
		return nil, fmt.Errorf("surface: set_size: %w", err)
	}
	if err := layer.SetAnchor(anchorMask(config)); err != nil {
		return nil, fmt.Errorf("surface: set_anchor: %w", err)
	}
	m := config.Margin
	if err := layer.SetMargin(m.Top, m.Right, m.Bottom, m.Left); err != nil {
		return nil, fmt.Errorf("surface: set_margin: %w", err)
	}
	if err := layer.SetLayer(layerValue(config.Layer)); err != nil {
		return nil, fmt.Errorf("surface: set_layer: %w", err)
	}
	if err := layer.SetKeyboardInteractivity(keyboardValue(config.Keyboard)); err != nil {
		return nil, fmt.Errorf("surface: set_keyboard_interactivity: %w", err)
	}
	if err := layer.SetExclusiveZone(config.resolvedExclusiveZone()); err != nil {
		return nil, fmt.Errorf("surface: set_exclusive_zone: %w", err)
	}
	if err := a.commitRegions(); err != nil {
		return nil, err
	}
	if err := surf.Commit(); err != nil {
		return nil, fmt.Errorf("surface: commit: %w", err)
	}
	return a, nil
}

func fullRect(c *Config) image.Rectangle {
	return image.Rect(0, 0, int(c.Width), int(c.Height))
}

// anchorMask converts Config.Anchors into the zwlr_layer_surface_v1
// anchor bitmask (top=1, bottom=2, left=4, right=8, per the wlr-layer-
// shell-unstable-v1 protocol XML).
func anchorMask(c *Config) uint32 {
	var mask uint32
	for _, a := range c.Anchors {
		if a == nil {
			continue
		}
		switch *a {
		case Top:
			mask |= 1
		case Bottom:
			mask |= 2
		case Left:
			mask |= 4
		case Right:
			mask |= 8
		}
	}
	return mask
}

func layerValue(l LayerTier) uint32 {
	switch l {
	case LayerBackground:
		return 0
	case LayerBottom:
		return 1
	case LayerTop:
		return 2
	case LayerOverlay:
		return 3
	default:
		return 2
	}
}

func keyboardValue(k KeyboardMode) uint32 {
	switch k {
	case KeyboardNone:
		return 0
	case KeyboardOnDemand:
		return 1
	case KeyboardExclusive:
		return 2
	default:
		return 0
	}
}

// OnConfigure handles a zwlr_layer_surface_v1.configure event: ack it,
// and if hidden do nothing further (a hidden surface skips renderer and
// attachment but still responds to configure); otherwise redraw, attach
// and start the frame cadence.
func (a *Adapter) OnConfigure(serial uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.wlLayer.AckConfigure(serial); err != nil {
		return fmt.Errorf("surface: ack_configure: %w", err)
	}
	if a.hidden {
		return nil
	}
	return a.paintAndAttachLocked()
}

// OnClosed handles a zwlr_layer_surface_v1.closed event: fatal to this
// widget only.
func (a *Adapter) OnClosed() error {
	a.mu.Lock()
	a.destroyed = true
	a.mu.Unlock()
	return ErrTransport
}

// OnFrame handles a wl_surface.frame callback: ask the renderer whether
// it needs a redraw; if yes or on first configure, damage the full
// buffer, attach the newly published handle, commit, and schedule the
// next frame. Skipped while hidden.
func (a *Adapter) OnFrame() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hidden {
		return nil
	}
	needs := a.firstConfigure || (a.renderer != nil && a.renderer.NeedsRedraw())
	if !needs {
		a.needsRedraw = false
		return a.scheduleFrame()
	}
	return a.paintAndAttachLocked()
}

// paintAndAttachLocked runs one paint/publish/attach/damage/commit cycle
// and requests the next frame callback, keeping the cadence alive.
func (a *Adapter) paintAndAttachLocked() error {
	dst := a.broker.AcquireWrite()
	if a.renderer != nil {
		a.renderer.Paint(dst, int(a.config.Width), int(a.config.Height), int(a.broker.Stride()))
	}
	handle, err := a.broker.Publish()
	if errors.Is(err, buffer.ErrBackpressure) {
		// Skip this frame; the compositor hasn't released the prior
		// attachment yet. Not an error condition.
		return a.scheduleFrame()
	}
	if err != nil {
		return fmt.Errorf("surface: publish: %w", err)
	}
	if err := a.wlSurf.Attach(handle, 0, 0); err != nil {
		return fmt.Errorf("surface: attach: %w", err)
	}
	if err := a.wlSurf.Damage(0, 0, int32(a.config.Width), int32(a.config.Height)); err != nil {
		return fmt.Errorf("surface: damage: %w", err)
	}
	if err := a.wlSurf.Commit(); err != nil {
		return fmt.Errorf("surface: commit: %w", err)
	}
	a.firstConfigure = false
	a.needsRedraw = false
	return a.scheduleFrame()
}

func (a *Adapter) scheduleFrame() error {
	return a.wlSurf.Frame(func() { _ = a.OnFrame() })
}

// SetInputRegion additively/subtractively edits the input region in
// surface-local coordinates and commits the change. add/sub may each be
// nil.
func (a *Adapter) SetInputRegion(add, sub *image.Rectangle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if add != nil {
		a.inputRegion.Add(*add)
	}
	if sub != nil {
		a.inputRegion.Subtract(*sub)
	}
	if err := a.commitRegions(); err != nil {
		return err
	}
	return a.wlSurf.Commit()
}

// SetOpaqueRegion mirrors SetInputRegion for the opaque region.
func (a *Adapter) SetOpaqueRegion(add, sub *image.Rectangle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if add != nil {
		a.opaqueRegion.Add(*add)
	}
	if sub != nil {
		a.opaqueRegion.Subtract(*sub)
	}
	if err := a.commitRegions(); err != nil {
		return err
	}
	return a.wlSurf.Commit()
}

// buildRegion turns a region.Set into a compositor-side wl_region,
// destroyed by the caller once it has been passed to set_input_region or
// set_opaque_region.
func (a *Adapter) buildRegion(set *region.Set) (WlRegion, error) {
	r, err := a.compositor.CreateRegion()
	if err != nil {
		return nil, fmt.Errorf("surface: create_region: %w", err)
	}
	for _, rect := range set.Rects() {
		if err := r.Add(int32(rect.Min.X), int32(rect.Min.Y), int32(rect.Dx()), int32(rect.Dy())); err != nil {
			return nil, fmt.Errorf("surface: region add: %w", err)
		}
	}
	return r, nil
}

func (a *Adapter) commitRegions() error {
	inputRegion, err := a.buildRegion(a.inputRegion)
	if err != nil {
		return err
	}
	defer inputRegion.Destroy()
	if err := a.wlSurf.SetInputRegion(inputRegion); err != nil {
		return fmt.Errorf("surface: set_input_region: %w", err)
	}

	opaqueRegion, err := a.buildRegion(a.opaqueRegion)
	if err != nil {
		return err
	}
	defer opaqueRegion.Destroy()
	if err := a.wlSurf.SetOpaqueRegion(opaqueRegion); err != nil {
		return fmt.Errorf("surface: set_opaque_region: %w", err)
	}
	return nil
}

// InputRegion exposes the current input region for the input translator's
// pointer-delivery gate.
func (a *Adapter) InputRegion() *region.Set {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inputRegion
}

// SetExclusiveZone mutates the exclusive-zone protocol property and
// commits. A user-set value always overrides the anchor-derived default.
func (a *Adapter) SetExclusiveZone(px int32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	// Copy rather than write through: the caller's Config stays unchanged.
	cfg := *a.config
	cfg.ExclusiveZone = &px
	a.config = &cfg
	if err := a.wlLayer.SetExclusiveZone(px); err != nil {
		return fmt.Errorf("surface: set_exclusive_zone: %w", err)
	}
	return a.wlSurf.Commit()
}

// GrabFocus sets keyboard-interactivity to Exclusive and commits.
func (a *Adapter) GrabFocus() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keyboardMode = KeyboardExclusive
	if err := a.wlLayer.SetKeyboardInteractivity(keyboardValue(KeyboardExclusive)); err != nil {
		return err
	}
	return a.wlSurf.Commit()
}

// ReleaseFocus sets keyboard-interactivity to None and commits.
func (a *Adapter) ReleaseFocus() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keyboardMode = KeyboardNone
	if err := a.wlLayer.SetKeyboardInteractivity(keyboardValue(KeyboardNone)); err != nil {
		return err
	}
	return a.wlSurf.Commit()
}

// KeyboardMode reports the adapter's current keyboard-interactivity,
// consulted by the input translator to decide whether key events should
// be delivered.
func (a *Adapter) KeyboardMode() KeyboardMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keyboardMode
}

// Hide attaches a null buffer and commits, retaining arenas so Show is
// cheap.
func (a *Adapter) Hide() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hidden {
		return nil
	}
	a.hidden = true
	if err := a.wlSurf.Attach(nil, 0, 0); err != nil {
		return fmt.Errorf("surface: attach(null): %w", err)
	}
	return a.wlSurf.Commit()
}

// Show re-sends the configuration (size, anchor, margin, keyboard mode,
// exclusive zone, regions), then repaints, publishes, attaches with full
// damage and commits at once. firstConfigure is set for that repaint and
// cleared again once it publishes; it stays set only when the publish
// is back-pressured, so the next frame callback repaints in full.
func (a *Adapter) Show() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hidden {
		return nil
	}
	a.hidden = false
	a.firstConfigure = true

	if err := a.wlLayer.SetSize(a.config.Width, a.config.Height); err != nil {
		return err
	}
	if err := a.wlLayer.SetAnchor(anchorMask(a.config)); err != nil {
		return err
	}
	m := a.config.Margin
	if err := a.wlLayer.SetMargin(m.Top, m.Right, m.Bottom, m.Left); err != nil {
		return err
	}
	if err := a.wlLayer.SetKeyboardInteractivity(keyboardValue(a.keyboardMode)); err != nil {
		return err
	}
	if err := a.wlLayer.SetExclusiveZone(a.config.resolvedExclusiveZone()); err != nil {
		return err
	}
	if err := a.commitRegions(); err != nil {
		return err
	}
	return a.paintAndAttachLocked()
}

// Hidden reports whether the adapter is currently hidden.
func (a *Adapter) Hidden() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hidden
}

// Destroy tears down the layer surface and wl_surface.
func (a *Adapter) Destroy() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return nil
	}
	a.destroyed = true
	a.broker.Close()
	if err := a.wlLayer.Destroy(); err != nil {
		return err
	}
	return a.wlSurf.Destroy()
}

// Name returns the widget name this adapter was created for.
func (a *Adapter) Name() string { return a.name }
