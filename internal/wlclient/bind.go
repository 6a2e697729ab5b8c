// Bindings turning the real github.com/rajveermalviya/go-wayland/wayland
// proxies into the narrow interfaces internal/surface and internal/buffer
// declare, so a widget can be wired against a live compositor instead of
// the fakes surface/buffer's own tests use.

package wlclient

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/rajveermalviya/go-wayland/wayland/stable/viewporter"
	fractionalscale "github.com/rajveermalviya/go-wayland/wayland/staging/fraction-sclae-v1"
	layershell "github.com/rajveermalviya/go-wayland/wayland/unstable/wlr-layer-shell-v1"

	"github.com/VimYoung/spell-widgets/internal/buffer"
	"github.com/VimYoung/spell-widgets/internal/surface"
)

// Bound groups the live proxies one widget's surface.Adapter needs, along
// with the pool factory its buffer.Broker needs. Configure/Closed events
// are wired by the caller once the Adapter they drive exists (see
// cmd/spell-demo).
type Bound struct {
	Surface      *BoundSurface
	Compositor   *BoundCompositor
	LayerSurface *BoundLayerSurface
	Pool         buffer.PoolFactory
}

// BindLayerSurface creates a wl_surface and its zwlr_layer_surface_v1 for
// namespace on output (nil for compositor-chosen), returning the bound
// proxies surface.New expects plus a buffer.PoolFactory bound to g.Shm.
func BindLayerSurface(g *Globals, namespace string, output *Output) (*Bound, error) {
	surf, err := g.Compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("wlclient: create_surface: %w", err)
	}
	var outProxy *client.Output
	if output != nil {
		outProxy = output.Proxy
	}
	ls, err := g.LayerShell.GetLayerSurface(surf, outProxy, layershell.ZwlrLayerShellV1LayerTop, namespace)
	if err != nil {
		return nil, fmt.Errorf("wlclient: get_layer_surface: %w", err)
	}

	return &Bound{
		Surface:      &BoundSurface{surf: surf},
		Compositor:   &BoundCompositor{compositor: g.Compositor},
		LayerSurface: &BoundLayerSurface{ls: ls},
		Pool:         newPoolFactory(g.Shm),
	}, nil
}

// BoundSurface adapts *client.Surface to the surface package's wlSurface
// contract.
type BoundSurface struct {
	surf *client.Surface
}

func (b *BoundSurface) Attach(buf buffer.Handle, x, y int32) error {
	if buf == nil {
		return b.surf.Attach(nil, x, y)
	}
	h, ok := buf.(*boundHandle)
	if !ok {
		return fmt.Errorf("wlclient: attach: handle is not a wlclient buffer")
	}
	return b.surf.Attach(h.buf, x, y)
}

func (b *BoundSurface) Damage(x, y, width, height int32) error {
	return b.surf.Damage(x, y, width, height)
}

func (b *BoundSurface) Commit() error { return b.surf.Commit() }

func (b *BoundSurface) SetInputRegion(r surface.WlRegion) error {
	br, ok := r.(*BoundRegion)
	if !ok {
		return fmt.Errorf("wlclient: set_input_region: region is not a wlclient region")
	}
	return b.surf.SetInputRegion(br.region)
}

func (b *BoundSurface) SetOpaqueRegion(r surface.WlRegion) error {
	br, ok := r.(*BoundRegion)
	if !ok {
		return fmt.Errorf("wlclient: set_opaque_region: region is not a wlclient region")
	}
	return b.surf.SetOpaqueRegion(br.region)
}

func (b *BoundSurface) Destroy() error { return b.surf.Destroy() }

// Frame requests the next wl_surface.frame callback, invoking done once
// the compositor signals it.
func (b *BoundSurface) Frame(done func()) error {
	cb, err := b.surf.Frame()
	if err != nil {
		return err
	}
	cb.SetDoneHandler(func(client.CallbackDoneEvent) {
		_ = cb.Destroy()
		done()
	})
	return nil
}

// BoundCompositor adapts *client.Compositor to the surface package's
// wlCompositor contract.
type BoundCompositor struct {
	compositor *client.Compositor
}

func (b *BoundCompositor) CreateRegion() (surface.WlRegion, error) {
	r, err := b.compositor.CreateRegion()
	if err != nil {
		return nil, err
	}
	return &BoundRegion{region: r}, nil
}

// BoundRegion adapts *client.Region to the surface package's wlRegion
// contract.
type BoundRegion struct {
	region *client.Region
}

func (b *BoundRegion) Add(x, y, width, height int32) error {
	return b.region.Add(x, y, width, height)
}

func (b *BoundRegion) Destroy() error { return b.region.Destroy() }

// BoundLayerSurface adapts *layershell.ZwlrLayerSurfaceV1 to the surface
// package's wlLayerSurface contract.
type BoundLayerSurface struct {
	ls *layershell.ZwlrLayerSurfaceV1
}

func (b *BoundLayerSurface) SetSize(width, height uint32) error { return b.ls.SetSize(width, height) }
func (b *BoundLayerSurface) SetAnchor(anchor uint32) error      { return b.ls.SetAnchor(anchor) }
func (b *BoundLayerSurface) SetMargin(top, right, bottom, left int32) error {
	return b.ls.SetMargin(top, right, bottom, left)
}
func (b *BoundLayerSurface) SetExclusiveZone(zone int32) error { return b.ls.SetExclusiveZone(zone) }
func (b *BoundLayerSurface) SetKeyboardInteractivity(mode uint32) error {
	return b.ls.SetKeyboardInteractivity(mode)
}
func (b *BoundLayerSurface) SetLayer(layer uint32) error      { return b.ls.SetLayer(layer) }
func (b *BoundLayerSurface) AckConfigure(serial uint32) error { return b.ls.AckConfigure(serial) }
func (b *BoundLayerSurface) Destroy() error                   { return b.ls.Destroy() }

// OnConfigure wires configureFn/closedFn to the underlying protocol
// events. Called once the surface.Adapter driving this layer surface has
// been constructed, since its handlers close over the adapter.
func (b *BoundLayerSurface) OnConfigure(configureFn func(serial, width, height uint32), closedFn func()) {
	b.ls.SetConfigureHandler(func(e layershell.ZwlrLayerSurfaceV1ConfigureEvent) {
		configureFn(e.Serial, e.Width, e.Height)
	})
	b.ls.SetClosedHandler(func(layershell.ZwlrLayerSurfaceV1ClosedEvent) {
		closedFn()
	})
}

// BindScale creates the optional wp_fractional_scale_v1 + wp_viewport
// pair for surf, returning nil with no error when either global is
// absent on this compositor.
func BindScale(g *Globals, surf *BoundSurface) (*surface.ScaleBinding, error) {
	if g.ScaleMgr == nil || g.Viewporter == nil {
		return nil, nil
	}
	scale, err := g.ScaleMgr.GetFractionalScale(surf.surf)
	if err != nil {
		return nil, fmt.Errorf("wlclient: get_fractional_scale: %w", err)
	}
	vp, err := g.Viewporter.GetViewport(surf.surf)
	if err != nil {
		_ = scale.Destroy()
		return nil, fmt.Errorf("wlclient: get_viewport: %w", err)
	}

	binding := surface.NewScaleBinding(&boundFractionalScale{scale: scale}, &boundViewport{vp: vp})
	scale.SetPreferredScaleHandler(func(e fractionalscale.WpFractionalScaleV1PreferredScaleEvent) {
		binding.SetPreferred(e.Scale)
	})
	return binding, nil
}

type boundFractionalScale struct {
	scale *fractionalscale.WpFractionalScaleV1
}

func (b *boundFractionalScale) Destroy() error { return b.scale.Destroy() }

type boundViewport struct {
	vp *viewporter.WpViewport
}

func (b *boundViewport) SetSource(x, y, width, height float64) error {
	return b.vp.SetSource(x, y, width, height)
}

func (b *boundViewport) SetDestination(width, height int32) error {
	return b.vp.SetDestination(width, height)
}

func (b *boundViewport) Destroy() error { return b.vp.Destroy() }

// newPoolFactory returns a buffer.PoolFactory creating wl_shm_pool-backed
// pools against shm; buffers it mints report their wl_buffer.release
// events through the ReleaseNotifier contract.
func newPoolFactory(shm *client.Shm) buffer.PoolFactory {
	return func(fd int, size int32) (buffer.ShmPool, error) {
		pool, err := shm.CreatePool(fd, size)
		if err != nil {
			return nil, fmt.Errorf("wlclient: create_pool: %w", err)
		}
		return &boundPool{pool: pool}, nil
	}
}

type boundPool struct {
	pool *client.ShmPool
}

func (p *boundPool) CreateBuffer(offset, width, height, stride int32, format uint32) (buffer.Handle, error) {
	buf, err := p.pool.CreateBuffer(offset, width, height, stride, format)
	if err != nil {
		return nil, fmt.Errorf("wlclient: create_buffer: %w", err)
	}
	h := &boundHandle{buf: buf}
	buf.SetReleaseHandler(func(client.BufferReleaseEvent) { h.fireRelease() })
	return h, nil
}

func (p *boundPool) Destroy() { _ = p.pool.Destroy() }

// boundHandle adapts *client.Buffer to buffer.Handle. onRelease is armed
// by the broker (via SetReleaseCallback) so the compositor's release
// event frees the arena for reuse; it is a no-op until then.
type boundHandle struct {
	buf       *client.Buffer
	onRelease func()
}

// SetReleaseCallback implements buffer.ReleaseNotifier.
func (h *boundHandle) SetReleaseCallback(fn func()) { h.onRelease = fn }

func (h *boundHandle) fireRelease() {
	if h.onRelease != nil {
		h.onRelease()
	}
}

// Release implements buffer.Handle, destroying the underlying wl_buffer
// when the broker retires its arena.
func (h *boundHandle) Release() { _ = h.buf.Destroy() }
