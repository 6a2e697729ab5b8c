// Package wlclient owns the single Wayland connection and the registry
// binding for every global the runtime needs: compositor,
// shm, seat, output, the wlr layer-shell, ext-session-lock and
// cursor-shape-v1 managers. Bind is called explicitly per global, and
// every proxy exposes SetXxxHandler callbacks rather than a single
// dispatch switch.
package wlclient

import (
	"fmt"
	"sync"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/rajveermalviya/go-wayland/wayland/stable/viewporter"
	cursorshape "github.com/rajveermalviya/go-wayland/wayland/staging/cursor-shape-v1"
	sessionlock "github.com/rajveermalviya/go-wayland/wayland/staging/ext-session-lock-v1"
	fractionalscale "github.com/rajveermalviya/go-wayland/wayland/staging/fraction-sclae-v1"
	layershell "github.com/rajveermalviya/go-wayland/wayland/unstable/wlr-layer-shell-v1"
)

// Globals holds every bound registry object for one Wayland connection.
// One Globals is shared by every widget host running in the same
// process.
type Globals struct {
	Display    *client.Display
	Registry   *client.Registry
	Compositor *client.Compositor
	Shm        *client.Shm
	Seat       *client.Seat
	LayerShell *layershell.ZwlrLayerShellV1
	LockMgr    *sessionlock.ExtSessionLockManagerV1
	CursorMgr  *cursorshape.WpCursorShapeManagerV1
	ScaleMgr   *fractionalscale.WpFractionalScaleManagerV1
	Viewporter *viewporter.WpViewporter

	mu      sync.Mutex
	outputs map[uint32]*Output
}

// Output mirrors one wl_output global: position, current mode size in
// pixels (Width/Height), integer scale and name, used both for WidgetConfig.Output resolution and by the lock variant
// to size one lock surface per output.
type Output struct {
	Name       uint32
	Proxy      *client.Output
	OutputName string
	X, Y       int32
	Width      int32
	Height     int32
	Scale      int32
}

// Connect opens the Wayland display named by socketName ("" for the
// default WAYLAND_DISPLAY) and binds every global this runtime consumes.
// It performs two round-trips: one to receive the registry's initial
// global announcements, one more so the announced objects (particularly
// wl_output's geometry/mode/done events) have been delivered before
// first use.
func Connect(socketName string) (*Globals, error) {
	display, err := client.Connect(socketName)
	if err != nil {
		return nil, fmt.Errorf("wlclient: connect: %w", err)
	}
	g := &Globals{Display: display, outputs: make(map[uint32]*Output)}
	display.SetErrorHandler(g.handleDisplayError)

	registry, err := display.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("wlclient: get_registry: %w", err)
	}
	g.Registry = registry
	registry.SetGlobalHandler(g.handleGlobal)
	registry.SetGlobalRemoveHandler(g.handleGlobalRemove)

	if err := g.roundTrip(); err != nil {
		return nil, err
	}
	if err := g.roundTrip(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Globals) handleDisplayError(e client.DisplayErrorEvent) {
	// A protocol error is fatal to the whole connection, not just one
	// widget; callers observe it via Dispatch returning an error.
}

func (g *Globals) handleGlobal(e client.RegistryGlobalEvent) {
	switch e.Interface {
	case "wl_compositor":
		c := client.NewCompositor(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, c); err == nil {
			g.Compositor = c
		}
	case "wl_shm":
		s := client.NewShm(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, s); err == nil {
			g.Shm = s
		}
	case "wl_seat":
		s := client.NewSeat(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, s); err == nil {
			g.Seat = s
		}
	case "wl_output":
		o := client.NewOutput(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, o); err == nil {
			g.registerOutput(e.Name, o)
		}
	case "zwlr_layer_shell_v1":
		l := layershell.NewZwlrLayerShellV1(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, l); err == nil {
			g.LayerShell = l
		}
	case "ext_session_lock_manager_v1":
		l := sessionlock.NewExtSessionLockManagerV1(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, l); err == nil {
			g.LockMgr = l
		}
	case "wp_cursor_shape_manager_v1":
		c := cursorshape.NewWpCursorShapeManagerV1(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, c); err == nil {
			g.CursorMgr = c
		}
	case "wp_fractional_scale_manager_v1":
		s := fractionalscale.NewWpFractionalScaleManagerV1(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, s); err == nil {
			g.ScaleMgr = s
		}
	case "wp_viewporter":
		v := viewporter.NewWpViewporter(g.Display.Context())
		if err := g.Registry.Bind(e.Name, e.Interface, e.Version, v); err == nil {
			g.Viewporter = v
		}
	}
}

func (g *Globals) handleGlobalRemove(e client.RegistryGlobalRemoveEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.outputs, e.Name)
}

func (g *Globals) registerOutput(name uint32, proxy *client.Output) {
	out := &Output{Name: name, Proxy: proxy}
	proxy.SetGeometryHandler(func(e client.OutputGeometryEvent) {
		out.X, out.Y = e.X, e.Y
	})
	proxy.SetModeHandler(func(e client.OutputModeEvent) {
		out.Width, out.Height = e.Width, e.Height
	})
	proxy.SetScaleHandler(func(e client.OutputScaleEvent) {
		out.Scale = e.Factor
	})
	proxy.SetNameHandler(func(e client.OutputNameEvent) {
		out.OutputName = e.Name
	})
	g.mu.Lock()
	g.outputs[name] = out
	g.mu.Unlock()
}

// Outputs returns a snapshot of every currently announced output.
func (g *Globals) Outputs() []*Output {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Output, 0, len(g.outputs))
	for _, o := range g.outputs {
		out = append(out, o)
	}
	return out
}

// OutputNamed resolves WidgetConfig.Output to a bound wl_output proxy.
func (g *Globals) OutputNamed(name string) *Output {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, o := range g.outputs {
		if o.OutputName == name {
			return o
		}
	}
	return nil
}

// roundTrip blocks until a display.Sync callback fires, dispatching
// events until the done handler runs.
func (g *Globals) roundTrip() error {
	callback, err := g.Display.Sync()
	if err != nil {
		return fmt.Errorf("wlclient: sync: %w", err)
	}
	defer callback.Destroy()

	done := false
	callback.SetDoneHandler(func(_ client.CallbackDoneEvent) {
		done = true
	})
	for !done {
		if err := g.Display.Context().Dispatch(); err != nil {
			return fmt.Errorf("wlclient: dispatch: %w", err)
		}
	}
	return nil
}

// Fd returns the Wayland display's connection file descriptor, polled by
// the multi-widget event fabric alongside IPC listeners and timers.
func (g *Globals) Fd() int {
	return g.Display.Context().Fd()
}

// Dispatch processes one batch of ready Wayland events.
func (g *Globals) Dispatch() error {
	return g.Display.Context().Dispatch()
}

// Close tears down the connection.
func (g *Globals) Close() error {
	return g.Display.Context().Close()
}
