// Command spell-demo is a minimal worked-example widget process: a
// 376x376 top-anchored counter widget exposing a single remotely
// settable "counter" key, registered on both remote-control transports.
package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/VimYoung/spell-widgets/internal/buffer"
	"github.com/VimYoung/spell-widgets/internal/config"
	"github.com/VimYoung/spell-widgets/internal/host"
	"github.com/VimYoung/spell-widgets/internal/input"
	"github.com/VimYoung/spell-widgets/internal/logging"
	"github.com/VimYoung/spell-widgets/internal/loop"
	"github.com/VimYoung/spell-widgets/internal/remote"
	"github.com/VimYoung/spell-widgets/internal/render"
	"github.com/VimYoung/spell-widgets/internal/state"
	"github.com/VimYoung/spell-widgets/internal/surface"
	"github.com/VimYoung/spell-widgets/internal/wlclient"
)

const widgetName = "counter-widget"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "spell-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return fmt.Errorf("XDG_RUNTIME_DIR is not set")
	}
	subscriber, err := logging.New(runtimeDir, widgetName)
	if err != nil {
		return err
	}
	defer subscriber.Close()
	logger := subscriber.Logger()
	logger.Info("starting", "default_layer", cfg.DefaultLayer, "natural_scroll", cfg.NaturalScroll)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	globals, err := wlclient.Connect("")
	if err != nil {
		return err
	}
	defer globals.Close()

	surfCfg, err := surface.NewConfig(376, 376,
		surface.WithAnchor(surface.Top),
		surface.WithLayer(surface.LayerTop),
		surface.WithKeyboard(surface.KeyboardOnDemand),
		surface.WithMargin(surface.Margin{Top: 5, Left: 10}),
		surface.WithNaturalScroll(cfg.NaturalScroll),
	)
	if err != nil {
		return err
	}

	var output *wlclient.Output
	if surfCfg.Output != nil {
		output = globals.OutputNamed(*surfCfg.Output)
	}
	bound, err := wlclient.BindLayerSurface(globals, widgetName, output)
	if err != nil {
		return err
	}

	broker, err := buffer.New(int32(surfCfg.Width), int32(surfCfg.Height), bound.Pool)
	if err != nil {
		return err
	}

	demo := render.NewDemo(
		color.NRGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff},
		color.NRGBA{R: 0xe0, G: 0x60, B: 0x30, A: 0xff},
		24,
	)

	adapter, err := surface.New(widgetName, surfCfg, bound.Surface, bound.LayerSurface, bound.Compositor, broker, demo)
	if err != nil {
		return err
	}
	scaleBinding, err := wlclient.BindScale(globals, bound.Surface)
	if err != nil {
		return err
	}
	bound.LayerSurface.OnConfigure(
		func(serial, width, height uint32) {
			_ = adapter.OnConfigure(serial)
			if scaleBinding != nil {
				_ = scaleBinding.ApplyViewport(int32(width), int32(height))
			}
		},
		func() {
			// Compositor-issued close is fatal to this widget only;
			// with one widget per process, that ends the loop.
			_ = adapter.OnClosed()
			logger.Warn("layer surface closed by compositor")
			cancel()
		},
	)
	if scaleBinding != nil {
		defer scaleBinding.Close()
	}

	translator := input.New(surfCfg.NaturalScroll)
	seat, err := wlclient.BindSeat(globals, adapter, translator, func(ev input.Event) {
		logger.Debug("input event", "kind", int(ev.Kind))
	})
	if err != nil {
		logger.Warn("seat unavailable", "err", err)
	} else {
		defer seat.Close()
	}

	foreignState := state.New(func(key string, s *state.ForeignState) {
		logger.Info("state changed", "key", key)
	})
	foreignState.Register("counter", state.KindInt32, state.Value{Kind: state.KindInt32, Int32: 0})

	widgetHost := host.New(widgetName, adapter, foreignState)
	defer widgetHost.Close()

	socket, err := remote.Listen(widgetName, widgetHost, logger)
	if err != nil {
		return err
	}
	defer socket.Close()

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()
	resolver := func(layer string) (remote.Target, bool) {
		if layer == widgetName {
			return widgetHost, true
		}
		return nil, false
	}
	busService, err := remote.Claim(conn, widgetName, resolver, widgetHost, logger)
	if err != nil {
		return err
	}
	defer busService.Close()

	fabric := loop.New(20, logger)
	fabric.AddSource(wlSource{globals})
	socketFd, err := socket.Fd()
	if err != nil {
		return err
	}
	fabric.AddSource(ipcSource{socket, socketFd})
	fabric.AddTimer(time.Second, func() {
		demo.Tick()
		_ = foreignState.Set("counter", state.Value{Kind: state.KindInt32, Int32: int32(demo.Counter())})
	})

	return fabric.Run(ctx)
}

type wlSource struct {
	g *wlclient.Globals
}

func (s wlSource) Fd() int           { return s.g.Fd() }
func (s wlSource) OnReadable() error { return s.g.Dispatch() }

type ipcSource struct {
	s  *remote.Socket
	fd int
}

func (s ipcSource) Fd() int           { return s.fd }
func (s ipcSource) OnReadable() error { return s.s.Accept() }
