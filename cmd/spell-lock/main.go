// Command spell-lock is a minimal session-lock process: it locks every
// output behind a solid lock surface, reads a password from stdin, and
// releases the session once PAM accepts it. The username is derived
// from the login history unless given as the first argument.
package main

import (
	"bufio"
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VimYoung/spell-widgets/internal/lock"
	"github.com/VimYoung/spell-widgets/internal/logging"
	"github.com/VimYoung/spell-widgets/internal/loop"
	"github.com/VimYoung/spell-widgets/internal/render"
	"github.com/VimYoung/spell-widgets/internal/wlclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "spell-lock:", err)
		os.Exit(1)
	}
}

func run() error {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return fmt.Errorf("XDG_RUNTIME_DIR is not set")
	}
	subscriber, err := logging.New(runtimeDir, "lock")
	if err != nil {
		return err
	}
	defer subscriber.Close()
	logger := subscriber.Logger()

	var username string
	if len(os.Args) > 1 {
		username = os.Args[1]
	}

	globals, err := wlclient.Connect("")
	if err != nil {
		return err
	}
	defer globals.Close()

	session, err := wlclient.BindLockSession(globals, func(out *wlclient.Output) lock.Renderer {
		return render.NewDemo(
			color.NRGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff},
			color.NRGBA{R: 0x50, G: 0x50, B: 0x68, A: 0xff},
			0,
		)
	})
	if err != nil {
		return err
	}
	logger.Info("session locked", "surfaces", len(session.Surfaces()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fabric := loop.New(20, logger)
	fabric.AddSource(wlSource{globals})

	// Password attempts arrive on stdin, one per line; the PAM
	// transaction itself runs on the loop thread via Dispatch so state
	// application stays serialised with everything else.
	go func() {
		scan := bufio.NewScanner(os.Stdin)
		for scan.Scan() {
			password := scan.Text()
			fabric.Dispatch(func() {
				err := session.Unlock(lock.Credentials{Username: username, Password: password})
				if err != nil {
					logger.Warn("unlock refused", "err", err)
					return
				}
				logger.Info("session released")
				_ = globals.Dispatch()
				cancel()
			})
		}
	}()

	err = fabric.Run(ctx)
	if session.State() != lock.Released {
		logger.Warn("exiting while still locked")
	}
	// Give the final unlock request time to reach the compositor.
	time.Sleep(50 * time.Millisecond)
	return err
}

type wlSource struct {
	g *wlclient.Globals
}

func (s wlSource) Fd() int           { return s.g.Fd() }
func (s wlSource) OnReadable() error { return s.g.Dispatch() }
