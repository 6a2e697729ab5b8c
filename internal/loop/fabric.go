// Package loop implements the multi-widget event fabric: a
// single-threaded cooperative scheduler multiplexing the Wayland
// connection's fd, each widget's IPC listener fd, timers, and a bounded
// channel of bus-dispatched state mutations, all driven through
// golang.org/x/sys/unix.Poll on a single goroutine.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// pollTimeoutMillis is the multiplexer quantum: short enough that IPC
// sources are never starved behind a busy Wayland connection.
const pollTimeoutMillis = 1

// Source is one pollable fd the fabric multiplexes: the Wayland
// connection, or one widget's IPC listener.
type Source interface {
	Fd() int
	// OnReadable is invoked once the fd reports POLLIN. An error here is
	// logged and the loop carries on; the source stays registered and is
	// polled again on the next iteration.
	OnReadable() error
}

// TimerFunc is a periodic callback registered via AddTimer, the hook
// for periodic state refresh such as a clock or battery readout.
type TimerFunc func()

type timer struct {
	interval time.Duration
	next     time.Time
	fn       TimerFunc
}

// Fabric is the cooperative event loop shared by every widget in one
// process.
type Fabric struct {
	sources []Source
	timers  []*timer
	cmds    chan func()
	logger  *log.Logger

	now func() time.Time
}

// New returns an empty Fabric. cmdCapacity bounds the cross-thread
// command channel; a zero value defaults to 20.
func New(cmdCapacity int, logger *log.Logger) *Fabric {
	if cmdCapacity <= 0 {
		cmdCapacity = 20
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fabric{
		cmds:   make(chan func(), cmdCapacity),
		logger: logger,
		now:    time.Now,
	}
}

// AddSource registers a pollable fd source (the Wayland connection or a
// widget's IPC listener).
func (f *Fabric) AddSource(s Source) {
	f.sources = append(f.sources, s)
}

// AddTimer registers a periodic callback run every interval, subject to
// the poll quantum's scheduling granularity.
func (f *Fabric) AddTimer(interval time.Duration, fn TimerFunc) {
	f.timers = append(f.timers, &timer{interval: interval, next: f.now().Add(interval), fn: fn})
}

// Dispatch enqueues fn to run on the fabric's own goroutine, the entry
// point bus reactors use to hand off state mutations across the
// auxiliary-thread boundary.
func (f *Fabric) Dispatch(fn func()) {
	f.cmds <- fn
}

// Run drives the loop until ctx is cancelled. Each iteration: poll all
// sources with the 1ms quantum, dispatch readable ones, run any due
// timers, then drain the command channel non-blockingly.
func (f *Fabric) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := f.pollOnce(); err != nil {
			return err
		}
		f.runDueTimers()
		f.drainCommands()
	}
}

func (f *Fabric) pollOnce() error {
	if len(f.sources) == 0 {
		time.Sleep(pollTimeoutMillis * time.Millisecond)
		return nil
	}
	pfds := make([]unix.PollFd, len(f.sources))
	for i, s := range f.sources {
		pfds[i] = unix.PollFd{Fd: int32(s.Fd()), Events: unix.POLLIN}
	}
	n, err := unix.Poll(pfds, pollTimeoutMillis)
	if err != nil && err != unix.EINTR {
		return fmt.Errorf("loop: poll: %w", err)
	}
	if n <= 0 {
		return nil
	}
	for i, pfd := range pfds {
		if pfd.Revents&unix.POLLIN == 0 {
			continue
		}
		if err := f.sources[i].OnReadable(); err != nil {
			f.logger.Warn("source readable handler failed", "err", err)
		}
	}
	return nil
}

func (f *Fabric) runDueTimers() {
	now := f.now()
	for _, t := range f.timers {
		if !now.Before(t.next) {
			t.fn()
			t.next = now.Add(t.interval)
		}
	}
}

func (f *Fabric) drainCommands() {
	for {
		select {
		case fn := <-f.cmds:
			fn()
		default:
			return
		}
	}
}
