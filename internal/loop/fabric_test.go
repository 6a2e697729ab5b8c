package loop

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type pipeSource struct {
	conn  *net.UnixConn
	file  *os.File
	count int32
}

func (p *pipeSource) Fd() int {
	if p.file == nil {
		p.file, _ = p.conn.File()
	}
	return int(p.file.Fd())
}

func (p *pipeSource) OnReadable() error {
	buf := make([]byte, 64)
	_, _ = p.conn.Read(buf)
	atomic.AddInt32(&p.count, 1)
	return nil
}

func TestFabricDispatchesReadableSource(t *testing.T) {
	pair, err := unixSocketPair()
	require.NoError(t, err)
	defer pair[0].Close()
	defer pair[1].Close()

	src := &pipeSource{conn: pair[0]}
	f := New(4, nil)
	f.AddSource(src)

	_, err = pair[1].Write([]byte("ping"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go f.Run(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&src.count) > 0
	}, 150*time.Millisecond, 5*time.Millisecond)
}

func TestFabricRunsDueTimers(t *testing.T) {
	f := New(4, nil)
	var calls int32
	f.AddTimer(5*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	go f.Run(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 90*time.Millisecond, 5*time.Millisecond)
}

func TestFabricDrainsDispatchedCommands(t *testing.T) {
	f := New(4, nil)
	done := make(chan struct{})
	f.Dispatch(func() { close(done) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	go f.Run(ctx)

	select {
	case <-done:
	case <-time.After(90 * time.Millisecond):
		t.Fatal("dispatched command never ran")
	}
}

func unixSocketPair() ([2]*net.UnixConn, error) {
	var out [2]*net.UnixConn
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return out, err
	}
	f0 := os.NewFile(uintptr(fds[0]), "sp0")
	f1 := os.NewFile(uintptr(fds[1]), "sp1")
	c0, err := net.FileConn(f0)
	if err != nil {
		return out, err
	}
	c1, err := net.FileConn(f1)
	if err != nil {
		return out, err
	}
	out[0] = c0.(*net.UnixConn)
	out[1] = c1.(*net.UnixConn)
	return out, nil
}
