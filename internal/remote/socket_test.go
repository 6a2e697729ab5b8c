package remote

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSocketRoundTrip(t *testing.T) {
	widget := "testwidget"
	target := newFakeTarget()

	sock, err := Listen(widget, target, nil)
	require.NoError(t, err)
	defer sock.Close()
	defer func() { _ = sock.Close() }()

	go func() { _ = sock.Accept() }()

	conn, err := net.Dial("unix", SocketPath(widget))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("update count 9\n"))
	require.NoError(t, err)
	conn.(*net.UnixConn).CloseWrite()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "\n", line)
}

func TestSocketRemovesStaleSocketFile(t *testing.T) {
	widget := "stalewidget"
	target := newFakeTarget()

	first, err := Listen(widget, target, nil)
	require.NoError(t, err)
	defer first.Close()

	second, err := Listen(widget, target, nil)
	require.NoError(t, err)
	defer second.Close()
}
