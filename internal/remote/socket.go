package remote

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SocketPath returns the per-widget IPC socket path the CLI dials.
func SocketPath(widget string) string {
	return fmt.Sprintf("/tmp/%s_ipc.sock", widget)
}

// Socket is one widget's AF_UNIX stream IPC listener.
type Socket struct {
	ln     net.Listener
	target Target
	logger *log.Logger
}

// Listen removes any stale socket file at SocketPath(widget) and binds
// a fresh AF_UNIX stream listener.
func Listen(widget string, target Target, logger *log.Logger) (*Socket, error) {
	path := SocketPath(widget)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remote: remove stale socket %s: %w", path, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("remote: listen %s: %w", path, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Socket{ln: ln, target: target, logger: logger}, nil
}

// Fd exposes the listener's file descriptor for the event fabric's
// multiplexer.
func (s *Socket) Fd() (int, error) {
	uc, ok := s.ln.(*net.UnixListener)
	if !ok {
		return -1, fmt.Errorf("remote: listener is not a unix listener")
	}
	f, err := uc.File()
	if err != nil {
		return -1, err
	}
	return int(f.Fd()), nil
}

// Accept blocks for one inbound connection and services it synchronously,
// matching the single request-per-connection wire protocol.
// Call this from the event fabric once the listener fd is readable.
func (s *Socket) Accept() error {
	conn, err := s.ln.Accept()
	if err != nil {
		return fmt.Errorf("remote: accept: %w", err)
	}
	defer conn.Close()
	return s.serve(conn)
}

func (s *Socket) serve(conn net.Conn) error {
	data, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil {
		return fmt.Errorf("remote: read: %w", err)
	}
	line := strings.TrimRight(string(data), "\r\n")

	req, err := ParseRequest(line)
	if err != nil {
		// Malformed request: close without responding.
		s.logger.Warn("malformed ipc request", "raw", line)
		return nil
	}

	resp, err := Dispatch(s.target, req)
	if err != nil {
		s.logger.Warn("ipc dispatch failed", "req", line, "err", err)
		_, werr := conn.Write([]byte(err.Error() + "\n"))
		return werr
	}
	_, err = conn.Write([]byte(resp + "\n"))
	return err
}

// Close tears down the listener and unlinks the socket file.
func (s *Socket) Close() error {
	return s.ln.Close()
}
