package logging

import (
	"net"
	"time"
)

// datagramWriter is the non-blocking SOCK_DGRAM sink; writes that would
// block are dropped silently, never back-pressuring the widget loop. It
// dials path as a connected unixgram socket so Write can be a plain
// (*net.UnixConn).Write without re-specifying the peer address each
// call.
type datagramWriter struct {
	conn *net.UnixConn
}

// newDatagramWriter dials the CLI-consumed log socket at path. The
// socket is expected to already exist (the CLI's `log` subcommand binds
// it before streaming). If nothing is listening when the writer is
// created, it holds no connection and Write drops every record for the
// writer's whole lifetime; it does not redial when a reader appears
// later. Widget construction does not fail on this.
func newDatagramWriter(path string) (*datagramWriter, error) {
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		// No listener yet: return a writer with no conn; Write no-ops.
		return &datagramWriter{}, nil
	}
	return &datagramWriter{conn: conn}, nil
}

// Write implements io.Writer. Setting the write deadline to "now" before
// every send turns a would-block write into an immediate timeout rather
// than letting the widget loop stall on a full socket buffer or an
// unread peer; any resulting error is swallowed.
func (w *datagramWriter) Write(p []byte) (int, error) {
	if w.conn == nil {
		return len(p), nil
	}
	_ = w.conn.SetWriteDeadline(time.Now())
	_, _ = w.conn.Write(p)
	return len(p), nil
}

func (w *datagramWriter) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
