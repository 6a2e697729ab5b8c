package remote

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/require"
)

// sessionConn opens a private session-bus connection, skipping the test
// on machines without a running session bus.
func sessionConn(t *testing.T) *dbus.Conn {
	t.Helper()
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		t.Skipf("no session bus: %v", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		t.Skipf("session bus auth: %v", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		t.Skipf("session bus hello: %v", err)
	}
	return conn
}

func TestPrimarySecondaryElection(t *testing.T) {
	targetA := newFakeTarget()
	connA := sessionConn(t)
	defer connA.Close()
	svcA, err := Claim(connA, "electA", func(layer string) (Target, bool) {
		if layer == "electA" {
			return targetA, true
		}
		return nil, false
	}, targetA, nil)
	require.NoError(t, err)
	require.True(t, svcA.IsPrimary())

	targetB := newFakeTarget()
	connB := sessionConn(t)
	defer connB.Close()
	svcB, err := Claim(connB, "electB", nil, targetB, nil)
	require.NoError(t, err)
	require.False(t, svcB.IsPrimary())

	// An update addressed to the primary for a layer it doesn't host is
	// re-emitted as a signal; the secondary hosting that layer applies it.
	require.Nil(t, svcA.SetValue("electB", "count", "5"))
	require.Eventually(t, func() bool {
		v, err := targetB.Find("count")
		return err == nil && v == "5"
	}, 2*time.Second, 20*time.Millisecond)
}
