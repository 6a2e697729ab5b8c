package buffer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct{ released bool }

func (h *fakeHandle) Release() { h.released = true }

type fakePool struct{ destroyed bool }

func (p *fakePool) CreateBuffer(offset, width, height, stride int32, format uint32) (Handle, error) {
	return &fakeHandle{}, nil
}
func (p *fakePool) Destroy() { p.destroyed = true }

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	if os.Getenv("XDG_RUNTIME_DIR") == "" {
		t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	}
	b, err := New(4, 4, func(fd int, size int32) (ShmPool, error) {
		return &fakePool{}, nil
	})
	require.NoError(t, err)
	return b
}

// TestAcquireWriteNeverAliasesAttached: the byte view returned by
// AcquireWrite never aliases the arena currently attached to the
// compositor, for any sequence of AcquireWrite/Publish.
func TestAcquireWriteNeverAliasesAttached(t *testing.T) {
	b := newTestBroker(t)
	defer b.Close()

	for i := 0; i < 5; i++ {
		writable := b.AcquireWrite()
		attachedArenaBefore := b.arenas[1-b.front]
		require.NotSame(t, &attachedArenaBefore.data[0], &writable[0])

		_, err := b.Publish()
		require.NoError(t, err)

		// The arena just attached must differ from the one now writable.
		require.NotEqual(t, b.front, b.pending)
		newWritable := b.AcquireWrite()
		require.NotSame(t, &writable[0], &newWritable[0])

		b.MarkReleased()
	}
}

func TestPublishBackpressure(t *testing.T) {
	b := newTestBroker(t)
	defer b.Close()

	_, err := b.Publish()
	require.NoError(t, err)

	_, err = b.Publish()
	require.ErrorIs(t, err, ErrBackpressure)

	b.MarkReleased()
	_, err = b.Publish()
	require.NoError(t, err)
}

func TestResizeRefusedWhileAttached(t *testing.T) {
	b := newTestBroker(t)
	defer b.Close()

	_, err := b.Publish()
	require.NoError(t, err)

	err = b.Resize(8, 8)
	require.ErrorIs(t, err, ErrAttached)

	b.MarkReleased()
	require.NoError(t, b.Resize(8, 8))
	require.EqualValues(t, 32, b.Stride())
}
