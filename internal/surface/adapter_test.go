package surface

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VimYoung/spell-widgets/internal/buffer"
)

type fakeHandle struct{}

func (fakeHandle) Release() {}

type fakePool struct{}

func (fakePool) CreateBuffer(offset, width, height, stride int32, format uint32) (buffer.Handle, error) {
	return fakeHandle{}, nil
}
func (fakePool) Destroy() {}

type fakeRegion struct {
	added [][4]int32
}

func (r *fakeRegion) Add(x, y, width, height int32) error {
	r.added = append(r.added, [4]int32{x, y, width, height})
	return nil
}
func (r *fakeRegion) Destroy() error { return nil }

type fakeCompositor struct{}

func (fakeCompositor) CreateRegion() (WlRegion, error) { return &fakeRegion{}, nil }

type fakeLayerSurface struct {
	size          [2]uint32
	anchor        uint32
	margin        [4]int32
	exclusiveZone int32
	keyboard      uint32
	layer         uint32
	acked         []uint32
	destroyed     bool
}

func (f *fakeLayerSurface) SetSize(w, h uint32) error { f.size = [2]uint32{w, h}; return nil }
func (f *fakeLayerSurface) SetAnchor(a uint32) error  { f.anchor = a; return nil }
func (f *fakeLayerSurface) SetMargin(t, r, b, l int32) error {
	f.margin = [4]int32{t, r, b, l}
	return nil
}
func (f *fakeLayerSurface) SetExclusiveZone(z int32) error          { f.exclusiveZone = z; return nil }
func (f *fakeLayerSurface) SetKeyboardInteractivity(m uint32) error { f.keyboard = m; return nil }
func (f *fakeLayerSurface) SetLayer(l uint32) error                 { f.layer = l; return nil }
func (f *fakeLayerSurface) AckConfigure(serial uint32) error {
	f.acked = append(f.acked, serial)
	return nil
}
func (f *fakeLayerSurface) Destroy() error { f.destroyed = true; return nil }

type fakeSurface struct {
	attached     []buffer.Handle
	damaged      int
	committed    int
	destroyed    bool
	pendingFrame func()
	inputRegion  WlRegion
	opaqueRegion WlRegion
}

func (f *fakeSurface) Attach(buf buffer.Handle, x, y int32) error {
	f.attached = append(f.attached, buf)
	return nil
}
func (f *fakeSurface) Damage(x, y, w, h int32) error    { f.damaged++; return nil }
func (f *fakeSurface) Commit() error                    { f.committed++; return nil }
func (f *fakeSurface) SetInputRegion(r WlRegion) error  { f.inputRegion = r; return nil }
func (f *fakeSurface) SetOpaqueRegion(r WlRegion) error { f.opaqueRegion = r; return nil }
func (f *fakeSurface) Destroy() error                   { f.destroyed = true; return nil }
func (f *fakeSurface) Frame(done func()) error {
	f.pendingFrame = done
	return nil
}

type fakeRenderer struct {
	needsRedraw bool
	paints      int
}

func (r *fakeRenderer) NeedsRedraw() bool { return r.needsRedraw }
func (r *fakeRenderer) Paint(dst []byte, width, height, stride int) {
	r.paints++
}

func newTestAdapter(t *testing.T, opts ...Option) (*Adapter, *fakeSurface, *fakeLayerSurface, *fakeRenderer) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	cfg, err := NewConfig(4, 4, opts...)
	require.NoError(t, err)

	b, err := buffer.New(4, 4, func(fd int, size int32) (buffer.ShmPool, error) {
		return fakePool{}, nil
	})
	require.NoError(t, err)

	surf := &fakeSurface{}
	layer := &fakeLayerSurface{}
	renderer := &fakeRenderer{needsRedraw: true}

	a, err := New("test-widget", cfg, surf, layer, fakeCompositor{}, b, renderer)
	require.NoError(t, err)
	return a, surf, layer, renderer
}

// TestExclusiveZoneDerivation: with a zone requested but no explicit
// value, a single-edge anchor derives it from the surface's own
// thickness on that edge; a corner anchor never derives one.
func TestExclusiveZoneDerivation(t *testing.T) {
	_, _, layer, _ := newTestAdapter(t, WithAnchor(Top), WithAutoExclusiveZone())
	require.EqualValues(t, 4, layer.exclusiveZone)
}

func TestExclusiveZoneNotRequestedReservesNothing(t *testing.T) {
	_, _, layer, _ := newTestAdapter(t, WithAnchor(Top))
	require.EqualValues(t, 0, layer.exclusiveZone)
}

func TestExclusiveZoneCornerNeverDerives(t *testing.T) {
	_, _, layer, _ := newTestAdapter(t, WithAnchor(Top), WithAnchor(Left), WithAutoExclusiveZone())
	require.EqualValues(t, 0, layer.exclusiveZone)
}

func TestExclusiveZoneUserOverrideWins(t *testing.T) {
	_, _, layer, _ := newTestAdapter(t, WithAnchor(Top), WithExclusiveZone(99))
	require.EqualValues(t, 99, layer.exclusiveZone)
}

// TestVisibilityRoundTrip: hide then show leaves the adapter
// visibly attached again, without reallocating the broker.
func TestVisibilityRoundTrip(t *testing.T) {
	a, surf, _, _ := newTestAdapter(t)

	require.False(t, a.Hidden())
	require.NoError(t, a.Hide())
	require.True(t, a.Hidden())

	attachedBeforeShow := len(surf.attached)
	require.NoError(t, a.Show())
	require.False(t, a.Hidden())
	require.Greater(t, len(surf.attached), attachedBeforeShow)
}

func TestHideIsIdempotent(t *testing.T) {
	a, surf, _, _ := newTestAdapter(t)
	require.NoError(t, a.Hide())
	committedAfterFirstHide := surf.committed
	require.NoError(t, a.Hide())
	require.Equal(t, committedAfterFirstHide, surf.committed)
}

func TestOnConfigureSkipsAttachWhileHidden(t *testing.T) {
	a, surf, layer, _ := newTestAdapter(t)
	require.NoError(t, a.Hide())

	attachedBefore := len(surf.attached)
	require.NoError(t, a.OnConfigure(7))
	require.Equal(t, attachedBefore, len(surf.attached))
	require.Contains(t, layer.acked, uint32(7))
}

func TestGrabAndReleaseFocus(t *testing.T) {
	a, _, layer, _ := newTestAdapter(t)
	require.NoError(t, a.GrabFocus())
	require.Equal(t, KeyboardExclusive, a.KeyboardMode())
	require.EqualValues(t, 2, layer.keyboard)

	require.NoError(t, a.ReleaseFocus())
	require.Equal(t, KeyboardNone, a.KeyboardMode())
	require.EqualValues(t, 0, layer.keyboard)
}

func TestOnClosedReturnsErrTransport(t *testing.T) {
	a, _, _, _ := newTestAdapter(t)
	require.ErrorIs(t, a.OnClosed(), ErrTransport)
}
