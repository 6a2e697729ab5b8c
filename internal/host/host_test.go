package host

import (
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VimYoung/spell-widgets/internal/state"
)

type fakeAdapter struct {
	mu              sync.Mutex
	hidden          bool
	shows, hides    int
	grabs, releases int
	zone            int32
	inputAdds       []image.Rectangle
	inputSubs       []image.Rectangle
	destroyed       bool
}

func (f *fakeAdapter) Show() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden = false
	f.shows++
	return nil
}
func (f *fakeAdapter) Hide() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden = true
	f.hides++
	return nil
}
func (f *fakeAdapter) Hidden() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hidden
}
func (f *fakeAdapter) GrabFocus() error    { f.grabs++; return nil }
func (f *fakeAdapter) ReleaseFocus() error { f.releases++; return nil }
func (f *fakeAdapter) SetExclusiveZone(px int32) error {
	f.zone = px
	return nil
}
func (f *fakeAdapter) SetInputRegion(add, sub *image.Rectangle) error {
	if add != nil {
		f.inputAdds = append(f.inputAdds, *add)
	}
	if sub != nil {
		f.inputSubs = append(f.inputSubs, *sub)
	}
	return nil
}
func (f *fakeAdapter) SetOpaqueRegion(add, sub *image.Rectangle) error { return nil }
func (f *fakeAdapter) Destroy() error                                  { f.destroyed = true; return nil }

func newTestHost(t *testing.T) (*Host, *fakeAdapter) {
	t.Helper()
	adp := &fakeAdapter{hidden: false}
	s := state.New(nil)
	s.Register("label", state.KindString, state.Value{Kind: state.KindString})
	h := New("widget-a", adp, s)
	t.Cleanup(func() { _ = h.Close() })
	return h, adp
}

func TestToggleFlipsVisibility(t *testing.T) {
	h, adp := newTestHost(t)
	require.NoError(t, h.Toggle())
	require.True(t, adp.Hidden())
	require.NoError(t, h.Toggle())
	require.False(t, adp.Hidden())
}

func TestShowHideExclusiveZoneAndFocus(t *testing.T) {
	h, adp := newTestHost(t)
	require.NoError(t, h.Hide())
	require.Equal(t, 1, adp.hides)
	require.NoError(t, h.Show())
	require.Equal(t, 1, adp.shows)

	require.NoError(t, h.SetExclusiveZone(12))
	require.EqualValues(t, 12, adp.zone)

	require.NoError(t, h.GrabFocus())
	require.NoError(t, h.ReleaseFocus())
	require.Equal(t, 1, adp.grabs)
	require.Equal(t, 1, adp.releases)
}

func TestApplyAndFindRoundTrip(t *testing.T) {
	h, _ := newTestHost(t)
	require.NoError(t, h.Apply("label", "hello"))
	v, err := h.Find("label")
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

// TestFIFOOrdering races many toggles and checks every one of them was
// applied exactly once, in some serial order.
func TestFIFOOrdering(t *testing.T) {
	h, adp := newTestHost(t)
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Toggle()
		}()
	}
	wg.Wait()
	require.Equal(t, n, adp.shows+adp.hides)
}

func TestRegistryByName(t *testing.T) {
	r := NewRegistry()
	h, _ := newTestHost(t)
	idx := r.Add(h)
	require.Equal(t, 0, idx)

	got, ok := r.ByName("widget-a")
	require.True(t, ok)
	require.Same(t, h, got)

	r.Remove(idx)
	_, ok = r.ByName("widget-a")
	require.False(t, ok)
}
