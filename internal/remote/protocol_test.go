package remote

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VimYoung/spell-widgets/internal/state"
)

func TestParseRequest(t *testing.T) {
	cases := []struct {
		line string
		want Request
	}{
		{"hide", Request{Op: OpHide}},
		{"show", Request{Op: OpShow}},
		{"update brightness 42", Request{Op: OpUpdate, Key: "brightness", Literal: "42"}},
		{"look brightness", Request{Op: OpLook, Key: "brightness"}},
	}
	for _, c := range cases {
		got, err := ParseRequest(c.line)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestParseRequestMalformed(t *testing.T) {
	for _, line := range []string{"", "update", "update onlykey", "look", "look a b", "bogus"} {
		_, err := ParseRequest(line)
		require.ErrorIs(t, err, ErrMalformedRequest)
	}
}

type fakeTarget struct {
	s       *state.ForeignState
	shown   bool
	hidden  bool
	failing bool
}

func newFakeTarget() *fakeTarget {
	s := state.New(nil)
	s.Register("count", state.KindInt32, state.Value{Kind: state.KindInt32})
	return &fakeTarget{s: s}
}

func (f *fakeTarget) Show() error                         { f.shown = true; return nil }
func (f *fakeTarget) Hide() error                         { f.hidden = true; return nil }
func (f *fakeTarget) Kind(key string) (state.Kind, error) { return f.s.Kind(key) }
func (f *fakeTarget) Apply(key, literal string) error     { return f.s.Apply(key, literal) }
func (f *fakeTarget) Find(key string) (string, error)     { return f.s.Find(key) }

func TestDispatchShowHide(t *testing.T) {
	target := newFakeTarget()
	_, err := Dispatch(target, Request{Op: OpShow})
	require.NoError(t, err)
	require.True(t, target.shown)

	_, err = Dispatch(target, Request{Op: OpHide})
	require.NoError(t, err)
	require.True(t, target.hidden)
}

func TestDispatchUpdateAndLook(t *testing.T) {
	target := newFakeTarget()
	_, err := Dispatch(target, Request{Op: OpUpdate, Key: "count", Literal: "7"})
	require.NoError(t, err)

	resp, err := Dispatch(target, Request{Op: OpLook, Key: "count"})
	require.NoError(t, err)
	require.Equal(t, "7", resp)
}

func TestDispatchUpdateBadLiteralIsNotSupported(t *testing.T) {
	target := newFakeTarget()
	_, err := Dispatch(target, Request{Op: OpUpdate, Key: "count", Literal: "not-a-number"})
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestDispatchUnknownKeyIsNotSupported(t *testing.T) {
	target := newFakeTarget()
	_, err := Dispatch(target, Request{Op: OpLook, Key: "missing"})
	require.ErrorIs(t, err, ErrNotSupported)
}
