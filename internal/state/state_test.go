package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRemoteTypeDiscipline: Apply never stores a value whose Kind
// disagrees with the key's registered Kind, regardless of the literal
// supplied.
func TestRemoteTypeDiscipline(t *testing.T) {
	s := New(nil)
	s.Register("count", KindInt32, Value{Kind: KindInt32, Int32: 0})

	require.NoError(t, s.Apply("count", "42"))
	got, err := s.Find("count")
	require.NoError(t, err)
	require.Equal(t, "42", got)

	err = s.Apply("count", "not-a-number")
	require.ErrorIs(t, err, ErrNotSupported)
	// the bad literal must not have overwritten the prior value
	got, err = s.Find("count")
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestSentinelKindAlwaysFails(t *testing.T) {
	s := New(nil)
	s.Register("internal", KindSentinel, Value{Kind: KindSentinel})

	err := s.Apply("internal", "anything")
	require.ErrorIs(t, err, ErrFailed)

	_, err = s.Find("internal")
	require.ErrorIs(t, err, ErrFailed)
}

func TestUnknownKeyIsUnknownKeyError(t *testing.T) {
	s := New(nil)
	_, err := s.Kind("missing")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestChangeCallbackInvokedOnApply(t *testing.T) {
	var seenKey string
	var calls int
	s := New(func(key string, current *ForeignState) {
		seenKey = key
		calls++
	})
	s.Register("label", KindString, Value{Kind: KindString, String: ""})

	require.NoError(t, s.Apply("label", "hello"))
	require.Equal(t, 1, calls)
	require.Equal(t, "label", seenKey)
}

func TestBoolAndFloatRoundTrip(t *testing.T) {
	s := New(nil)
	s.Register("active", KindBool, Value{Kind: KindBool})
	s.Register("volume", KindFloat32, Value{Kind: KindFloat32})

	require.NoError(t, s.Apply("active", "true"))
	got, _ := s.Find("active")
	require.Equal(t, "true", got)

	require.NoError(t, s.Apply("volume", "0.75"))
	got, _ = s.Find("volume")
	require.Equal(t, "0.75", got)
}
