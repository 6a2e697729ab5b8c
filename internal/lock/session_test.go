package lock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeWlLock struct {
	unlockAndDestroyCalled bool
	unlockErr              error
}

func (f *fakeWlLock) UnlockAndDestroy() error {
	f.unlockAndDestroyCalled = true
	return f.unlockErr
}
func (f *fakeWlLock) Destroy() error { return nil }

func withFakeAuth(t *testing.T, succeed bool) {
	t.Helper()
	orig := authenticate
	authenticate = func(Credentials) error {
		if succeed {
			return nil
		}
		return ErrAuthentication
	}
	t.Cleanup(func() { authenticate = orig })
}

func TestLockOnlyReleasesOnSuccessfulAuth(t *testing.T) {
	withFakeAuth(t, false)
	wl := &fakeWlLock{}
	s := NewSession(wl, nil)

	err := s.Unlock(Credentials{Username: "alice", Password: "wrong"})
	require.True(t, errors.Is(err, ErrAuthentication))
	require.Equal(t, Locked, s.State())
	require.False(t, wl.unlockAndDestroyCalled)
}

func TestLockReleasesAfterSuccessfulAuth(t *testing.T) {
	withFakeAuth(t, true)
	wl := &fakeWlLock{}
	broker := newTestBroker(t)
	surf := &fakeSurface{}
	lockSurf := &fakeLockSurface{}
	s := NewSession(wl, []*Surface{NewSurface("DP-1", surf, lockSurf, broker, nil)})

	err := s.Unlock(Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, Released, s.State())
	require.True(t, wl.unlockAndDestroyCalled)
	require.True(t, surf.destroyed)
	require.True(t, lockSurf.destroyed)
}

func TestUnlockOnReleasedSessionFails(t *testing.T) {
	withFakeAuth(t, true)
	wl := &fakeWlLock{}
	s := NewSession(wl, nil)
	require.NoError(t, s.Unlock(Credentials{Username: "alice", Password: "secret"}))

	err := s.Unlock(Credentials{Username: "alice", Password: "secret"})
	require.ErrorIs(t, err, ErrAlreadyReleased)
}

func TestLastUserParsesUniqCOutput(t *testing.T) {
	user, err := parseLastUser("     42 alice\n     10 bob\n")
	require.NoError(t, err)
	require.Equal(t, "alice", user)
}

func TestLastUserEmptyOutputErrors(t *testing.T) {
	_, err := parseLastUser("")
	require.Error(t, err)
}
