package lock

import (
	"fmt"
	"sync"
)

// State is the lock session's lifecycle state.
type State int

const (
	Locked State = iota
	Unlocking
	Released
)

// wlSessionLock is the subset of ext_session_lock_v1 the session drives:
// unlock_and_destroy and destroy. lock() itself is performed by the
// caller via ext_session_lock_manager_v1.lock() before constructing a
// Session.
type wlSessionLock interface {
	UnlockAndDestroy() error
	Destroy() error
}

// Session is one lock session binding N lock surfaces, one per announced
// output. Its State transitions Locked -> Unlocking ->
// Released exactly once, and only to Released after a successful PAM
// authenticate+account-management pair.
type Session struct {
	mu       sync.Mutex
	state    State
	wlLock   wlSessionLock
	surfaces []*Surface
}

// NewSession wraps an already-locked ext_session_lock_v1 object and its
// per-output surfaces.
func NewSession(wlLock wlSessionLock, surfaces []*Surface) *Session {
	return &Session{state: Locked, wlLock: wlLock, surfaces: surfaces}
}

// State reports the session's current lock state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Surfaces returns the per-output lock surfaces this session owns.
func (s *Session) Surfaces() []*Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surfaces
}

// Unlock runs the unlock sequence: if creds.Username is
// empty, derive it via LastLoggedInUser; construct a PAM transaction for
// service "login" and run authenticate then account-management. On
// success it calls ext_session_lock_v1.unlock_and_destroy, tears down
// every per-output surface, and transitions to Released. On any PAM
// failure the session remains Locked and the PAM error is
// returned to the caller for the embedder to surface — there is no
// retry policy in the core.
func (s *Session) Unlock(creds Credentials) error {
	s.mu.Lock()
	if s.state == Released {
		s.mu.Unlock()
		return ErrAlreadyReleased
	}
	s.state = Unlocking
	s.mu.Unlock()

	if creds.Username == "" {
		user, err := LastLoggedInUser()
		if err != nil {
			s.revertToLocked()
			return fmt.Errorf("lock: derive last logged-in user: %w", err)
		}
		creds.Username = user
	}

	if err := authenticate(creds); err != nil {
		s.revertToLocked()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, surf := range s.surfaces {
		_ = surf.Destroy()
	}
	if err := s.wlLock.UnlockAndDestroy(); err != nil {
		// The authentication succeeded; a protocol-level teardown
		// failure no longer leaves the session meaningfully Locked, but
		// is reported so the embedder can log it.
		s.state = Released
		return fmt.Errorf("lock: unlock_and_destroy: %w", err)
	}
	s.state = Released
	return nil
}

func (s *Session) revertToLocked() {
	s.mu.Lock()
	s.state = Locked
	s.mu.Unlock()
}
