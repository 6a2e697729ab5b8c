// Package lock implements the session-lock variant of the widget
// runtime: one ext-session-lock-v1 session binding one lock surface per
// announced output, reusing the buffer broker and paint-on-configure
// pipeline from internal/surface, with PAM-backed unlock.
package lock

import "errors"

// ErrAuthentication is returned when the PAM authenticate or
// account-management step fails; the session remains locked.
var ErrAuthentication = errors.New("lock: authentication failed")

// ErrAlreadyReleased is returned by Unlock on a session that has already
// transitioned to released; the transition is one-way.
var ErrAlreadyReleased = errors.New("lock: session already released")
