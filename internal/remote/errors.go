// Package remote implements the two remote-control transports: a
// session-bus service (primary/secondary election) and a per-widget
// AF_UNIX IPC socket speaking a one-request-per-connection ASCII
// grammar.
package remote

import "errors"

// NotSupported, Failed and MethodError are the three remote error
// kinds; the CLI maps each to a fixed user-facing string.
var (
	ErrNotSupported = errors.New("not supported")
	ErrFailed       = errors.New("failed")
	ErrMethodError  = errors.New("method error")
)
