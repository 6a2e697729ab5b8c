package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/VimYoung/spell-widgets/internal/state"
)

// Op is an IPC/bus request's operation tag.
type Op int

const (
	OpHide Op = iota
	OpShow
	OpUpdate
	OpLook
)

// Request is one parsed line of the per-widget IPC wire grammar:
// "hide", "show", "update <key> <literal>", "look <key>".
type Request struct {
	Op      Op
	Key     string
	Literal string
}

// ErrMalformedRequest signals a line that does not match the grammar;
// the caller (socket.go) closes the connection without a response.
var ErrMalformedRequest = errors.New("remote: malformed request")

// ParseRequest parses one line of the IPC wire grammar. line must already
// have trailing newline/whitespace trimmed.
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, ErrMalformedRequest
	}
	switch fields[0] {
	case "hide":
		if len(fields) != 1 {
			return Request{}, ErrMalformedRequest
		}
		return Request{Op: OpHide}, nil
	case "show":
		if len(fields) != 1 {
			return Request{}, ErrMalformedRequest
		}
		return Request{Op: OpShow}, nil
	case "update":
		if len(fields) != 3 {
			return Request{}, ErrMalformedRequest
		}
		return Request{Op: OpUpdate, Key: fields[1], Literal: fields[2]}, nil
	case "look":
		if len(fields) != 2 {
			return Request{}, ErrMalformedRequest
		}
		return Request{Op: OpLook, Key: fields[1]}, nil
	default:
		return Request{}, ErrMalformedRequest
	}
}

// Target is the capability a widget host exposes to both remote
// transports: visibility control plus the ForeignState Controller.
// internal/host.Host implements it.
type Target interface {
	Show() error
	Hide() error
	state.Controller
}

// Dispatch executes req against target and returns the plain-text
// response the IPC socket writes back (empty for hide/show/update on
// success). Errors are classified into the remote error taxonomy.
func Dispatch(target Target, req Request) (string, error) {
	switch req.Op {
	case OpHide:
		if err := target.Hide(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMethodError, err)
		}
		return "", nil
	case OpShow:
		if err := target.Show(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMethodError, err)
		}
		return "", nil
	case OpUpdate:
		if err := target.Apply(req.Key, req.Literal); err != nil {
			return "", classifyStateErr(err)
		}
		return "", nil
	case OpLook:
		v, err := target.Find(req.Key)
		if err != nil {
			return "", classifyStateErr(err)
		}
		return v, nil
	default:
		return "", ErrMalformedRequest
	}
}

func classifyStateErr(err error) error {
	switch {
	case errors.Is(err, state.ErrNotSupported):
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	case errors.Is(err, state.ErrUnknownKey):
		// An unregistered key is a capability mismatch, not malformed
		// input or an internal failure.
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	case errors.Is(err, state.ErrFailed):
		return fmt.Errorf("%w: %v", ErrFailed, err)
	default:
		return fmt.Errorf("%w: %v", ErrMethodError, err)
	}
}
