// Package state implements ForeignState: a typed key-value map shared
// between a widget's own renderer callback and the remote-control
// transports, under single-writer/many-reader discipline.
package state

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// Kind tags the type a key's value is registered as. Sentinel marks a
// key that exists but is not remotely settable/readable; every remote
// operation on it fails.
type Kind int

const (
	KindInt32 Kind = iota
	KindString
	KindBool
	KindFloat32
	KindSentinel
)

// ErrUnknownKey is returned when a key was never registered.
var ErrUnknownKey = errors.New("state: unknown key")

// ErrNotSupported is returned when a literal cannot be parsed into a
// key's registered Kind.
var ErrNotSupported = errors.New("state: literal does not match registered kind")

// ErrFailed is returned for a sentinel-typed key or an internal state
// panic.
var ErrFailed = errors.New("state: operation not permitted on this key")

// Value is the tagged union ForeignState stores per key.
type Value struct {
	Kind    Kind
	Int32   int32
	String  string
	Bool    bool
	Float32 float32
}

// Literal renders the value back into its wire form, the inverse of the
// parse Apply performs.
func (v Value) Literal() string {
	switch v.Kind {
	case KindInt32:
		return strconv.FormatInt(int64(v.Int32), 10)
	case KindString:
		return v.String
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindFloat32:
		return strconv.FormatFloat(float64(v.Float32), 'g', -1, 32)
	default:
		return ""
	}
}

// ChangeCallback is the embedder-supplied hook invoked after a value is
// applied, with a read handle to the current state.
type ChangeCallback func(key string, current *ForeignState)

// ForeignState is the single-writer/many-reader map a widget host exposes
// to its remote-control transports via the Controller interface.
type ForeignState struct {
	mu       sync.RWMutex
	kinds    map[string]Kind
	values   map[string]Value
	onChange ChangeCallback
}

// New returns an empty ForeignState. Register must be called for every
// key the embedder wants remotely settable before first use.
func New(onChange ChangeCallback) *ForeignState {
	return &ForeignState{
		kinds:    make(map[string]Kind),
		values:   make(map[string]Value),
		onChange: onChange,
	}
}

// Register declares key's Kind and seeds its initial value. Calling
// Register twice for the same key overwrites the prior registration;
// callers normally do this once at widget construction.
func (s *ForeignState) Register(key string, kind Kind, initial Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds[key] = kind
	s.values[key] = initial
}

// Kind reports the registered Kind for key, used by the Controller
// capability interface's remote callers to decide how to parse a literal.
func (s *ForeignState) Kind(key string) (Kind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.kinds[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return k, nil
}

// Apply parses literal according to key's registered Kind, stores it, and
// invokes the change callback. A
// sentinel-typed key always yields ErrFailed; a parse failure yields
// ErrNotSupported.
func (s *ForeignState) Apply(key, literal string) error {
	kind, err := s.Kind(key)
	if err != nil {
		return err
	}
	if kind == KindSentinel {
		return fmt.Errorf("%w: %s is sentinel-typed", ErrFailed, key)
	}
	v, err := parse(kind, literal)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotSupported, err)
	}

	s.mu.Lock()
	s.values[key] = v
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(key, s)
	}
	return nil
}

func parse(kind Kind, literal string) (Value, error) {
	switch kind {
	case KindInt32:
		n, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt32, Int32: int32(n)}, nil
	case KindString:
		return Value{Kind: KindString, String: literal}, nil
	case KindBool:
		b, err := strconv.ParseBool(literal)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBool, Bool: b}, nil
	case KindFloat32:
		f, err := strconv.ParseFloat(literal, 32)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFloat32, Float32: float32(f)}, nil
	default:
		return Value{}, fmt.Errorf("unsupported kind %v", kind)
	}
}

// Find returns the stringified current value for key. A sentinel-typed
// key yields ErrFailed.
func (s *ForeignState) Find(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kind, ok := s.kinds[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if kind == KindSentinel {
		return "", fmt.Errorf("%w: %s is sentinel-typed", ErrFailed, key)
	}
	return s.values[key].Literal(), nil
}

// Set is a direct, embedder-side mutation bypassing literal parsing
// (used by the renderer loop to publish e.g. a computed clock value);
// it still runs the registered change callback.
func (s *ForeignState) Set(key string, v Value) error {
	s.mu.Lock()
	if _, ok := s.kinds[key]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.values[key] = v
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb(key, s)
	}
	return nil
}
