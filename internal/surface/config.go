// Package surface implements the per-widget surface adapter: binding
// one layer surface to a buffer broker, translating a widget Config
// into zwlr_layer_shell_v1 protocol calls, and owning the input/opaque
// regions and the damage+frame cadence.
package surface

import (
	"errors"
	"fmt"
)

// Edge is one of the four anchorable layer-shell edges.
type Edge int

const (
	Top Edge = iota
	Bottom
	Left
	Right
)

// LayerTier selects the compositor-managed stacking layer.
type LayerTier int

const (
	LayerBackground LayerTier = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

// KeyboardMode selects zwlr_layer_surface_v1's keyboard-interactivity.
type KeyboardMode int

const (
	KeyboardNone KeyboardMode = iota
	KeyboardOnDemand
	KeyboardExclusive
)

// Margin holds the four layer-shell margins, in surface-local pixels.
type Margin struct {
	Top, Right, Bottom, Left int32
}

// ErrConfiguration is returned when a WidgetConfig fails construction
// invariants.
var ErrConfiguration = errors.New("surface: invalid widget configuration")

// Config is the immutable, once-built widget configuration.
type Config struct {
	Width, Height uint32
	Anchors       [2]*Edge // up to two edges; nil entries unset
	Margin        Margin
	Layer         LayerTier
	Keyboard      KeyboardMode
	ExclusiveZone *int32
	// AutoExclusiveZone marks a zone as requested without an explicit
	// pixel value; the reservation is then derived from the anchored
	// edge. A bare anchor with neither field set reserves nothing.
	AutoExclusiveZone bool
	Output            *string
	NaturalScroll     bool
}

// NewConfig validates and returns a Config. Zero width or height is
// rejected at construction.
func NewConfig(width, height uint32, opts ...Option) (*Config, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: width and height must be > 0, got %dx%d", ErrConfiguration, width, height)
	}
	c := &Config{Width: width, Height: height}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Option mutates a Config during construction.
type Option func(*Config)

func WithAnchor(e Edge) Option {
	return func(c *Config) {
		for i := range c.Anchors {
			if c.Anchors[i] == nil {
				v := e
				c.Anchors[i] = &v
				return
			}
		}
	}
}

func WithMargin(m Margin) Option         { return func(c *Config) { c.Margin = m } }
func WithLayer(l LayerTier) Option       { return func(c *Config) { c.Layer = l } }
func WithKeyboard(k KeyboardMode) Option { return func(c *Config) { c.Keyboard = k } }

// WithExclusiveZone reserves exactly px, overriding any derived default.
func WithExclusiveZone(px int32) Option { return func(c *Config) { c.ExclusiveZone = &px } }

// WithAutoExclusiveZone requests an exclusive zone sized from the
// anchored edge (Width for Left/Right, Height for Top/Bottom). Only a
// single-edge anchor derives one; corner anchors reserve nothing.
func WithAutoExclusiveZone() Option { return func(c *Config) { c.AutoExclusiveZone = true } }

func WithOutput(name string) Option { return func(c *Config) { c.Output = &name } }
func WithNaturalScroll(natural bool) Option {
	return func(c *Config) { c.NaturalScroll = natural }
}

// resolvedExclusiveZone applies the anchor/exclusive-zone derivation
// policy: a zone must have been requested, either with an explicit
// pixel value (which always wins) or via WithAutoExclusiveZone; in the
// auto case, exactly one edge anchor derives Width for Left/Right or
// Height for Top/Bottom, and two edges (a corner) derive nothing. A
// config that never asked reserves nothing.
func (c *Config) resolvedExclusiveZone() int32 {
	if c.ExclusiveZone != nil {
		return *c.ExclusiveZone
	}
	if !c.AutoExclusiveZone {
		return 0
	}
	anchorCount := 0
	var only Edge
	for _, a := range c.Anchors {
		if a != nil {
			anchorCount++
			only = *a
		}
	}
	if anchorCount != 1 {
		return 0
	}
	switch only {
	case Left, Right:
		return int32(c.Width)
	case Top, Bottom:
		return int32(c.Height)
	default:
		return 0
	}
}
