// Package render supplies the one reference Renderer the runtime ships
// with: a minimal solid-fill-plus-counter implementation of the
// internal/surface.Renderer capability. The real rasteriser is an
// external toolkit; this package is the stand-in the runtime's own
// tests and cmd/spell-demo use instead of wiring one.
package render

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// Renderer mirrors the structural contract internal/surface.Renderer
// requires (NeedsRedraw/Paint); it is declared here only so callers can
// name the type without importing internal/surface, and is satisfied
// structurally — Go interfaces need no explicit implements declaration.
type Renderer interface {
	NeedsRedraw() bool
	Paint(dst []byte, width, height, stride int)
}

// Demo is a trivial Renderer: a solid background with one small square
// that advances on every Tick, so cmd/spell-demo and cmd/spell-lock
// have something to paint without depending on an external toolkit.
type Demo struct {
	mu      sync.Mutex
	bg      color.NRGBA
	fg      color.NRGBA
	square  int // square side length in pixels
	counter int
	dirty   bool
}

// NewDemo returns a Demo painting bg as background and fg as the moving
// square, sized squarePx on a side.
func NewDemo(bg, fg color.NRGBA, squarePx int) *Demo {
	return &Demo{bg: bg, fg: fg, square: squarePx, dirty: true}
}

// Tick advances the counter and marks the renderer dirty, the hook a
// timer callback on the event fabric invokes for periodic
// redraw the same way a real clock/battery widget would.
func (d *Demo) Tick() {
	d.mu.Lock()
	d.counter++
	d.dirty = true
	d.mu.Unlock()
}

// Counter returns the current tick count, mirrored into ForeignState by
// embedders that want a remotely readable "counter" key.
func (d *Demo) Counter() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counter
}

// NeedsRedraw implements the Renderer "pull from a single-threaded
// cooperative loop" contract.
func (d *Demo) NeedsRedraw() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Paint fills dst (premultiplied BGRA8888, row stride bytes per row)
// with the background color and composites the moving square at the
// counter's current position using golang.org/x/image/draw.Draw, then
// converts the resulting RGBA scratch image into dst's BGRA byte order.
func (d *Demo) Paint(dst []byte, width, height, stride int) {
	d.mu.Lock()
	counter := d.counter
	bg, fg, square := d.bg, d.fg, d.square
	d.dirty = false
	d.mu.Unlock()

	scratch := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(scratch, scratch.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	if square > 0 && width > square && height > square {
		x := counter % (width - square)
		y := height/2 - square/2
		r := image.Rect(x, y, x+square, y+square)
		draw.Draw(scratch, r, &image.Uniform{C: fg}, image.Point{}, draw.Over)
	}

	for y := 0; y < height; y++ {
		srcRow := scratch.PixOffset(0, y)
		dstRow := y * stride
		for x := 0; x < width; x++ {
			r := scratch.Pix[srcRow+x*4+0]
			g := scratch.Pix[srcRow+x*4+1]
			b := scratch.Pix[srcRow+x*4+2]
			a := scratch.Pix[srcRow+x*4+3]
			// BGRA8888 byte order, premultiplied.
			pr, pg, pb := premultiply(r, g, b, a)
			off := dstRow + x*4
			dst[off+0] = pb
			dst[off+1] = pg
			dst[off+2] = pr
			dst[off+3] = a
		}
	}
}

func premultiply(r, g, b, a uint8) (uint8, uint8, uint8) {
	if a == 255 {
		return r, g, b
	}
	f := uint32(a)
	return uint8(uint32(r) * f / 255), uint8(uint32(g) * f / 255), uint8(uint32(b) * f / 255)
}
