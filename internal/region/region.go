// Package region implements the rectilinear input/opaque region sets a
// surface adapter maintains.
package region

import "image"

// Set is an accumulative rectilinear region expressed as the union of a
// list of rectangles. It supports additive and subtractive edits; the
// resulting point set is what gets attached with wl_surface.set_input_region
// / set_opaque_region by converting Rects back into wl_region requests.
type Set struct {
	rects []image.Rectangle
}

// NewSet returns an empty region (the empty set, not "full rectangle" —
// callers that want a full-surface region must Add it explicitly).
func NewSet() *Set {
	return &Set{}
}

// Add unions r into the region.
func (s *Set) Add(r image.Rectangle) {
	if r.Empty() {
		return
	}
	s.rects = append(s.rects, r.Canon())
}

// Subtract removes r's point set from the region. Each existing rectangle
// that overlaps r is split into up to four non-overlapping remainder
// rectangles (top, bottom, left, right strips), preserving the union
// invariant without needing general polygon clipping.
func (s *Set) Subtract(r image.Rectangle) {
	r = r.Canon()
	if r.Empty() || len(s.rects) == 0 {
		return
	}
	var out []image.Rectangle
	for _, existing := range s.rects {
		out = append(out, subtractRect(existing, r)...)
	}
	s.rects = out
}

// subtractRect returns the remainder of a minus b as up to four rectangles.
func subtractRect(a, b image.Rectangle) []image.Rectangle {
	if !a.Overlaps(b) {
		return []image.Rectangle{a}
	}
	var out []image.Rectangle
	// top strip
	if a.Min.Y < b.Min.Y {
		out = append(out, image.Rect(a.Min.X, a.Min.Y, a.Max.X, b.Min.Y))
	}
	// bottom strip
	if a.Max.Y > b.Max.Y {
		out = append(out, image.Rect(a.Min.X, b.Max.Y, a.Max.X, a.Max.Y))
	}
	midMinY, midMaxY := a.Min.Y, a.Max.Y
	if midMinY < b.Min.Y {
		midMinY = b.Min.Y
	}
	if midMaxY > b.Max.Y {
		midMaxY = b.Max.Y
	}
	// left strip of the middle band
	if a.Min.X < b.Min.X && midMinY < midMaxY {
		out = append(out, image.Rect(a.Min.X, midMinY, b.Min.X, midMaxY))
	}
	// right strip of the middle band
	if a.Max.X > b.Max.X && midMinY < midMaxY {
		out = append(out, image.Rect(b.Max.X, midMinY, a.Max.X, midMaxY))
	}
	var nonEmpty []image.Rectangle
	for _, rr := range out {
		if !rr.Empty() {
			nonEmpty = append(nonEmpty, rr)
		}
	}
	return nonEmpty
}

// Rects returns the rectangles making up the region. The returned slice
// must not be mutated by the caller.
func (s *Set) Rects() []image.Rectangle {
	return s.rects
}

// Contains reports whether point p falls inside the region's point set,
// used by the input translator to gate pointer delivery.
func (s *Set) Contains(p image.Point) bool {
	for _, r := range s.rects {
		if p.In(r) {
			return true
		}
	}
	return false
}

// Reset empties the region.
func (s *Set) Reset() {
	s.rects = nil
}
