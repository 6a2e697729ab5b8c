package region

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

// bruteForce builds the ground-truth point set for a small bounded grid
// so Contains can be checked pixel-by-pixel against the rectangle algebra.
func bruteForce(bounds image.Rectangle, adds []image.Rectangle, sub image.Rectangle) map[image.Point]bool {
	out := make(map[image.Point]bool)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := image.Pt(x, y)
			in := false
			for _, r := range adds {
				if p.In(r) {
					in = true
					break
				}
			}
			if in && p.In(sub) {
				in = false
			}
			out[p] = in
		}
	}
	return out
}

func TestSetMonotonicity(t *testing.T) {
	bounds := image.Rect(0, 0, 20, 20)
	adds := []image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(5, 5, 15, 15),
	}
	sub := image.Rect(3, 3, 8, 8)

	s := NewSet()
	for _, r := range adds {
		s.Add(r)
	}
	s.Subtract(sub)

	want := bruteForce(bounds, adds, sub)
	for p, expect := range want {
		require.Equalf(t, expect, s.Contains(p), "point %v", p)
	}
}

func TestSetSubtractFullyGone(t *testing.T) {
	s := NewSet()
	s.Add(image.Rect(0, 0, 100, 100))
	s.Subtract(image.Rect(0, 0, 100, 100))
	require.False(t, s.Contains(image.Pt(50, 50)))
}

func TestSetSubtractNoOverlap(t *testing.T) {
	s := NewSet()
	s.Add(image.Rect(0, 0, 10, 10))
	s.Subtract(image.Rect(20, 20, 30, 30))
	require.True(t, s.Contains(image.Pt(5, 5)))
}

func TestSetResetEmpty(t *testing.T) {
	s := NewSet()
	s.Add(image.Rect(0, 0, 10, 10))
	s.Reset()
	require.Empty(t, s.Rects())
	require.False(t, s.Contains(image.Pt(5, 5)))
}
