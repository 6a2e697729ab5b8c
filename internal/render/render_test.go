package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemoNeedsRedrawClearsAfterPaint(t *testing.T) {
	d := NewDemo(color.NRGBA{A: 255}, color.NRGBA{R: 255, A: 255}, 4)
	require.True(t, d.NeedsRedraw())

	stride := 16 * 4
	dst := make([]byte, stride*16)
	d.Paint(dst, 16, 16, stride)
	require.False(t, d.NeedsRedraw())

	d.Tick()
	require.True(t, d.NeedsRedraw())
}

func TestDemoPaintFillsBackground(t *testing.T) {
	d := NewDemo(color.NRGBA{R: 10, G: 20, B: 30, A: 255}, color.NRGBA{A: 255}, 0)
	stride := 4 * 4
	dst := make([]byte, stride*4)
	d.Paint(dst, 4, 4, stride)

	// top-left pixel, BGRA order.
	require.Equal(t, byte(30), dst[0])
	require.Equal(t, byte(20), dst[1])
	require.Equal(t, byte(10), dst[2])
	require.Equal(t, byte(255), dst[3])
}
