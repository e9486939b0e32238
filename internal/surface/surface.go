// Package surface implements the off-screen surface registry (spec §3, §4.5).
// Surfaces are mutated only from the single compositor goroutine; this
// package does not take its own locks, matching the teacher's single-writer
// convention for state that is only ever touched by the dispatch loop
// (compare internal/remote/desktop.Session's capture-loop-owned fields).
package surface

import "github.com/qxsch/freerdp-web-sub001/internal/wire"

// Surface is an off-screen RGBA pixel buffer identified by a 16-bit id.
type Surface struct {
	ID          uint16
	Width       uint16
	Height      uint16
	PixelFormat uint16 // wire.PixelFormatXRGB8888 / wire.PixelFormatARGB8888, metadata only
	Pix         []byte // tightly packed RGBA, len == Width*Height*4
}

// NewSurface allocates a surface filled with opaque black, per spec §3
// ("initial contents opaque black") and testable property 3.
func NewSurface(id, width, height, pixelFormat uint16) *Surface {
	pix := make([]byte, int(width)*int(height)*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = 0
		pix[i+1] = 0
		pix[i+2] = 0
		pix[i+3] = 0xFF
	}
	return &Surface{ID: id, Width: width, Height: height, PixelFormat: pixelFormat, Pix: pix}
}

// InBounds reports whether the w×h rectangle at (x,y) lies entirely within
// the surface. The blit/fill primitives in this module clip with Clip
// instead and do not call InBounds.
func (s *Surface) InBounds(x, y int, w, h int) bool {
	if x < 0 || y < 0 || w < 0 || h < 0 {
		return false
	}
	return x+w <= int(s.Width) && y+h <= int(s.Height)
}

// Clip intersects the w×h rectangle at (x,y) with the surface bounds,
// returning the clipped rectangle. Negative origins and rectangles fully
// outside the surface yield w==0 || h==0.
func (s *Surface) Clip(x, y, w, h int) (cx, cy, cw, ch int) {
	x0, y0 := x, y
	x1, y1 := x+w, y+h
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > int(s.Width) {
		x1 = int(s.Width)
	}
	if y1 > int(s.Height) {
		y1 = int(s.Height)
	}
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0
	}
	return x0, y0, x1 - x0, y1 - y0
}

// ensure the package is wired to the wire constants it documents above.
var _ = wire.PixelFormatXRGB8888
