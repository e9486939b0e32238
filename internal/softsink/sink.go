// Package softsink provides a software-rendered compositor.Sink backed by
// in-memory RGBA buffers, so the module is runnable end-to-end without a
// host-supplied rendering surface. Production embedders (a WASM/canvas
// host, a native GPU surface) supply their own compositor.Sink instead.
package softsink

import (
	"sync"

	"github.com/qxsch/freerdp-web-sub001/internal/surface"
)

// Sink implements compositor.Sink entirely with Go slices; every blit/fill
// primitive bounds-clips against the destination surface so pixels outside
// [0,w)x[0,h) are never touched (spec invariant 4).
type Sink struct {
	mu      sync.Mutex
	primary *surface.Surface
	scratch sync.Pool
}

// New returns an empty Sink with no primary buffer allocated yet; the
// first ResizePrimary call (made by the compositor on ResetGraphics, or
// directly by an embedder) establishes it.
func New() *Sink {
	s := &Sink{}
	s.scratch.New = func() any {
		return make([]byte, 0, 64*64*4)
	}
	return s
}

// Primary returns the current primary output buffer, or nil before the
// first ResizePrimary.
func (s *Sink) Primary() *surface.Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primary
}

func (s *Sink) ResizePrimary(width, height uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = surface.NewSurface(0, width, height, 0)
}

func (s *Sink) BlitRGBABlock(dst *surface.Surface, dstX, dstY uint16, srcPixels []byte, srcW, srcH uint16) {
	cx, cy, cw, ch := dst.Clip(int(dstX), int(dstY), int(srcW), int(srcH))
	if cw <= 0 || ch <= 0 {
		return
	}
	offX := cx - int(dstX)
	offY := cy - int(dstY)
	stride := int(srcW) * 4
	dstStride := int(dst.Width) * 4
	for row := 0; row < ch; row++ {
		srcOff := (offY+row)*stride + offX*4
		dstOff := (cy+row)*dstStride + cx*4
		copy(dst.Pix[dstOff:dstOff+cw*4], srcPixels[srcOff:srcOff+cw*4])
	}
}

// BlitRect copies a w*h rectangle from src to dst, safe for src == dst with
// overlapping regions: it always reads the full source block into a
// pooled scratch buffer before writing a single byte to dst, per spec's
// self-blit rule (read fully, then write).
func (s *Sink) BlitRect(dst *surface.Surface, dstX, dstY uint16, src *surface.Surface, srcX, srcY, w, h uint16) {
	n := int(w) * int(h) * 4
	scratch := s.getScratch(n)
	s.readInto(src, srcX, srcY, w, h, scratch)
	s.BlitRGBABlock(dst, dstX, dstY, scratch, w, h)
	s.putScratch(scratch)
}

// ReadRect returns an owned copy of the w*h RGBA block at (x,y) — callers
// (SurfaceToCache) retain the result indefinitely, so it is never drawn
// from the pool.
func (s *Sink) ReadRect(surf *surface.Surface, x, y, w, h uint16) []byte {
	out := make([]byte, int(w)*int(h)*4)
	s.readInto(surf, x, y, w, h, out)
	return out
}

func (s *Sink) readInto(surf *surface.Surface, x, y, w, h uint16, out []byte) {
	cx, cy, cw, ch := surf.Clip(int(x), int(y), int(w), int(h))
	if cw <= 0 || ch <= 0 {
		return
	}
	offX := cx - int(x)
	offY := cy - int(y)
	srcStride := int(surf.Width) * 4
	dstStride := int(w) * 4
	for row := 0; row < ch; row++ {
		srcOff := (cy+row)*srcStride + cx*4
		dstOff := (offY+row)*dstStride + offX*4
		copy(out[dstOff:dstOff+cw*4], surf.Pix[srcOff:srcOff+cw*4])
	}
}

// getScratch returns a pooled buffer of at least n bytes, zeroed.
func (s *Sink) getScratch(n int) []byte {
	buf := s.scratch.Get().([]byte)
	if cap(buf) < n {
		return make([]byte, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func (s *Sink) putScratch(buf []byte) {
	if cap(buf) > 1<<20 {
		return // don't pool oversized buffers
	}
	s.scratch.Put(buf[:0])
}

func (s *Sink) FillRect(dst *surface.Surface, x, y, w, h uint16, rgba [4]byte) {
	cx, cy, cw, ch := dst.Clip(int(x), int(y), int(w), int(h))
	if cw <= 0 || ch <= 0 {
		return
	}
	dstStride := int(dst.Width) * 4
	for row := 0; row < ch; row++ {
		base := (cy+row)*dstStride + cx*4
		for col := 0; col < cw; col++ {
			off := base + col*4
			dst.Pix[off+0] = rgba[0]
			dst.Pix[off+1] = rgba[1]
			dst.Pix[off+2] = rgba[2]
			dst.Pix[off+3] = rgba[3]
		}
	}
}

func (s *Sink) ComposeToPrimary(src *surface.Surface) {
	s.mu.Lock()
	primary := s.primary
	s.mu.Unlock()
	if primary == nil {
		return
	}
	s.BlitRGBABlock(primary, 0, 0, src.Pix, src.Width, src.Height)
}
