package compositor

import "github.com/qxsch/freerdp-web-sub001/internal/surface"

// Sink is the pixel-plane backend the compositor composes onto. It is
// provided by the host environment (a WASM/canvas embedder, a headless
// test harness) — the compositor itself never allocates or owns pixel
// storage beyond what surface.Surface already holds.
type Sink interface {
	// BlitRGBABlock copy-overwrites dst at (dstX,dstY) with srcPixels
	// (srcW*srcH*4 bytes, RGBA). No blending.
	BlitRGBABlock(dst *surface.Surface, dstX, dstY uint16, srcPixels []byte, srcW, srcH uint16)

	// BlitRect copies a w*h rectangle from src at (srcX,srcY) to dst at
	// (dstX,dstY). When src == dst, implementations must be safe for
	// overlapping source/destination regions (read fully before writing).
	BlitRect(dst *surface.Surface, dstX, dstY uint16, src *surface.Surface, srcX, srcY, w, h uint16)

	// ReadRect returns a copy of the w*h RGBA block at (x,y) on surf.
	ReadRect(surf *surface.Surface, x, y, w, h uint16) []byte

	// FillRect fills the w*h rectangle at (x,y) on dst with a single RGBA
	// color, no blending.
	FillRect(dst *surface.Surface, x, y, w, h uint16, rgba [4]byte)

	// ResizePrimary (re)allocates the primary output buffer, initialized to
	// opaque black, per ResetGraphics semantics.
	ResizePrimary(width, height uint16)

	// ComposeToPrimary direct-copies src onto the primary output buffer.
	ComposeToPrimary(src *surface.Surface)
}
