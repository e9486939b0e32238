package clearcodec

import (
	"math/bits"

	"github.com/qxsch/freerdp-web-sub001/internal/surface"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

// decodeRLEX implements the palette-coded run/suite decoder (spec §4.2):
// a BGR palette of up to 127 entries, then runs of a single index followed
// by short "suites" stepping across a contiguous palette range.
func decodeRLEX(data []byte, surf *surface.Surface, dx, dy, w, h int) error {
	r := wire.NewReader(data)
	paletteCount, ok := r.ReadU8()
	if !ok {
		return ErrTruncated
	}
	if paletteCount < 1 || paletteCount > 127 {
		return ErrPaletteRange
	}
	palette := make([][3]byte, paletteCount)
	for i := range palette {
		bgr, ok := r.ReadBytes(3)
		if !ok {
			return ErrTruncated
		}
		palette[i] = [3]byte{bgr[0], bgr[1], bgr[2]}
	}

	numBits := bits.Len(uint(paletteCount - 1))
	if numBits == 0 {
		numBits = 1
	}
	idxMask := (1 << numBits) - 1
	suiteMask := (1 << (8 - numBits)) - 1

	want := w * h
	out := make([]byte, want*4)
	written := 0
	for r.Len() > 0 {
		tmp, ok1 := r.ReadU8()
		runLen8, ok2 := r.ReadU8()
		if !(ok1 && ok2) {
			return ErrTruncated
		}
		suiteDepth := int(tmp>>uint(numBits)) & suiteMask
		stopIndex := int(tmp) & idxMask
		startIndex := stopIndex - suiteDepth

		runLength := uint32(runLen8)
		if runLen8 >= 0xFF {
			run16, ok := r.ReadU16()
			if !ok {
				return ErrTruncated
			}
			runLength = uint32(run16)
			if run16 == 0xFFFF {
				run32, ok := r.ReadU32()
				if !ok {
					return ErrTruncated
				}
				runLength = run32
			}
		}
		if startIndex < 0 || stopIndex >= int(paletteCount) {
			return ErrPaletteIndexRange
		}

		total := int(runLength) + (suiteDepth + 1)
		if written+total > want {
			return ErrPixelCountMismatch
		}
		for i := uint32(0); i < runLength; i++ {
			writeRLEXPixel(out, written, palette[startIndex])
			written++
		}
		for idx := startIndex; idx <= stopIndex; idx++ {
			writeRLEXPixel(out, written, palette[idx])
			written++
		}
	}
	if written != want {
		return ErrPixelCountMismatch
	}

	cx, cy, cw, ch := surf.Clip(dx, dy, w, h)
	stride := int(surf.Width) * 4
	for row := 0; row < ch; row++ {
		srcRow := (row + (cy - dy)) * w
		dstRow := (cy+row)*stride + cx*4
		for col := 0; col < cw; col++ {
			so := (srcRow + col + (cx - dx)) * 4
			do := dstRow + col*4
			copy(surf.Pix[do:do+4], out[so:so+4])
		}
	}
	return nil
}

func writeRLEXPixel(out []byte, pos int, c [3]byte) {
	o := pos * 4
	out[o+0] = c[2]
	out[o+1] = c[1]
	out[o+2] = c[0]
	out[o+3] = 0xFF
}
