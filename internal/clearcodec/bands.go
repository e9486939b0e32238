package clearcodec

import (
	"github.com/qxsch/freerdp-web-sub001/internal/surface"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

// decodeBands processes the bands sub-region: a sequence of bands, each a
// rectangle with a BGR background color followed by one VBar record per
// column (spec §4.2). tileX/tileY locate the CLRC tile's origin on surf.
func (s *Session) decodeBands(body []byte, surf *surface.Surface, tileX, tileY int) error {
	r := wire.NewReader(body)
	for r.Len() > 0 {
		xStart, ok1 := r.ReadU16()
		xEnd, ok2 := r.ReadU16()
		yStart, ok3 := r.ReadU16()
		yEnd, ok4 := r.ReadU16()
		bkg, ok5 := r.ReadBytes(3)
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			return ErrTruncated
		}
		if xEnd < xStart || yEnd < yStart {
			return ErrVBarHeaderInvalid
		}
		bandHeight := int(yEnd) - int(yStart) + 1
		if bandHeight > maxBandHeight {
			return ErrBandHeightTooLarge
		}
		var bkgArr [3]byte
		copy(bkgArr[:], bkg)

		numCols := int(xEnd) - int(xStart) + 1
		for col := 0; col < numCols; col++ {
			header, ok := r.ReadU16()
			if !ok {
				return ErrTruncated
			}
			var column []byte
			switch {
			case header&vBarCacheHitMask == shortVBarCacheHit:
				idx := header & 0x3FFF
				yOn, ok := r.ReadU8()
				if !ok {
					return ErrTruncated
				}
				frag := s.shortVBars.get(idx)
				column = composeColumn(bkgArr, bandHeight, int(yOn), frag)
				s.vBars.append(column)
			case header&vBarCacheHitMask == vBarCacheHitTag || header&0x8000 != 0:
				idx := header & 0x7FFF
				var hitOK bool
				column, hitOK = s.vBars.hit(idx, bandHeight)
				if !hitOK {
					return ErrVBarCacheHitSizeMismatch
				}
			case header&shortVBarMissMask == 0x0000:
				yOn := int(header & 0xFF)
				yOff := int((header >> 8) & 0x3F)
				pixelCount := yOff - yOn
				if pixelCount < 0 || pixelCount > maxBandHeight {
					return ErrVBarShortPixelCount
				}
				bgr, ok := r.ReadBytes(pixelCount * 3)
				if !ok {
					return ErrTruncated
				}
				frag := bgrToRGBAColumn(bgr)
				s.shortVBars.append(frag)
				column = composeColumn(bkgArr, bandHeight, yOn, frag)
				s.vBars.append(column)
			default:
				return ErrVBarHeaderInvalid
			}

			x := tileX + int(xStart) + col
			y := tileY + int(yStart)
			blitColumn(surf, x, y, bandHeight, column)
		}
	}
	return nil
}

// blitColumn writes an RGBA column of h rows at (x,y), clipped to surf's
// bounds (spec §4.2, "blitted into the target ... clipped to surface
// bounds").
func blitColumn(surf *surface.Surface, x, y, h int, column []byte) {
	cx, cy, cw, ch := surf.Clip(x, y, 1, h)
	if cw == 0 || ch == 0 {
		return
	}
	skip := cy - y
	stride := int(surf.Width) * 4
	for row := 0; row < ch; row++ {
		srcOff := (skip + row) * 4
		dstOff := (cy+row)*stride + cx*4
		copy(surf.Pix[dstOff:dstOff+4], column[srcOff:srcOff+4])
	}
}
