// Package clearcodec implements the RDPGFX ClearCodec (CLEARCODEC_BITMAP)
// client-side decoder: a glyph cache, a wrap-around VBar/short-VBar column
// cache, and three inner sub-codecs (uncompressed BGR24, NSCodec, RLEX),
// composed under strict per-connection sequence-number ordering.
package clearcodec

import "github.com/qxsch/freerdp-web-sub001/internal/surface"

// Glyph flag bits in the 2-byte CLRC header (spec §4.2).
const (
	flagGlyphIndex = 0x01
	flagGlyphHit   = 0x02
	flagCacheReset = 0x04
)

// Session holds all ClearCodec inter-frame state for one connection: the
// sequence counter, the glyph cache, and both VBar rings. A zero-value
// Session is not usable; construct with NewSession.
type Session struct {
	seqInitialized bool
	expectedSeq    uint8

	glyphs     glyphCache
	vBars      *vBarRing
	shortVBars *shortVBarRing
}

func NewSession() *Session {
	return &Session{
		vBars:      newVBarRing(),
		shortVBars: newShortVBarRing(),
	}
}

// ResetSequence reinitializes the sequence counter to its pre-seed state,
// invoked by the compositor on ResetGraphics (spec §4.6: "reset ClearCodec
// sequence number to 0 (caches preserved)").
func (s *Session) ResetSequence() {
	s.seqInitialized = false
	s.expectedSeq = 0
}

func (s *Session) checkSequence(seq uint8) error {
	if !s.seqInitialized {
		s.seqInitialized = true
		s.expectedSeq = seq + 1
		return nil
	}
	if seq != s.expectedSeq {
		return ErrSequenceMismatch
	}
	s.expectedSeq = seq + 1
	return nil
}

// Decode processes one CLRC tile payload, writing pixels into surf at the
// rectangle (tileX, tileY, tileW, tileH) and mutating session caches as a
// side effect (spec §4.2).
func (s *Session) Decode(payload []byte, surf *surface.Surface, tileX, tileY, tileW, tileH int) error {
	if len(payload) < 2 {
		return ErrTruncated
	}
	glyphFlags := payload[0]
	seqNumber := payload[1]
	body := payload[2:]

	if err := s.checkSequence(seqNumber); err != nil {
		return err
	}

	if glyphFlags&flagCacheReset != 0 {
		s.vBars.reset()
		s.shortVBars.reset()
	}

	hasIndex := glyphFlags&flagGlyphIndex != 0
	hasHit := glyphFlags&flagGlyphHit != 0
	if hasHit && !hasIndex {
		return ErrGlyphFlagsInconsistent
	}

	var glyphIndex uint16
	if hasIndex {
		if len(body) < 2 {
			return ErrTruncated
		}
		glyphIndex = uint16(body[0]) | uint16(body[1])<<8
		body = body[2:]
		if int(glyphIndex) >= glyphSlotCount {
			return ErrGlyphIndexRange
		}
	}

	if hasHit {
		pix, ok := s.glyphs.get(glyphIndex, uint16(tileW), uint16(tileH))
		if !ok {
			return ErrGlyphSizeExceedsCache
		}
		blitRGBA(surf, tileX, tileY, tileW, tileH, pix)
		return nil
	}

	if len(body) >= 12 {
		residualByteCount := int(le32(body[0:4]))
		bandsByteCount := int(le32(body[4:8]))
		subcodecByteCount := int(le32(body[8:12]))
		body = body[12:]

		if residualByteCount > 0 {
			if residualByteCount > len(body) {
				return ErrTruncated
			}
			region := body[:residualByteCount]
			body = body[residualByteCount:]
			scratch, err := decodeResidual(region, tileW, tileH)
			if err != nil {
				return err
			}
			blitRGBA(surf, tileX, tileY, tileW, tileH, scratch)
		}
		if bandsByteCount > 0 {
			if bandsByteCount > len(body) {
				return ErrTruncated
			}
			region := body[:bandsByteCount]
			body = body[bandsByteCount:]
			if err := s.decodeBands(region, surf, tileX, tileY); err != nil {
				return err
			}
		}
		if subcodecByteCount > 0 {
			if subcodecByteCount > len(body) {
				return ErrTruncated
			}
			region := body[:subcodecByteCount]
			body = body[subcodecByteCount:]
			if err := decodeSubcodecs(region, surf, tileX, tileY, tileW, tileH); err != nil {
				return err
			}
		}
	}

	if hasIndex {
		if tileW*tileH > glyphSizeCap {
			return ErrGlyphSizeCap
		}
		dst := s.glyphs.ensure(glyphIndex, uint16(tileW), uint16(tileH))
		captureRGBA(surf, tileX, tileY, tileW, tileH, dst)
	}
	return nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// blitRGBA copies a tightly-packed w*h*4 RGBA block into surf at (x,y),
// clipped to surface bounds.
func blitRGBA(surf *surface.Surface, x, y, w, h int, pix []byte) {
	cx, cy, cw, ch := surf.Clip(x, y, w, h)
	stride := int(surf.Width) * 4
	for row := 0; row < ch; row++ {
		srcOff := ((row + (cy - y)) * w) * 4
		dstOff := (cy+row)*stride + cx*4
		for col := 0; col < cw; col++ {
			so := srcOff + (col+(cx-x))*4
			do := dstOff + col*4
			copy(surf.Pix[do:do+4], pix[so:so+4])
		}
	}
}

// captureRGBA is the inverse of blitRGBA: it reads the w*h rectangle at
// (x,y) out of surf into dst, used to populate the glyph cache after an
// INDEX-without-HIT decode (spec §4.2). Unlike blitRGBA this does not clip
// columns: a row is copied only when it lies inside the surface and the full
// w-pixel span fits horizontally; other rows are skipped and leave dst as it
// was.
func captureRGBA(surf *surface.Surface, x, y, w, h int, dst []byte) {
	stride := int(surf.Width) * 4
	for row := 0; row < h; row++ {
		srcOff := (y+row)*stride + x*4
		dstOff := row * w * 4
		if y+row >= int(surf.Height) || x+w > int(surf.Width) {
			continue
		}
		copy(dst[dstOff:dstOff+w*4], surf.Pix[srcOff:srcOff+w*4])
	}
}
