package clearcodec

import (
	"github.com/qxsch/freerdp-web-sub001/internal/surface"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

const (
	subcodecUncompressed = 0
	subcodecNSCodec       = 1
	subcodecRLEX          = 2
)

// decodeSubcodecs processes the subcodecs sub-region: a sequence of
// 13-byte-prefixed records, each dispatched by subcodecId (spec §4.2).
// tileW/tileH bound each record to the CLRC tile; tileX/tileY locate the
// tile's origin on surf.
func decodeSubcodecs(body []byte, surf *surface.Surface, tileX, tileY, tileW, tileH int) error {
	r := wire.NewReader(body)
	for r.Len() > 0 {
		xStart, ok1 := r.ReadU16()
		yStart, ok2 := r.ReadU16()
		width, ok3 := r.ReadU16()
		height, ok4 := r.ReadU16()
		byteCount, ok5 := r.ReadU32()
		subcodecID, ok6 := r.ReadU8()
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
			return ErrTruncated
		}
		if int(xStart)+int(width) > tileW || int(yStart)+int(height) > tileH {
			return ErrSubcodecBounds
		}
		data, ok := r.ReadBytes(int(byteCount))
		if !ok {
			return ErrTruncated
		}
		dx, dy := tileX+int(xStart), tileY+int(yStart)
		switch subcodecID {
		case subcodecUncompressed:
			if err := decodeUncompressedBGR24(data, surf, dx, dy, int(width), int(height)); err != nil {
				return err
			}
		case subcodecNSCodec:
			if err := decodeNSCodec(data, surf, dx, dy, int(width), int(height)); err != nil {
				return err
			}
		case subcodecRLEX:
			if err := decodeRLEX(data, surf, dx, dy, int(width), int(height)); err != nil {
				return err
			}
		default:
			return ErrSubcodecUnknown
		}
	}
	return nil
}

// decodeUncompressedBGR24 places exactly w*h*3 raw BGR bytes into surf at
// (dx,dy), forcing alpha opaque (spec §4.2 subcodec 0).
func decodeUncompressedBGR24(data []byte, surf *surface.Surface, dx, dy, w, h int) error {
	if len(data) != w*h*3 {
		return ErrUncompressedSize
	}
	cx, cy, cw, ch := surf.Clip(dx, dy, w, h)
	stride := int(surf.Width) * 4
	for row := 0; row < ch; row++ {
		srcRow := (row + (cy - dy)) * w * 3
		dstRow := (cy+row)*stride + cx*4
		for col := 0; col < cw; col++ {
			srcCol := (col + (cx - dx)) * 3
			so := srcRow + srcCol
			do := dstRow + col*4
			surf.Pix[do+0] = data[so+2]
			surf.Pix[do+1] = data[so+1]
			surf.Pix[do+2] = data[so+0]
			surf.Pix[do+3] = 0xFF
		}
	}
	return nil
}
