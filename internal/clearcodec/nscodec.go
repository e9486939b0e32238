package clearcodec

import (
	"github.com/qxsch/freerdp-web-sub001/internal/surface"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

func roundUp8(n int) int { return (n + 7) &^ 7 }
func roundUp2(n int) int { return (n + 1) &^ 1 }

// decodeNSCodec implements the NSCodec inner decoder: four RLE/raw/filled
// planes (Y, Co, Cg, A) recombined via YCoCg->RGB (spec §4.2).
func decodeNSCodec(data []byte, surf *surface.Surface, dx, dy, w, h int) error {
	r := wire.NewReader(data)
	yCount, ok1 := r.ReadU32()
	coCount, ok2 := r.ReadU32()
	cgCount, ok3 := r.ReadU32()
	aCount, ok4 := r.ReadU32()
	lossLevel, ok5 := r.ReadU8()
	subsampling, ok6 := r.ReadU8()
	_, ok7 := r.ReadU16() // reserved
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return ErrTruncated
	}
	if lossLevel < 1 || lossLevel > 7 {
		return ErrNSCodecPlaneSize
	}
	subsampled := subsampling == 1

	yStride, yHeight := w, h
	var chromaW, chromaH int
	if subsampled {
		yStride = roundUp8(w)
		chromaW = roundUp8(w) / 2
		chromaH = roundUp2(h) / 2
	} else {
		chromaW, chromaH = w, h
	}
	ySize := yStride * yHeight
	chromaSize := chromaW * chromaH
	aSize := w * h

	yPlane, err := decodePlane(r, int(yCount), ySize)
	if err != nil {
		return err
	}
	coPlane, err := decodePlane(r, int(coCount), chromaSize)
	if err != nil {
		return err
	}
	cgPlane, err := decodePlane(r, int(cgCount), chromaSize)
	if err != nil {
		return err
	}
	aPlane, err := decodePlane(r, int(aCount), aSize)
	if err != nil {
		return err
	}

	shift := uint(lossLevel - 1)
	cx, cy, cw, ch := surf.Clip(dx, dy, w, h)
	stride := int(surf.Width) * 4
	for row := 0; row < ch; row++ {
		srcY := row + (cy - dy)
		for col := 0; col < cw; col++ {
			srcX := col + (cx - dx)
			yv := int(yPlane[srcY*yStride+srcX])
			var coRaw, cgRaw byte
			if subsampled {
				coRaw = coPlane[(srcY>>1)*chromaW+(srcX>>1)]
				cgRaw = cgPlane[(srcY>>1)*chromaW+(srcX>>1)]
			} else {
				coRaw = coPlane[srcY*chromaW+srcX]
				cgRaw = cgPlane[srcY*chromaW+srcX]
			}
			co := int(int8(byte(int(coRaw) << shift)))
			cg := int(int8(byte(int(cgRaw) << shift)))
			rr := clamp8(yv + co - cg)
			gg := clamp8(yv + cg)
			bb := clamp8(yv - co - cg)
			av := aPlane[srcY*w+srcX]

			o := (cy+row)*stride + (cx+col)*4
			surf.Pix[o+0] = byte(rr)
			surf.Pix[o+1] = byte(gg)
			surf.Pix[o+2] = byte(bb)
			surf.Pix[o+3] = av
		}
	}
	return nil
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// decodePlane reads declaredCount bytes from r and returns an uncompressed
// buffer of planeSize bytes: filled with 0xFF if declaredCount==0, RLE
// decoded if declaredCount < planeSize, or copied raw if declaredCount ==
// planeSize (spec §4.2).
func decodePlane(r *wire.Reader, declaredCount, planeSize int) ([]byte, error) {
	switch {
	case declaredCount == 0:
		out := make([]byte, planeSize)
		for i := range out {
			out[i] = 0xFF
		}
		return out, nil
	case declaredCount < planeSize:
		body, ok := r.ReadBytes(declaredCount)
		if !ok {
			return nil, ErrTruncated
		}
		return decodePlaneRLE(body, planeSize)
	case declaredCount == planeSize:
		body, ok := r.ReadBytes(declaredCount)
		if !ok {
			return nil, ErrTruncated
		}
		out := make([]byte, planeSize)
		copy(out, body)
		return out, nil
	default:
		return nil, ErrNSCodecPlaneSize
	}
}

// decodePlaneRLE implements the plane RLE described in spec §4.2: pairs of
// identical bytes introduce a run-length byte (extended to u32 when 0xFF),
// anything else is a literal; the trailing 4 bytes are always literal.
func decodePlaneRLE(body []byte, planeSize int) ([]byte, error) {
	out := make([]byte, 0, planeSize)
	r := wire.NewReader(body)
	for r.Len() > 4 {
		v, ok := r.ReadU8()
		if !ok {
			return nil, ErrTruncated
		}
		next, ok := r.PeekU8()
		if ok && next == v {
			r.Skip(1)
			k, ok := r.ReadU8()
			if !ok {
				return nil, ErrTruncated
			}
			var runLen int
			if k < 0xFF {
				runLen = int(k) + 2
			} else {
				u32, ok := r.ReadU32()
				if !ok {
					return nil, ErrTruncated
				}
				runLen = int(u32)
			}
			if len(out)+runLen > planeSize {
				return nil, ErrNSCodecPlaneSize
			}
			for i := 0; i < runLen; i++ {
				out = append(out, v)
			}
		} else {
			if len(out) >= planeSize {
				return nil, ErrNSCodecPlaneSize
			}
			out = append(out, v)
		}
	}
	tail, ok := r.ReadBytes(r.Len())
	if !ok {
		return nil, ErrTruncated
	}
	out = append(out, tail...)
	if len(out) != planeSize {
		return nil, ErrNSCodecPlaneSize
	}
	return out, nil
}
