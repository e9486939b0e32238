package clearcodec

import "github.com/qxsch/freerdp-web-sub001/internal/wire"

// decodeResidual implements the BGR24+runLength RLE described in spec §4.2:
// each record is b,g,r,runLen(u8); runLen 0xFF extends by u16, and a u16 of
// 0xFFFF further extends by u32. The result must total exactly w*h pixels.
func decodeResidual(body []byte, w, h int) ([]byte, error) {
	want := w * h
	out := make([]byte, want*4)
	r := wire.NewReader(body)
	written := 0
	for r.Len() > 0 {
		b, ok1 := r.ReadU8()
		g, ok2 := r.ReadU8()
		red, ok3 := r.ReadU8()
		run8, ok4 := r.ReadU8()
		if !(ok1 && ok2 && ok3 && ok4) {
			return nil, ErrTruncated
		}
		runLen := uint32(run8)
		if run8 == 0xFF {
			run16, ok := r.ReadU16()
			if !ok {
				return nil, ErrTruncated
			}
			runLen = uint32(run16)
			if run16 == 0xFFFF {
				run32, ok := r.ReadU32()
				if !ok {
					return nil, ErrTruncated
				}
				runLen = run32
			}
		}
		if written+int(runLen) > want {
			return nil, ErrResidualPixelCount
		}
		for i := uint32(0); i < runLen; i++ {
			o := (written + int(i)) * 4
			out[o+0] = red
			out[o+1] = g
			out[o+2] = b
			out[o+3] = 0xFF
		}
		written += int(runLen)
	}
	if written != want {
		return nil, ErrResidualPixelCount
	}
	return out, nil
}
