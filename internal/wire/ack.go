package wire

import "encoding/binary"

// Reserved FrameAck.QueueDepth values, per spec §4.1.
const (
	QueueDepthUnavailable uint32 = 0x00000000
	QueueDepthSuspendAck  uint32 = 0xFFFFFFFF
)

// FrameAck is the outbound acknowledgement carrying decoded-frame count and
// client queue depth, feeding server-side adaptive rate control.
type FrameAck struct {
	FrameID           uint32
	TotalFramesDecoded uint32
	QueueDepth        uint32
}

// Encode produces the FACK wire bytes: magic + three little-endian uint32s.
func (a FrameAck) Encode() []byte {
	out := make([]byte, 4+4+4+4)
	copy(out[0:4], MagicFrameAck[:])
	binary.LittleEndian.PutUint32(out[4:8], a.FrameID)
	binary.LittleEndian.PutUint32(out[8:12], a.TotalFramesDecoded)
	binary.LittleEndian.PutUint32(out[12:16], a.QueueDepth)
	return out
}

// DecodeFrameAck parses FACK bytes back into a FrameAck. Used by the
// round-trip test (spec §8 invariant 1) and by any test harness that wants
// to observe what the compositor sent.
func DecodeFrameAck(b []byte) (FrameAck, bool) {
	if len(b) < 16 {
		return FrameAck{}, false
	}
	if Magic(b[0:4]) != MagicFrameAck {
		return FrameAck{}, false
	}
	return FrameAck{
		FrameID:            binary.LittleEndian.Uint32(b[4:8]),
		TotalFramesDecoded: binary.LittleEndian.Uint32(b[8:12]),
		QueueDepth:         binary.LittleEndian.Uint32(b[12:16]),
	}, true
}
