package compositor

import "errors"

// VideoDelegate models the asynchronous H.264/AVC444 completion contract:
// the compositor hands a tile to Submit and is notified on the returned
// channel when pixels have landed on the destination surface (or the
// decode failed). Modeled on the teacher's capture delegate shape, where a
// long-running encode/decode reports completion instead of blocking the
// caller.
type VideoDelegate interface {
	Submit(tile VideoTile) <-chan error
}

// VideoTile carries everything a VideoDelegate needs to decode and blit an
// H.264 NAL onto a destination surface.
type VideoTile struct {
	SurfaceID  uint16
	DstX, DstY int16
	Width      uint16
	Height     uint16
	CodecID    uint16
	NAL        []byte
	ChromaNAL  []byte
}

// ImageDelegate is the equivalent asynchronous contract for WebP tiles.
type ImageDelegate interface {
	Submit(tile ImageTile) <-chan error
}

// ImageTile carries a WebP-encoded tile payload plus its destination rect.
type ImageTile struct {
	SurfaceID  uint16
	FrameID    uint32
	X, Y       uint16
	Width      uint16
	Height     uint16
	Data       []byte
}

// ErrUnsupportedCodec is returned by the no-op delegates shipped with
// internal/softsink — this repo does not bundle an H.264/WebP decoder
// (spec.md's explicit non-goal), but the dispatcher's delegate-failure
// error path still needs a real delegate to exercise it against.
var ErrUnsupportedCodec = errors.New("compositor: codec not supported by this build")
