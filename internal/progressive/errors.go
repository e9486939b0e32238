package progressive

import "errors"

var (
	ErrUnknownSurface = errors.New("progressive: unknown surface id")
	ErrTruncated      = errors.New("progressive: truncated tile message")
	ErrTileOutOfGrid  = errors.New("progressive: tile index outside grid")
	ErrUnknownMsgType = errors.New("progressive: unknown tile message type")
	ErrUnknownPlane   = errors.New("progressive: unknown coefficient plane selector")
)
