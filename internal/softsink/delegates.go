package softsink

import "github.com/qxsch/freerdp-web-sub001/internal/compositor"

// NoopVideoDelegate reports every H.264/AVC444 tile as unsupported. This
// repo does not bundle a video decoder (spec's explicit non-goal); this
// delegate exists so the compositor's delegate-failure error path is
// exercised end-to-end without one.
type NoopVideoDelegate struct{}

func (NoopVideoDelegate) Submit(compositor.VideoTile) <-chan error {
	done := make(chan error, 1)
	done <- compositor.ErrUnsupportedCodec
	return done
}

// NoopImageDelegate is the WebP equivalent of NoopVideoDelegate.
type NoopImageDelegate struct{}

func (NoopImageDelegate) Submit(compositor.ImageTile) <-chan error {
	done := make(chan error, 1)
	done <- compositor.ErrUnsupportedCodec
	return done
}
