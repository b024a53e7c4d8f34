package ports

import (
	"image"
)

// VideoSink encodes annotated frames, strictly in submission order, into an
// output video container.
type VideoSink interface {
	// Begin initializes the encoder with the source's dimensions and frame
	// rate. It fails with pipeline.ErrSinkUnwritable if the codec cannot
	// be initialized.
	Begin(width, height int, fps float64, opts SinkOptions) error

	// WriteFrame encodes a single frame. Frames are written in the order
	// submitted; the sink performs no reordering.
	WriteFrame(img image.Image) error

	// End finalizes the container and returns the encoded video data.
	End() ([]byte, error)

	// Abort discards any partial output and releases the encoder. It is a
	// no-op after a successful End, so callers can defer it
	// unconditionally.
	Abort()
}

// SinkOptions configures video encoding parameters.
type SinkOptions struct {
	Bitrate int // target bitrate in kbps, 0 for codec default
	Quality int // CRF value 0-63, lower is higher quality
}
