// Package ports defines interfaces for external dependencies.
package ports

import (
	"image"
)

// FallbackIntervalMs is the nominal frame spacing assumed when a container
// reports no usable frame rate.
const FallbackIntervalMs = 33.33

// VideoMeta is the immutable container metadata captured once at open time.
type VideoMeta struct {
	FPS        float64 // frames per second, may be non-integer
	FrameCount int     // frame count as reported by the container; may be inaccurate
	Width      int     // pixels
	Height     int     // pixels
	DurationS  float64 // seconds, as reported by the container
}

// ExpectedIntervalMs returns the nominal spacing between frames in
// milliseconds, or FallbackIntervalMs when the frame rate is unusable.
func (m VideoMeta) ExpectedIntervalMs() float64 {
	if m.FPS > 0 {
		return 1000.0 / m.FPS
	}
	return FallbackIntervalMs
}

// Frame is a single decoded frame with its zero-based sequential index and
// presentation timestamp in milliseconds.
type Frame struct {
	Index       int
	TimestampMs float64
	Image       *image.RGBA
}

// VideoSource supplies decoded frames from a video container in
// presentation order. The sequence is lazy, finite and one-pass; a source
// cannot be reopened or rewound.
type VideoSource interface {
	// Open probes the container and prepares the decode stream. It fails
	// with pipeline.ErrSourceUnreadable if the container cannot be opened
	// or has no readable video stream.
	Open(path string) (VideoMeta, error)

	// NextFrame returns the next decoded frame. It returns io.EOF once the
	// stream is cleanly exhausted; any other error is a decode failure and
	// is fatal for the run.
	NextFrame() (Frame, error)

	// Close releases the decoding context. It must be called on both
	// normal completion and error exit, and is safe to call repeatedly.
	Close() error
}

// FrameExtractor pulls a single frame out of a video by index, used for
// on-demand thumbnails.
type FrameExtractor interface {
	ExtractFrame(path string, index int) (image.Image, error)
}
