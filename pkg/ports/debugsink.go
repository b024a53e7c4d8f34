package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate analysis results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveProbeJSON saves the container metadata captured at open time.
	SaveProbeJSON(data []byte) error

	// SaveFrameRecords saves the per-frame metric records as JSON.
	SaveFrameRecords(data []byte) error

	// SaveAnnotatedFrame saves an annotated frame as a still image.
	SaveAnnotatedFrame(index int, img image.Image) error
}
