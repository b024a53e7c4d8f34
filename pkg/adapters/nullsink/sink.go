// Package nullsink provides a no-op debug sink.
package nullsink

import (
	"image"

	"github.com/user/framecheck/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new null Sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false; callers can skip preparing debug data entirely.
func (s *Sink) Enabled() bool {
	return false
}

// SaveProbeJSON discards the data.
func (s *Sink) SaveProbeJSON(data []byte) error {
	return nil
}

// SaveFrameRecords discards the data.
func (s *Sink) SaveFrameRecords(data []byte) error {
	return nil
}

// SaveAnnotatedFrame discards the image.
func (s *Sink) SaveAnnotatedFrame(index int, img image.Image) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
