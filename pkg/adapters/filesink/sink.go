// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/framecheck/pkg/ports"
)

// Sink saves debug output from an analysis run to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new Sink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveProbeJSON saves the container metadata captured at open time.
func (s *Sink) SaveProbeJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "probe.json"), data)
}

// SaveFrameRecords saves the per-frame metric records.
func (s *Sink) SaveFrameRecords(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "frames.json"), data)
}

// SaveAnnotatedFrame saves an annotated frame as a PNG still.
func (s *Sink) SaveAnnotatedFrame(index int, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode annotated frame: %w", err)
	}
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%06d.png", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
