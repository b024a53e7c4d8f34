// Package mocks provides hand-written mock implementations of the ports
// for testing.
package mocks

import (
	"io"
	"sync"

	"github.com/user/framecheck/pkg/ports"
)

// VideoSource is a mock implementation of ports.VideoSource that serves a
// fixed slice of frames.
type VideoSource struct {
	mu sync.Mutex

	Meta   ports.VideoMeta
	Frames []ports.Frame

	// OpenErr, when set, is returned by Open.
	OpenErr error

	// FailAtIndex, when >= 0, makes NextFrame return FailErr at that
	// index instead of a frame.
	FailAtIndex int
	FailErr     error

	OpenedPath string
	CloseCount int
	pos        int
}

// NewVideoSource creates a mock source serving the given frames.
func NewVideoSource(meta ports.VideoMeta, frames []ports.Frame) *VideoSource {
	return &VideoSource{
		Meta:        meta,
		Frames:      frames,
		FailAtIndex: -1,
	}
}

func (m *VideoSource) Open(path string) (ports.VideoMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return ports.VideoMeta{}, m.OpenErr
	}
	m.OpenedPath = path
	return m.Meta, nil
}

func (m *VideoSource) NextFrame() (ports.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAtIndex >= 0 && m.pos == m.FailAtIndex {
		return ports.Frame{}, m.FailErr
	}
	if m.pos >= len(m.Frames) {
		return ports.Frame{}, io.EOF
	}
	f := m.Frames[m.pos]
	m.pos++
	return f, nil
}

func (m *VideoSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCount++
	return nil
}

// Ensure VideoSource implements ports.VideoSource
var _ ports.VideoSource = (*VideoSource)(nil)
