package mocks

import (
	"image"
	"sync"

	"github.com/user/framecheck/pkg/ports"
)

// VideoSink is a mock implementation of ports.VideoSink that records
// written frames.
type VideoSink struct {
	mu sync.Mutex

	// BeginErr and WriteErr, when set, are returned by the respective
	// methods.
	BeginErr error
	WriteErr error

	// Data is returned by End.
	Data []byte

	Width      int
	Height     int
	FPS        float64
	Opts       ports.SinkOptions
	Frames     []image.Image
	Begun      bool
	Ended      bool
	AbortCount int
}

// NewVideoSink creates a mock sink.
func NewVideoSink() *VideoSink {
	return &VideoSink{Data: []byte("mp4")}
}

func (m *VideoSink) Begin(width, height int, fps float64, opts ports.SinkOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BeginErr != nil {
		return m.BeginErr
	}
	m.Width = width
	m.Height = height
	m.FPS = fps
	m.Opts = opts
	m.Begun = true
	return nil
}

func (m *VideoSink) WriteFrame(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Frames = append(m.Frames, img)
	return nil
}

func (m *VideoSink) End() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ended = true
	return m.Data, nil
}

func (m *VideoSink) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Ended {
		return
	}
	m.AbortCount++
}

// Ensure VideoSink implements ports.VideoSink
var _ ports.VideoSink = (*VideoSink)(nil)
