package mocks

import (
	"image"
	"sync"

	"github.com/user/framecheck/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	ProbeJSON    []byte
	FrameRecords []byte
	Stills       map[int]image.Image
}

// NewDebugSink creates a mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Stills:  make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveProbeJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbeJSON = data
	return nil
}

func (m *DebugSink) SaveFrameRecords(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FrameRecords = data
	return nil
}

func (m *DebugSink) SaveAnnotatedFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stills[index] = img
	return nil
}

// Ensure DebugSink implements ports.DebugSink
var _ ports.DebugSink = (*DebugSink)(nil)
