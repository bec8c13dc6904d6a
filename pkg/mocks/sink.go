package mocks

import (
	"image"
	"sync"

	"github.com/user/timelapse/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	ResolvedJSON []byte
	Frames       map[int]image.Image

	// Err is returned by every save call when set.
	Err error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Frames:  make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveResolvedJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.ResolvedJSON = data
	return nil
}

func (m *DebugSink) SaveFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Frames[index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                              { return false }
func (m *NullSink) SaveResolvedJSON(data []byte) error         { return nil }
func (m *NullSink) SaveFrame(index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
