package mocks

import (
	"image"
	"sync"

	"github.com/user/timelapse/pkg/ports"
)

// VideoWriter is a mock implementation of ports.VideoWriter.
type VideoWriter struct {
	mu sync.Mutex

	WriteFrameFunc func(img image.Image) error
	CloseFunc      func() error

	// Recorded calls for verification
	Frames     []image.Image
	CloseCalls int
}

func (m *VideoWriter) WriteFrame(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(img); err != nil {
			return err
		}
	}
	m.Frames = append(m.Frames, img)
	return nil
}

func (m *VideoWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// FrameTags returns the red channel of each written frame's top-left pixel.
func (m *VideoWriter) FrameTags() []uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	tags := make([]uint8, len(m.Frames))
	for i, f := range m.Frames {
		r, _, _, _ := f.At(f.Bounds().Min.X, f.Bounds().Min.Y).RGBA()
		tags[i] = uint8(r >> 8)
	}
	return tags
}

var _ ports.VideoWriter = (*VideoWriter)(nil)

// VideoWriterFactory is a mock implementation of ports.VideoWriterFactory.
type VideoWriterFactory struct {
	OpenFunc func(spec ports.WriterSpec) (ports.VideoWriter, ports.WriterInfo, error)

	// Writer is returned by Open when OpenFunc is nil.
	Writer *VideoWriter

	OpenCalls []ports.WriterSpec
}

// NewVideoWriterFactory creates a factory that hands out a fresh mock writer.
func NewVideoWriterFactory() *VideoWriterFactory {
	return &VideoWriterFactory{Writer: &VideoWriter{}}
}

func (m *VideoWriterFactory) Open(spec ports.WriterSpec) (ports.VideoWriter, ports.WriterInfo, error) {
	m.OpenCalls = append(m.OpenCalls, spec)
	if m.OpenFunc != nil {
		return m.OpenFunc(spec)
	}
	return m.Writer, ports.WriterInfo{Backend: "mock", Codec: spec.Codec}, nil
}

var _ ports.VideoWriterFactory = (*VideoWriterFactory)(nil)

// OutputLocker is a mock implementation of ports.OutputLocker.
type OutputLocker struct {
	mu     sync.Mutex
	held   map[string]bool
	Denied bool
	Err    error

	UnlockCalls int
}

// NewOutputLocker creates a mock locker with no held paths.
func NewOutputLocker() *OutputLocker {
	return &OutputLocker{held: make(map[string]bool)}
}

func (m *OutputLocker) TryLock(path string) (func() error, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, false, m.Err
	}
	if m.Denied || m.held[path] {
		return nil, false, nil
	}
	m.held[path] = true
	return func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, path)
		m.UnlockCalls++
		return nil
	}, true, nil
}

var _ ports.OutputLocker = (*OutputLocker)(nil)
