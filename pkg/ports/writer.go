package ports

import (
	"image"
)

// WriterSpec describes the video file a writer produces.
type WriterSpec struct {
	Path   string
	Codec  string // FourCC, empty for uncompressed
	FPS    float64
	Width  int
	Height int
}

// WriterInfo reports which backend serves a writer.
type WriterInfo struct {
	Backend      string
	Codec        string
	FallbackUsed bool
}

// VideoWriter appends frames to a video container.
// Frames must already have the dimensions given in WriterSpec.
type VideoWriter interface {
	// WriteFrame appends one frame.
	WriteFrame(img image.Image) error

	// Close finalizes the container and releases the output file.
	Close() error
}

// VideoWriterFactory opens video writers.
type VideoWriterFactory interface {
	Open(spec WriterSpec) (VideoWriter, WriterInfo, error)
}

// OutputLocker guards an output path against concurrent runs.
type OutputLocker interface {
	// TryLock acquires the lock for path without blocking.
	// It returns false if another holder owns it.
	TryLock(path string) (unlock func() error, ok bool, err error)
}
