// Package mjpegwriter writes Motion-JPEG AVI files without external tools.
package mjpegwriter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"sync"

	"github.com/icza/mjpeg"

	"github.com/user/timelapse/pkg/ports"
)

// Codec is the FourCC of the streams this package writes.
const Codec = "MJPG"

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// ErrFrameSize is returned when a frame does not match the writer size.
var ErrFrameSize = errors.New("mjpegwriter: frame size mismatch")

// Writer implements ports.VideoWriter using icza/mjpeg.
type Writer struct {
	aw      mjpeg.AviWriter
	width   int
	height  int
	quality int

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

// FrameRate converts a fractional rate to the integer rate an MJPEG AVI
// header stores. The second value reports whether rounding changed it.
func FrameRate(fps float64) (int32, bool) {
	r := math.Round(fps)
	if r < 1 {
		r = 1
	}
	return int32(r), r != fps
}

// Open creates the AVI file at spec.Path. spec.Codec is ignored.
func Open(spec ports.WriterSpec, quality int) (*Writer, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", spec.Width, spec.Height)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	fps, _ := FrameRate(spec.FPS)
	aw, err := mjpeg.New(spec.Path, int32(spec.Width), int32(spec.Height), fps)
	if err != nil {
		return nil, fmt.Errorf("create mjpeg avi: %w", err)
	}

	return &Writer{
		aw:      aw,
		width:   spec.Width,
		height:  spec.Height,
		quality: quality,
	}, nil
}

// WriteFrame JPEG-encodes img and appends it.
func (w *Writer) WriteFrame(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("mjpegwriter: writer closed")
	}
	b := img.Bounds()
	if b.Dx() != w.width || b.Dy() != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), w.width, w.height)
	}

	w.buf.Reset()
	if err := jpeg.Encode(&w.buf, img, &jpeg.Options{Quality: w.quality}); err != nil {
		return fmt.Errorf("encode JPEG: %w", err)
	}
	return w.aw.AddFrame(w.buf.Bytes())
}

// Close finalizes the AVI index and headers.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.aw.Close()
}

// Ensure Writer implements ports.VideoWriter
var _ ports.VideoWriter = (*Writer)(nil)
