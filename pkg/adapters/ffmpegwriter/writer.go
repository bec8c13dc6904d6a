// Package ffmpegwriter writes video files by piping raw frames into an
// external ffmpeg process.
package ffmpegwriter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// startupGrace is how long Open watches a fresh ffmpeg process for an
// immediate exit, and how long a failed pipe write waits for its exit status.
var startupGrace = 200 * time.Millisecond

// Writer implements ports.VideoWriter on top of ffmpeg's stdin.
type Writer struct {
	width  int
	height int
	path   string

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	frame  *image.RGBA
	frames int
	closed bool

	// stderr and waitErr are only read after done is closed.
	stderr  bytes.Buffer
	waitErr error
	done    chan struct{}
}

// CodecArgs returns the ffmpeg output arguments for a FourCC.
func CodecArgs(codec string) ([]string, error) {
	switch pipeline.FourCC(codec) {
	case pipeline.CodecDIVX:
		return []string{"-c:v", "mpeg4", "-vtag", "DIVX", "-q:v", "3", "-pix_fmt", "yuv420p"}, nil
	case pipeline.CodecMP4V:
		return []string{"-c:v", "mpeg4", "-q:v", "3", "-pix_fmt", "yuv420p"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, codec)
	}
}

// Args builds the full ffmpeg command line for spec.
func Args(spec ports.WriterSpec) ([]string, error) {
	codecArgs, err := CodecArgs(spec.Codec)
	if err != nil {
		return nil, err
	}
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", strconv.FormatFloat(spec.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
	}
	args = append(args, codecArgs...)
	return append(args, spec.Path), nil
}

// Open starts ffmpeg writing to spec.Path.
//
// The output file is created up front so that path and permission
// problems surface here, and a process that exits before Open returns
// is reported as pipeline.ErrWriterNotStarted.
func Open(spec ports.WriterSpec) (*Writer, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", spec.Width, spec.Height)
	}
	if spec.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate %v", spec.FPS)
	}

	args, err := Args(spec)
	if err != nil {
		return nil, err
	}

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return nil, err
	}

	// ffmpeg only opens its output once the first frame arrives.
	f, err := os.OpenFile(spec.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	f.Close()

	w := &Writer{
		width:  spec.Width,
		height: spec.Height,
		path:   spec.Path,
		frame:  image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height)),
		done:   make(chan struct{}),
	}
	w.cmd = exec.Command(ffmpegPath, args...)
	w.cmd.Stderr = &w.stderr

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		os.Remove(spec.Path)
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	w.stdin = stdin

	if err := w.cmd.Start(); err != nil {
		os.Remove(spec.Path)
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	go func() {
		w.waitErr = w.cmd.Wait()
		close(w.done)
	}()

	select {
	case <-w.done:
		os.Remove(spec.Path)
		return nil, fmt.Errorf("%w: %w", pipeline.ErrWriterNotStarted, w.exitErr())
	case <-time.After(startupGrace):
	}
	return w, nil
}

// exitErr describes how ffmpeg ended. Callers must have received from done.
func (w *Writer) exitErr() error {
	err := w.waitErr
	if err == nil {
		err = errors.New("ffmpeg exited")
	}
	if msg := strings.TrimSpace(w.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

// exitedError reports an ffmpeg process that is gone while frames are
// still being written.
func (w *Writer) exitedError() error {
	if w.frames == 0 {
		return fmt.Errorf("%w: %w", pipeline.ErrWriterNotStarted, w.exitErr())
	}
	return fmt.Errorf("ffmpeg exited after %d frames: %w", w.frames, w.exitErr())
}

// WriteFrame pipes one frame to ffmpeg as raw RGBA.
func (w *Writer) WriteFrame(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	bounds := img.Bounds()
	if bounds.Dx() != w.width || bounds.Dy() != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, bounds.Dx(), bounds.Dy(), w.width, w.height)
	}

	select {
	case <-w.done:
		return w.exitedError()
	default:
	}

	draw.Draw(w.frame, w.frame.Bounds(), img, bounds.Min, draw.Src)
	if _, err := w.stdin.Write(w.frame.Pix); err != nil {
		select {
		case <-w.done:
			return w.exitedError()
		case <-time.After(startupGrace):
		}
		if w.frames == 0 {
			return fmt.Errorf("%w: %w", pipeline.ErrWriterNotStarted, err)
		}
		return fmt.Errorf("failed to write frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Close flushes ffmpeg and waits for it to finish the container.
// A run that never delivered a frame leaves no output file behind.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.stdin.Close()
	<-w.done
	if w.frames == 0 {
		os.Remove(w.path)
	}
	if w.waitErr != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w", w.exitErr())
	}
	return nil
}

// Ensure Writer implements ports.VideoWriter
var _ ports.VideoWriter = (*Writer)(nil)
