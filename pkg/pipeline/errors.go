package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a run has no input images.
	ErrEmptyInput = errors.New("timelapse: no input images")

	// ErrCancelled is returned when the run context is cancelled mid-stream.
	ErrCancelled = errors.New("timelapse: run cancelled")

	// ErrOutputLocked is returned when another run holds the output path.
	ErrOutputLocked = errors.New("timelapse: output is locked by another run")

	// ErrWriterNotStarted is returned by a writer whose encoder quit
	// before accepting the first frame.
	ErrWriterNotStarted = errors.New("timelapse: writer exited before accepting frames")
)

// ValidationError reports a rejected RunConfig field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DecodeError reports that the reference image could not be read while
// resolving dimensions.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode reference image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriterOpenError reports that the video writer could not be created.
type WriterOpenError struct {
	Path  string
	Codec FourCC
	Err   error
}

func (e *WriterOpenError) Error() string {
	return fmt.Sprintf("open video writer %s (codec %s): %v", e.Path, e.Codec, e.Err)
}

func (e *WriterOpenError) Unwrap() error { return e.Err }

// FrameDecodeError reports an unreadable frame. Index is zero-based.
type FrameDecodeError struct {
	Index int
	Path  string
	Err   error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("decode frame %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *FrameDecodeError) Unwrap() error { return e.Err }

// FrameWriteError reports that the writer rejected a frame.
type FrameWriteError struct {
	Index int
	Path  string
	Err   error
}

func (e *FrameWriteError) Error() string {
	return fmt.Sprintf("write frame %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *FrameWriteError) Unwrap() error { return e.Err }

// FinalizeError reports that the container could not be finalised.
type FinalizeError struct {
	Path string
	Err  error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize video %s: %v", e.Path, e.Err)
}

func (e *FinalizeError) Unwrap() error { return e.Err }

// Cancelled wraps the context error as ErrCancelled.
func Cancelled(cause error) error {
	if cause == nil {
		return ErrCancelled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
