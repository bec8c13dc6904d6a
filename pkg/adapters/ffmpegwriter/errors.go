package ffmpegwriter

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegwriter: ffmpeg not found")

	// ErrUnsupportedCodec is returned for a FourCC this writer cannot produce.
	ErrUnsupportedCodec = errors.New("ffmpegwriter: unsupported codec")

	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("ffmpegwriter: writer closed")

	// ErrFrameSize is returned when a frame does not match the writer size.
	ErrFrameSize = errors.New("ffmpegwriter: frame size mismatch")
)
