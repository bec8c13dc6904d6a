// Package smartwriter selects a video writer backend for a FourCC with
// fallback support.
package smartwriter

import (
	"errors"
	"fmt"

	"github.com/user/timelapse/pkg/adapters/ffmpegwriter"
	"github.com/user/timelapse/pkg/adapters/mjpegwriter"
	"github.com/user/timelapse/pkg/adapters/rawavi"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// Backend names reported in ports.WriterInfo.
const (
	// BackendFFmpeg pipes frames into an ffmpeg process.
	BackendFFmpeg = "ffmpeg"
	// BackendMJPEG writes Motion-JPEG AVI in pure Go.
	BackendMJPEG = "mjpeg"
	// BackendRawAVI writes uncompressed AVI in pure Go.
	BackendRawAVI = "rawavi"
)

var (
	// ErrNoWriterAvailable is returned when no backend can produce the codec.
	ErrNoWriterAvailable = errors.New("smartwriter: no writer available")
)

// Options configures the smart writer behavior.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// AllowFallback enables MJPEG output when ffmpeg is missing for AVI.
	AllowFallback bool
	// JPEGQuality is used by the MJPEG fallback.
	JPEGQuality int
	// Logger is used to log fallback warnings.
	Logger ports.Logger
}

// DefaultOptions returns options with fallback enabled.
func DefaultOptions() Options {
	return Options{
		AllowFallback: true,
		JPEGQuality:   mjpegwriter.DefaultQuality,
	}
}

// Factory implements ports.VideoWriterFactory.
type Factory struct {
	opts            Options
	ffmpegAvailable func() bool
}

// New creates a new Factory.
func New(opts Options) *Factory {
	if opts.FFmpegPath != "" {
		ffmpegwriter.SetFFmpegPath(opts.FFmpegPath)
	}
	return &Factory{
		opts:            opts,
		ffmpegAvailable: ffmpegwriter.IsAvailable,
	}
}

// Open opens a writer for spec.
//
// The selection flow:
//   - uncompressed: pure-Go rawavi
//   - DIVX: ffmpeg, then MJPEG if AllowFallback is set
//   - mp4v: ffmpeg only
func (f *Factory) Open(spec ports.WriterSpec) (ports.VideoWriter, ports.WriterInfo, error) {
	switch pipeline.FourCC(spec.Codec) {
	case pipeline.CodecRaw:
		w, err := rawavi.Open(spec)
		if err != nil {
			return nil, ports.WriterInfo{}, err
		}
		return w, ports.WriterInfo{Backend: BackendRawAVI, Codec: spec.Codec}, nil

	case pipeline.CodecDIVX:
		if f.ffmpegAvailable() {
			return f.openFFmpeg(spec)
		}
		if !f.opts.AllowFallback {
			return nil, ports.WriterInfo{}, fmt.Errorf("%w: %s needs ffmpeg", ErrNoWriterAvailable, spec.Codec)
		}
		return f.openMJPEG(spec)

	case pipeline.CodecMP4V:
		if f.ffmpegAvailable() {
			return f.openFFmpeg(spec)
		}
		return nil, ports.WriterInfo{}, fmt.Errorf("%w: %s needs ffmpeg", ErrNoWriterAvailable, spec.Codec)

	default:
		return nil, ports.WriterInfo{}, fmt.Errorf("%w: unsupported codec %q", ErrNoWriterAvailable, spec.Codec)
	}
}

func (f *Factory) openFFmpeg(spec ports.WriterSpec) (ports.VideoWriter, ports.WriterInfo, error) {
	w, err := ffmpegwriter.Open(spec)
	if err != nil {
		return nil, ports.WriterInfo{}, err
	}
	return w, ports.WriterInfo{Backend: BackendFFmpeg, Codec: spec.Codec}, nil
}

func (f *Factory) openMJPEG(spec ports.WriterSpec) (ports.VideoWriter, ports.WriterInfo, error) {
	if f.opts.Logger != nil {
		f.opts.Logger.Warn("ffmpeg not available, writing MJPEG instead of %s", spec.Codec)
		if fps, rounded := mjpegwriter.FrameRate(spec.FPS); rounded {
			f.opts.Logger.Warn("Frame rate %.2f rounded to %d for MJPEG output", spec.FPS, fps)
		}
	}
	w, err := mjpegwriter.Open(spec, f.opts.JPEGQuality)
	if err != nil {
		return nil, ports.WriterInfo{}, err
	}
	return w, ports.WriterInfo{Backend: BackendMJPEG, Codec: mjpegwriter.Codec, FallbackUsed: true}, nil
}

// Availability describes which backend would serve a format.
type Availability struct {
	Spec     pipeline.FormatSpec
	Backend  string
	Fallback bool
	OK       bool
}

// Probe reports the backend Open would choose for every known format.
func (f *Factory) Probe() []Availability {
	ffmpeg := f.ffmpegAvailable()
	var out []Availability
	for _, spec := range pipeline.Formats() {
		a := Availability{Spec: spec}
		switch {
		case spec.Uncompressed():
			a.Backend, a.OK = BackendRawAVI, true
		case ffmpeg:
			a.Backend, a.OK = BackendFFmpeg, true
		case spec.Codec == pipeline.CodecDIVX && f.opts.AllowFallback:
			a.Backend, a.OK, a.Fallback = BackendMJPEG, true, true
		}
		out = append(out, a)
	}
	return out
}

// Ensure Factory implements ports.VideoWriterFactory
var _ ports.VideoWriterFactory = (*Factory)(nil)
