package smartwriter

import (
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/timelapse/pkg/adapters/logger"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

type recordingLogger struct {
	logger.NoopLogger
	warnings []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) WithComponent(string) ports.Logger { return l }

func newFactory(opts Options, ffmpeg bool) *Factory {
	f := New(opts)
	f.ffmpegAvailable = func() bool { return ffmpeg }
	return f
}

func spec(t *testing.T, codec string, fps float64) ports.WriterSpec {
	return ports.WriterSpec{
		Path:   filepath.Join(t.TempDir(), "out.avi"),
		Codec:  codec,
		FPS:    fps,
		Width:  8,
		Height: 6,
	}
}

func TestOpen_RawUsesPureGo(t *testing.T) {
	f := newFactory(DefaultOptions(), false)

	w, info, err := f.Open(spec(t, "", 30))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer w.Close()

	if info.Backend != BackendRawAVI || info.FallbackUsed {
		t.Errorf("expected rawavi without fallback, got %+v", info)
	}
	if err := w.WriteFrame(image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Errorf("WriteFrame failed: %v", err)
	}
}

func TestOpen_DIVXFallsBackToMJPEG(t *testing.T) {
	log := &recordingLogger{}
	opts := DefaultOptions()
	opts.Logger = log
	f := newFactory(opts, false)

	w, info, err := f.Open(spec(t, "DIVX", 29.97))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer w.Close()

	if info.Backend != BackendMJPEG || !info.FallbackUsed || info.Codec != "MJPG" {
		t.Errorf("expected MJPEG fallback, got %+v", info)
	}
	if len(log.warnings) != 2 {
		t.Fatalf("expected fallback and frame rate warnings, got %v", log.warnings)
	}
	if !strings.Contains(log.warnings[0], "MJPEG") {
		t.Errorf("unexpected warning %q", log.warnings[0])
	}
}

func TestOpen_DIVXWithoutFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowFallback = false
	f := newFactory(opts, false)

	if _, _, err := f.Open(spec(t, "DIVX", 30)); !errors.Is(err, ErrNoWriterAvailable) {
		t.Errorf("expected ErrNoWriterAvailable, got %v", err)
	}
}

func TestOpen_MP4NeedsFFmpeg(t *testing.T) {
	f := newFactory(DefaultOptions(), false)

	if _, _, err := f.Open(spec(t, "mp4v", 30)); !errors.Is(err, ErrNoWriterAvailable) {
		t.Errorf("expected ErrNoWriterAvailable, got %v", err)
	}
}

func TestOpen_UnknownCodec(t *testing.T) {
	f := newFactory(DefaultOptions(), true)

	if _, _, err := f.Open(spec(t, "H264", 30)); !errors.Is(err, ErrNoWriterAvailable) {
		t.Errorf("expected ErrNoWriterAvailable, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		ffmpeg bool
		want   map[pipeline.VideoFormat]string
	}{
		{"with ffmpeg", true, map[pipeline.VideoFormat]string{
			pipeline.FormatAVI:    BackendFFmpeg,
			pipeline.FormatMP4:    BackendFFmpeg,
			pipeline.FormatAVIRaw: BackendRawAVI,
		}},
		{"without ffmpeg", false, map[pipeline.VideoFormat]string{
			pipeline.FormatAVI:    BackendMJPEG,
			pipeline.FormatMP4:    "",
			pipeline.FormatAVIRaw: BackendRawAVI,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, a := range newFactory(DefaultOptions(), tt.ffmpeg).Probe() {
				if a.Backend != tt.want[a.Spec.Format] {
					t.Errorf("%s: expected backend %q, got %q", a.Spec.Format, tt.want[a.Spec.Format], a.Backend)
				}
				if a.OK != (a.Backend != "") {
					t.Errorf("%s: OK=%v inconsistent with backend %q", a.Spec.Format, a.OK, a.Backend)
				}
			}
		})
	}
}
