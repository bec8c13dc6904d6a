// Package timelapse provides a high-level API for assembling photos into videos.
package timelapse

import (
	"time"

	"github.com/user/timelapse/pkg/adapters/ggrenderer"
	"github.com/user/timelapse/pkg/config"
	"github.com/user/timelapse/pkg/discovery"
	"github.com/user/timelapse/pkg/pipeline"
)

// Config represents the configuration for one time-lapse video.
type Config struct {
	// Inputs lists the photos in frame order. When empty, InputFolder is scanned.
	Inputs      []string
	InputFolder string
	Sort        discovery.SortMethod

	// Output
	OutputDir  string
	OutputName string // without extension, default is a timestamp

	// Video
	Width        int // target box width
	Height       int // target box height
	UsePhotoSize bool
	FPS          float64
	Format       pipeline.VideoFormat

	// Processing
	Interpolation ggrenderer.Interpolation
	Prefetch      int
	Rules         pipeline.ResolutionRules

	// Writers
	FFmpegPath    string
	AllowFallback bool
	JPEGQuality   int

	// Debug
	DebugDir    string
	KeepPartial bool
	NoLock      bool
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
	now    func() time.Time
}

// NewConfigBuilder creates a new ConfigBuilder with default settings.
func NewConfigBuilder() *ConfigBuilder {
	return FromSettings(config.Defaults())
}

// FromSettings creates a ConfigBuilder seeded from persisted settings.
func FromSettings(s config.Settings) *ConfigBuilder {
	sortMethod, err := discovery.ParseSort(s.Sort)
	if err != nil {
		sortMethod = discovery.SortName
	}
	interp, err := ggrenderer.ParseInterpolation(s.Interpolation)
	if err != nil {
		interp = ggrenderer.DefaultInterpolation
	}
	return &ConfigBuilder{
		config: Config{
			InputFolder:   s.InputFolder,
			Sort:          sortMethod,
			OutputDir:     s.OutputFolder,
			OutputName:    s.OutputFile,
			Width:         s.Width,
			Height:        s.Height,
			UsePhotoSize:  s.UseLoadedPhotoSize,
			FPS:           s.FPS,
			Format:        pipeline.VideoFormat(s.Format),
			Interpolation: interp,
			Prefetch:      s.Prefetch,
			Rules:         s.Rules(),
			FFmpegPath:    s.FFmpegPath,
			AllowFallback: s.MJPEGFallback,
			JPEGQuality:   s.JPEGQuality,
		},
		now: time.Now,
	}
}

// Build returns the final Config, filling in derived defaults.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.OutputName == "" {
		cfg.OutputName = config.DefaultOutputName(b.now())
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Interpolation == "" {
		cfg.Interpolation = ggrenderer.DefaultInterpolation
	}
	if cfg.Prefetch < 0 {
		cfg.Prefetch = 0
	}
	cfg.Inputs = append([]string(nil), cfg.Inputs...)

	return cfg
}

// WithInputs sets an explicit, ordered list of photos.
func (b *ConfigBuilder) WithInputs(paths ...string) *ConfigBuilder {
	b.config.Inputs = paths
	return b
}

// WithInputFolder sets the folder scanned when no inputs are given.
func (b *ConfigBuilder) WithInputFolder(dir string) *ConfigBuilder {
	b.config.InputFolder = dir
	return b
}

// WithSort sets the frame order for folder scans.
func (b *ConfigBuilder) WithSort(method discovery.SortMethod) *ConfigBuilder {
	b.config.Sort = method
	return b
}

// WithOutput sets the output folder and file name (without extension).
func (b *ConfigBuilder) WithOutput(dir, name string) *ConfigBuilder {
	b.config.OutputDir = dir
	b.config.OutputName = name
	return b
}

// WithSize sets the target bounding box.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithPhotoSize uses the first photo's size as the target box.
func (b *ConfigBuilder) WithPhotoSize(use bool) *ConfigBuilder {
	b.config.UsePhotoSize = use
	return b
}

// WithFPS sets the output frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithFormat sets the output format name.
func (b *ConfigBuilder) WithFormat(format pipeline.VideoFormat) *ConfigBuilder {
	b.config.Format = format
	return b
}

// WithInterpolation sets the resize kernel.
func (b *ConfigBuilder) WithInterpolation(i ggrenderer.Interpolation) *ConfigBuilder {
	b.config.Interpolation = i
	return b
}

// WithPrefetch sets how many frames are decoded ahead of the writer.
func (b *ConfigBuilder) WithPrefetch(n int) *ConfigBuilder {
	b.config.Prefetch = n
	return b
}

// WithRules replaces the per-format resolution limits. Nil disables them.
func (b *ConfigBuilder) WithRules(rules pipeline.ResolutionRules) *ConfigBuilder {
	b.config.Rules = rules
	return b
}

// WithFFmpegPath sets a custom ffmpeg binary.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithFallback enables the MJPEG writer when ffmpeg is missing.
func (b *ConfigBuilder) WithFallback(allow bool) *ConfigBuilder {
	b.config.AllowFallback = allow
	return b
}

// WithDebugDir saves intermediate results under dir.
func (b *ConfigBuilder) WithDebugDir(dir string) *ConfigBuilder {
	b.config.DebugDir = dir
	return b
}

// WithKeepPartial keeps incomplete output after a failure.
func (b *ConfigBuilder) WithKeepPartial(keep bool) *ConfigBuilder {
	b.config.KeepPartial = keep
	return b
}
