package timelapse

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/timelapse/pkg/adapters/filesink"
	"github.com/user/timelapse/pkg/adapters/ggrenderer"
	"github.com/user/timelapse/pkg/adapters/imagefile"
	"github.com/user/timelapse/pkg/adapters/logger"
	"github.com/user/timelapse/pkg/adapters/nullsink"
	"github.com/user/timelapse/pkg/adapters/osfilesystem"
	"github.com/user/timelapse/pkg/adapters/outputlock"
	"github.com/user/timelapse/pkg/adapters/smartwriter"
	"github.com/user/timelapse/pkg/discovery"
	"github.com/user/timelapse/pkg/orchestrator"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
	"github.com/user/timelapse/pkg/stages/encode"
	"github.com/user/timelapse/pkg/stages/preview"
	"github.com/user/timelapse/pkg/stages/resolve"
)

// Options carries the dependencies a caller may want to replace.
type Options struct {
	// Logger receives progress messages. Nil discards them.
	Logger ports.Logger

	// OnProgress is called with the completed percentage. May be nil.
	OnProgress pipeline.ProgressFunc
}

func (o Options) logger() ports.Logger {
	if o.Logger == nil {
		return logger.NewNoop()
	}
	return o.Logger
}

// Plan resolves inputs and settings into a validated RunConfig without
// touching the output.
func Plan(cfg Config, opts Options) (pipeline.RunConfig, error) {
	fs := osfilesystem.New()
	return plan(cfg, fs, imagefile.New(fs), opts.logger())
}

func plan(cfg Config, fs ports.FileSystem, loader ports.ImageLoader, log ports.Logger) (pipeline.RunConfig, error) {
	inputs := cfg.Inputs
	if len(inputs) == 0 {
		if cfg.InputFolder == "" {
			return pipeline.RunConfig{}, pipeline.ErrEmptyInput
		}
		found, err := discovery.New(fs, loader, log).Find(cfg.InputFolder, cfg.Sort)
		if err != nil {
			return pipeline.RunConfig{}, err
		}
		inputs = found
	}
	if len(inputs) == 0 {
		return pipeline.RunConfig{}, pipeline.ErrEmptyInput
	}

	width, height := cfg.Width, cfg.Height
	if cfg.UsePhotoSize {
		info, err := loader.DecodeConfig(inputs[0])
		if err != nil {
			return pipeline.RunConfig{}, &pipeline.DecodeError{Path: inputs[0], Err: err}
		}
		width, height = info.Width, info.Height
		log.Info("Using photo size %dx%d from %s", width, height, inputs[0])
	}

	return pipeline.NewRunConfig(pipeline.RunConfig{
		Inputs:       inputs,
		OutputDir:    cfg.OutputDir,
		OutputName:   cfg.OutputName,
		TargetWidth:  width,
		TargetHeight: height,
		FPS:          cfg.FPS,
		Format:       cfg.Format,
	}, cfg.Rules)
}

// Create assembles the configured photos into a video file.
// This is a convenience function that wires the default adapters.
// For custom dependencies, build an orchestrator.Orchestrator directly.
func Create(ctx context.Context, cfg Config, opts Options) (orchestrator.RunResult, error) {
	log := opts.logger()
	fs := osfilesystem.New()
	loader := imagefile.New(fs)
	renderer := ggrenderer.NewWithInterpolation(cfg.Interpolation)

	runCfg, err := plan(cfg, fs, loader, log)
	if err != nil {
		return orchestrator.RunResult{}, err
	}

	var sink ports.DebugSink = nullsink.New()
	if cfg.DebugDir != "" {
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	}

	var locker ports.OutputLocker
	if !cfg.NoLock {
		locker = outputlock.New()
	}

	factory := smartwriter.New(smartwriter.Options{
		FFmpegPath:    cfg.FFmpegPath,
		AllowFallback: cfg.AllowFallback,
		JPEGQuality:   cfg.JPEGQuality,
		Logger:        log,
	})

	orch := orchestrator.New(
		resolve.NewStage(loader, log),
		encode.NewStage(factory, loader, renderer, sink, log, encode.DefaultOptions()),
		fs,
		locker,
		sink,
		log,
		orchestrator.Options{
			Rules:       cfg.Rules,
			Prefetch:    cfg.Prefetch,
			KeepPartial: cfg.KeepPartial,
		},
	)
	return orch.Run(ctx, runCfg, opts.OnProgress)
}

// Preview renders a contact sheet of the configured photos.
func Preview(ctx context.Context, cfg Config, previewOpts preview.Options, opts Options) (pipeline.PreviewResult, error) {
	log := opts.logger()
	fs := osfilesystem.New()
	loader := imagefile.New(fs)

	inputs := cfg.Inputs
	if len(inputs) == 0 && cfg.InputFolder != "" {
		found, err := discovery.New(fs, loader, log).Find(cfg.InputFolder, cfg.Sort)
		if err != nil {
			return pipeline.PreviewResult{}, err
		}
		inputs = found
	}

	stage := preview.NewStage(loader, ggrenderer.NewWithInterpolation(cfg.Interpolation), log, previewOpts)
	return stage.Execute(ctx, pipeline.PreviewInput{Inputs: inputs})
}

// SavePreview encodes a contact sheet as PNG, or JPEG for .jpg/.jpeg paths.
func SavePreview(img image.Image, path string) error {
	format := ports.FormatPNG
	if isJPEGPath(path) {
		format = ports.FormatJPEG
	}
	data, err := ggrenderer.New().EncodeImage(img, format, 90)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return osfilesystem.New().WriteFile(path, data)
}

func isJPEGPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
