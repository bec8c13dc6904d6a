// Package orchestrator coordinates the stages of a timelapse run.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// Options configures a run beyond the RunConfig itself.
type Options struct {
	// Rules limits the target box per format. Nil disables the check.
	Rules pipeline.ResolutionRules

	// Prefetch is the number of frames decoded ahead of the writer.
	Prefetch int

	// KeepPartial leaves an incomplete output file on disk after a failure.
	KeepPartial bool
}

// DefaultOptions returns Options with the default resolution rules.
func DefaultOptions() Options {
	return Options{
		Rules: pipeline.DefaultResolutionRules(),
	}
}

// Orchestrator runs resolution and encoding for one RunConfig at a time.
type Orchestrator struct {
	resolveStage pipeline.Stage[pipeline.ResolveInput, pipeline.ResolveResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	fs           ports.FileSystem
	locker       ports.OutputLocker
	sink         ports.DebugSink
	logger       ports.Logger
	opts         Options
}

// New creates a new Orchestrator. A nil locker disables output locking.
func New(
	resolveStage pipeline.Stage[pipeline.ResolveInput, pipeline.ResolveResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	locker ports.OutputLocker,
	sink ports.DebugSink,
	logger ports.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		resolveStage: resolveStage,
		encodeStage:  encodeStage,
		fs:           fs,
		locker:       locker,
		sink:         sink,
		logger:       logger,
		opts:         opts,
	}
}

// Run assembles the configured images into one video file.
// onProgress may be nil.
func (o *Orchestrator) Run(ctx context.Context, cfg pipeline.RunConfig, onProgress pipeline.ProgressFunc) (RunResult, error) {
	started := time.Now()
	result := RunResult{RunID: uuid.NewString()}

	o.logger.Info("Starting run %s", result.RunID)

	// 1. Validate
	if err := cfg.Validate(o.opts.Rules); err != nil {
		o.logger.Error("Invalid configuration: %s", err)
		return result, err
	}

	// 2. Format lookup
	spec, known := pipeline.LookupFormat(cfg.Format)
	if !known {
		o.logger.Info("Unknown format %q, using %s", cfg.Format, spec.Format)
	}
	result.Format = spec
	result.FormatKnown = known
	result.OutputPath = cfg.OutputPath()
	result.FPS = cfg.FPS

	// 3. Resolve dimensions from the first image
	resolved, err := o.resolveStage.Execute(ctx, pipeline.ResolveInput{
		ReferencePath: cfg.Inputs[0],
		Target:        cfg.Target(),
	})
	if err != nil {
		o.logger.Error("Failed to resolve dimensions: %s", err)
		return result, fmt.Errorf("resolve stage: %w", err)
	}
	result.Native = resolved.Native
	result.Resolved = resolved.Resolved
	result.Target = resolved.Target
	o.logger.Info("Resolved frame size %s from %s (target %s)", resolved.Resolved, resolved.Native, resolved.Target)

	if o.sink.Enabled() {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err == nil {
			err = o.sink.SaveResolvedJSON(data)
		}
		if err != nil {
			o.logger.Debug("Failed to save resolved dimensions: %s", err)
		}
	}

	// 4. Prepare the output location
	if err := o.fs.MkdirAll(cfg.OutputDir); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return result, &pipeline.WriterOpenError{Path: result.OutputPath, Codec: spec.Codec, Err: err}
	}
	if o.locker != nil {
		unlock, ok, err := o.locker.TryLock(result.OutputPath)
		if err != nil {
			return result, &pipeline.WriterOpenError{Path: result.OutputPath, Codec: spec.Codec, Err: err}
		}
		if !ok {
			o.logger.Error("Output %s is in use by another run", result.OutputPath)
			return result, &pipeline.WriterOpenError{Path: result.OutputPath, Codec: spec.Codec, Err: pipeline.ErrOutputLocked}
		}
		defer func() {
			if err := unlock(); err != nil {
				o.logger.Warn("Failed to release output lock: %s", err)
			}
		}()
	}

	// 5. Encode
	o.logger.Info("Encoding %d frames at %.2f fps as %s (codec %s)", len(cfg.Inputs), cfg.FPS, spec.Format, spec.Codec)
	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Inputs:     cfg.Inputs,
		OutputPath: result.OutputPath,
		Format:     spec,
		FPS:        cfg.FPS,
		Size:       resolved.Resolved,
		Prefetch:   o.opts.Prefetch,
		OnProgress: onProgress,
	})
	result.Frames = encoded.FramesWritten
	result.Backend = encoded.Backend
	result.Codec = encoded.Codec
	result.FallbackUsed = encoded.FallbackUsed
	if err != nil {
		if errors.Is(err, pipeline.ErrCancelled) {
			o.logger.Warn("Run cancelled after %d frames", encoded.FramesWritten)
		} else {
			o.logger.Error("Failed to encode video: %s", err)
		}
		o.discardPartial(result.OutputPath, err)
		return result, fmt.Errorf("encode stage: %w", err)
	}

	if info, err := o.fs.Stat(result.OutputPath); err == nil {
		result.FileSize = info.Size
	}
	result.Elapsed = time.Since(started)

	o.logger.Info("Output saved to %s", result.OutputPath)
	return result, nil
}

// discardPartial removes an incomplete output file unless the writer never opened.
func (o *Orchestrator) discardPartial(path string, cause error) {
	if o.opts.KeepPartial {
		return
	}
	var openErr *pipeline.WriterOpenError
	if errors.As(cause, &openErr) {
		return
	}
	exists, err := o.fs.Exists(path)
	if err != nil || !exists {
		return
	}
	if err := o.fs.Remove(path); err != nil {
		o.logger.Warn("Failed to remove partial output %s: %s", path, err)
		return
	}
	o.logger.Debug("Removed partial output %s", path)
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	RunID string

	// Format information
	Format       pipeline.FormatSpec
	FormatKnown  bool
	Backend      string
	Codec        string
	FallbackUsed bool

	// Dimensions
	Target   pipeline.Dimension
	Native   pipeline.Dimension
	Resolved pipeline.Dimension

	// Video information
	Frames     int
	FPS        float64
	OutputPath string
	FileSize   int64

	Elapsed time.Duration
}

// VideoLength returns the playback length of the output.
func (r RunResult) VideoLength() time.Duration {
	if r.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(r.Frames) / r.FPS * float64(time.Second))
}
