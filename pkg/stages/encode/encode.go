// Package encode implements the frame encoding stage.
package encode

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// Options configures the encode stage.
type Options struct {
	// DebugEvery saves every Nth resized frame to the debug sink.
	// Zero or less saves only the first frame.
	DebugEvery int
}

// DefaultOptions returns the default encode options.
func DefaultOptions() Options {
	return Options{DebugEvery: 25}
}

// Stage streams images into a single video file.
type Stage struct {
	factory  ports.VideoWriterFactory
	loader   ports.ImageLoader
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
	opts     Options
}

// NewStage creates a new encode stage.
func NewStage(
	factory ports.VideoWriterFactory,
	loader ports.ImageLoader,
	renderer ports.Renderer,
	sink ports.DebugSink,
	logger ports.Logger,
	opts Options,
) *Stage {
	return &Stage{
		factory:  factory,
		loader:   loader,
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("encode"),
		opts:     opts,
	}
}

// Execute opens the writer, appends every input in order and closes the
// writer. The writer is closed exactly once whatever the outcome.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{OutputPath: input.OutputPath}

	if len(input.Inputs) == 0 {
		return result, pipeline.ErrEmptyInput
	}
	if !input.Size.Valid() {
		return result, &pipeline.ValidationError{
			Field:  "size",
			Reason: fmt.Sprintf("must be positive, got %s", input.Size),
		}
	}

	spec := ports.WriterSpec{
		Path:   input.OutputPath,
		Codec:  string(input.Format.Codec),
		FPS:    input.FPS,
		Width:  input.Size.Width,
		Height: input.Size.Height,
	}
	writer, info, err := s.factory.Open(spec)
	if err != nil {
		return result, &pipeline.WriterOpenError{Path: input.OutputPath, Codec: input.Format.Codec, Err: err}
	}
	result.Backend = info.Backend
	result.Codec = info.Codec
	result.FallbackUsed = info.FallbackUsed

	s.logger.Debug("Writer opened: %s backend, codec %s, %s at %.2f fps",
		info.Backend, input.Format.Codec, input.Size, input.FPS)

	closed := false
	defer func() {
		if closed {
			return
		}
		if cerr := writer.Close(); cerr != nil {
			s.logger.Warn("Failed to close writer after error: %s", cerr)
		}
	}()

	frames := s.source(ctx, input)
	defer frames.stop()

	total := len(input.Inputs)
	for i, path := range input.Inputs {
		if err := ctx.Err(); err != nil {
			return result, pipeline.Cancelled(err)
		}

		img, err := frames.next(ctx, i)
		if err != nil {
			return result, err
		}

		if err := writer.WriteFrame(img); err != nil {
			if errors.Is(err, pipeline.ErrWriterNotStarted) {
				return result, &pipeline.WriterOpenError{Path: input.OutputPath, Codec: input.Format.Codec, Err: err}
			}
			return result, &pipeline.FrameWriteError{Index: i, Path: path, Err: err}
		}
		result.FramesWritten++

		if s.sink.Enabled() && s.shouldSave(i) {
			if err := s.sink.SaveFrame(i, img); err != nil {
				s.logger.Debug("Failed to save debug frame %d: %s", i, err)
			}
		}

		s.logger.Debug("Appended frame %d/%d: %s", i+1, total, path)
		if input.OnProgress != nil {
			input.OnProgress(pipeline.Percent(i+1, total))
		}
	}

	closed = true
	if err := writer.Close(); err != nil {
		return result, &pipeline.FinalizeError{Path: input.OutputPath, Err: err}
	}

	s.logger.Debug("Encoded %d frames into %s", result.FramesWritten, input.OutputPath)
	return result, nil
}

func (s *Stage) shouldSave(index int) bool {
	if s.opts.DebugEvery <= 0 {
		return index == 0
	}
	return index%s.opts.DebugEvery == 0
}

// loadFrame decodes one input and resizes it to the output size.
func (s *Stage) loadFrame(index int, path string, size pipeline.Dimension) (image.Image, error) {
	img, err := s.loader.Decode(path)
	if err != nil {
		return nil, &pipeline.FrameDecodeError{Index: index, Path: path, Err: err}
	}
	b := img.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		return img, nil
	}
	return s.renderer.ResizeImage(img, size.Width, size.Height), nil
}

// frameSource yields decoded, resized frames strictly in input order.
type frameSource interface {
	next(ctx context.Context, index int) (image.Image, error)
	stop()
}

func (s *Stage) source(ctx context.Context, input pipeline.EncodeInput) frameSource {
	if input.Prefetch > 0 {
		return newPrefetcher(ctx, s, input)
	}
	return &directSource{stage: s, input: input}
}

// directSource decodes on the caller's goroutine.
type directSource struct {
	stage *Stage
	input pipeline.EncodeInput
}

func (d *directSource) next(ctx context.Context, index int) (image.Image, error) {
	return d.stage.loadFrame(index, d.input.Inputs[index], d.input.Size)
}

func (d *directSource) stop() {}
