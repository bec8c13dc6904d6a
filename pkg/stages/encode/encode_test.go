package encode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/user/timelapse/pkg/adapters/logger"
	"github.com/user/timelapse/pkg/mocks"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

type fixture struct {
	factory  *mocks.VideoWriterFactory
	loader   *mocks.ImageLoader
	renderer *mocks.Renderer
	sink     *mocks.DebugSink
	stage    *Stage
}

func newFixture(n int) (*fixture, []string) {
	f := &fixture{
		factory:  mocks.NewVideoWriterFactory(),
		loader:   mocks.NewImageLoader(),
		renderer: &mocks.Renderer{},
		sink:     mocks.NewDebugSink(true),
	}
	f.stage = NewStage(f.factory, f.loader, f.renderer, f.sink, logger.NewNoop(), Options{DebugEvery: 2})

	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("img_%03d.png", i)
		f.loader.Add(paths[i], 64, 48, uint8(i+1))
	}
	return f, paths
}

func encodeInput(paths []string, onProgress pipeline.ProgressFunc) pipeline.EncodeInput {
	spec, _ := pipeline.LookupFormat(pipeline.FormatAVI)
	return pipeline.EncodeInput{
		Inputs:     paths,
		OutputPath: "out/clip.avi",
		Format:     spec,
		FPS:        24,
		Size:       pipeline.Dimension{Width: 32, Height: 24},
		OnProgress: onProgress,
	}
}

func TestStage_Execute(t *testing.T) {
	f, paths := newFixture(4)

	var progress []float64
	result, err := f.stage.Execute(context.Background(), encodeInput(paths, func(p float64) {
		progress = append(progress, p)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FramesWritten != 4 {
		t.Errorf("expected 4 frames written, got %d", result.FramesWritten)
	}
	if result.Backend != "mock" {
		t.Errorf("expected backend mock, got %s", result.Backend)
	}

	if len(f.factory.OpenCalls) != 1 {
		t.Fatalf("expected 1 Open call, got %d", len(f.factory.OpenCalls))
	}
	open := f.factory.OpenCalls[0]
	want := ports.WriterSpec{Path: "out/clip.avi", Codec: "DIVX", FPS: 24, Width: 32, Height: 24}
	if open != want {
		t.Errorf("expected writer spec %+v, got %+v", want, open)
	}

	writer := f.factory.Writer
	if writer.CloseCalls != 1 {
		t.Errorf("expected Close to be called once, got %d", writer.CloseCalls)
	}
	for i, frame := range writer.Frames {
		b := frame.Bounds()
		if b.Dx() != 32 || b.Dy() != 24 {
			t.Errorf("frame %d: expected 32x24, got %dx%d", i, b.Dx(), b.Dy())
		}
	}

	wantProgress := []float64{25, 50, 75, 100}
	if len(progress) != len(wantProgress) {
		t.Fatalf("expected %d progress reports, got %d", len(wantProgress), len(progress))
	}
	for i := range wantProgress {
		if progress[i] != wantProgress[i] {
			t.Errorf("progress %d: expected %v, got %v", i, wantProgress[i], progress[i])
		}
	}

	if len(f.sink.Frames) != 2 {
		t.Errorf("expected 2 debug frames (every 2nd), got %d", len(f.sink.Frames))
	}
}

func TestStage_Execute_PreservesOrder(t *testing.T) {
	f, paths := newFixture(9)

	if _, err := f.stage.Execute(context.Background(), encodeInput(paths, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags := f.factory.Writer.FrameTags()
	for i, tag := range tags {
		if tag != uint8(i+1) {
			t.Errorf("frame %d: expected tag %d, got %d", i, i+1, tag)
		}
	}
}

func TestStage_Execute_Prefetch(t *testing.T) {
	f, paths := newFixture(20)

	input := encodeInput(paths, nil)
	input.Prefetch = 3

	var last float64
	input.OnProgress = func(p float64) {
		if p <= last {
			t.Errorf("progress not increasing: %v after %v", p, last)
		}
		last = p
	}

	result, err := f.stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FramesWritten != 20 {
		t.Errorf("expected 20 frames, got %d", result.FramesWritten)
	}
	if last != 100 {
		t.Errorf("expected final progress 100, got %v", last)
	}
	tags := f.factory.Writer.FrameTags()
	for i, tag := range tags {
		if tag != uint8(i+1) {
			t.Errorf("frame %d: expected tag %d, got %d", i, i+1, tag)
		}
	}
}

func TestStage_Execute_FrameDecodeError(t *testing.T) {
	for _, prefetch := range []int{0, 2} {
		t.Run(fmt.Sprintf("prefetch=%d", prefetch), func(t *testing.T) {
			f, paths := newFixture(5)
			paths[2] = "corrupt.png"

			var progress []float64
			input := encodeInput(paths, func(p float64) { progress = append(progress, p) })
			input.Prefetch = prefetch

			_, err := f.stage.Execute(context.Background(), input)

			var decodeErr *pipeline.FrameDecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected FrameDecodeError, got %v", err)
			}
			if decodeErr.Index != 2 || decodeErr.Path != "corrupt.png" {
				t.Errorf("expected index 2 corrupt.png, got %d %s", decodeErr.Index, decodeErr.Path)
			}
			if len(f.factory.Writer.Frames) != 2 {
				t.Errorf("expected 2 frames before the failure, got %d", len(f.factory.Writer.Frames))
			}
			if f.factory.Writer.CloseCalls != 1 {
				t.Errorf("expected Close once, got %d", f.factory.Writer.CloseCalls)
			}
			if len(progress) != 2 {
				t.Errorf("expected 2 progress reports, got %d", len(progress))
			}
		})
	}
}

func TestStage_Execute_WriterOpenError(t *testing.T) {
	f, paths := newFixture(3)
	f.factory.OpenFunc = func(spec ports.WriterSpec) (ports.VideoWriter, ports.WriterInfo, error) {
		return nil, ports.WriterInfo{}, errors.New("codec unavailable")
	}

	_, err := f.stage.Execute(context.Background(), encodeInput(paths, nil))

	var openErr *pipeline.WriterOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected WriterOpenError, got %v", err)
	}
	if openErr.Codec != pipeline.CodecDIVX {
		t.Errorf("expected codec DIVX, got %s", openErr.Codec)
	}
	if len(f.loader.DecodeCalls) != 0 {
		t.Errorf("expected no frames decoded, got %d", len(f.loader.DecodeCalls))
	}
}

func TestStage_Execute_FrameWriteError(t *testing.T) {
	f, paths := newFixture(3)
	calls := 0
	f.factory.Writer.WriteFrameFunc = func(img image.Image) error {
		calls++
		if calls == 2 {
			return errors.New("disk full")
		}
		return nil
	}

	_, err := f.stage.Execute(context.Background(), encodeInput(paths, nil))

	var writeErr *pipeline.FrameWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected FrameWriteError, got %v", err)
	}
	if writeErr.Index != 1 {
		t.Errorf("expected index 1, got %d", writeErr.Index)
	}
	if f.factory.Writer.CloseCalls != 1 {
		t.Errorf("expected Close once, got %d", f.factory.Writer.CloseCalls)
	}
}

func TestStage_Execute_WriterQuitBeforeFirstFrame(t *testing.T) {
	f, paths := newFixture(3)
	f.factory.Writer.WriteFrameFunc = func(img image.Image) error {
		return fmt.Errorf("%w: Could not open output file", pipeline.ErrWriterNotStarted)
	}

	_, err := f.stage.Execute(context.Background(), encodeInput(paths, nil))

	var openErr *pipeline.WriterOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected WriterOpenError, got %v", err)
	}
	if !errors.Is(err, pipeline.ErrWriterNotStarted) {
		t.Errorf("expected ErrWriterNotStarted in chain, got %v", err)
	}
	var writeErr *pipeline.FrameWriteError
	if errors.As(err, &writeErr) {
		t.Errorf("did not expect FrameWriteError, got %v", err)
	}
	if f.factory.Writer.CloseCalls != 1 {
		t.Errorf("expected Close once, got %d", f.factory.Writer.CloseCalls)
	}
}

func TestStage_Execute_FinalizeError(t *testing.T) {
	f, paths := newFixture(2)
	f.factory.Writer.CloseFunc = func() error { return errors.New("trailer write failed") }

	_, err := f.stage.Execute(context.Background(), encodeInput(paths, nil))

	var finErr *pipeline.FinalizeError
	if !errors.As(err, &finErr) {
		t.Fatalf("expected FinalizeError, got %v", err)
	}
	if f.factory.Writer.CloseCalls != 1 {
		t.Errorf("expected Close once, got %d", f.factory.Writer.CloseCalls)
	}
}

func TestStage_Execute_ContextCancelled(t *testing.T) {
	f, paths := newFixture(6)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := encodeInput(paths, func(p float64) {
		if p >= 50 {
			cancel()
		}
	})

	_, err := f.stage.Execute(ctx, input)
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if len(f.factory.Writer.Frames) != 3 {
		t.Errorf("expected 3 frames before cancellation, got %d", len(f.factory.Writer.Frames))
	}
	if f.factory.Writer.CloseCalls != 1 {
		t.Errorf("expected Close once, got %d", f.factory.Writer.CloseCalls)
	}
}

func TestStage_Execute_EmptyInput(t *testing.T) {
	f, _ := newFixture(0)

	_, err := f.stage.Execute(context.Background(), encodeInput(nil, nil))
	if !errors.Is(err, pipeline.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if len(f.factory.OpenCalls) != 0 {
		t.Error("expected writer not to be opened")
	}
}

func TestStage_Execute_SingleFrame(t *testing.T) {
	f, paths := newFixture(1)

	var progress []float64
	_, err := f.stage.Execute(context.Background(), encodeInput(paths, func(p float64) {
		progress = append(progress, p)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(progress) != 1 || progress[0] != 100 {
		t.Errorf("expected a single progress report of 100, got %v", progress)
	}
}
