package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/user/timelapse/pkg/adapters/logger"
	"github.com/user/timelapse/pkg/mocks"
	"github.com/user/timelapse/pkg/pipeline"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		name   string
		native pipeline.Dimension
		target pipeline.Dimension
		want   pipeline.Dimension
	}{
		{"smaller than box", pipeline.Dimension{Width: 800, Height: 600}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 800, Height: 600}},
		{"height bound", pipeline.Dimension{Width: 4000, Height: 3000}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 1440, Height: 1080}},
		{"width bound", pipeline.Dimension{Width: 3840, Height: 1080}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 1920, Height: 540}},
		{"exact fit", pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 1920, Height: 1080}},
		{"equal factors", pipeline.Dimension{Width: 3840, Height: 2160}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 1920, Height: 1080}},
		{"portrait", pipeline.Dimension{Width: 3000, Height: 4000}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 810, Height: 1080}},
		{"one axis over", pipeline.Dimension{Width: 2000, Height: 500}, pipeline.Dimension{Width: 1920, Height: 1080}, pipeline.Dimension{Width: 1920, Height: 480}},
		{"rounds to nearest", pipeline.Dimension{Width: 1001, Height: 500}, pipeline.Dimension{Width: 500, Height: 500}, pipeline.Dimension{Width: 500, Height: 250}},
		{"never below one", pipeline.Dimension{Width: 10000, Height: 1}, pipeline.Dimension{Width: 100, Height: 100}, pipeline.Dimension{Width: 100, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dimensions(tt.native, tt.target)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDimensions_NeverUpscales(t *testing.T) {
	target := pipeline.Dimension{Width: 640, Height: 480}
	for w := 1; w <= 2000; w += 37 {
		for h := 1; h <= 2000; h += 41 {
			native := pipeline.Dimension{Width: w, Height: h}
			got := Dimensions(native, target)
			if got.Width > w || got.Height > h {
				t.Fatalf("%s upscaled to %s", native, got)
			}
			if w <= target.Width && h <= target.Height && got != native {
				t.Fatalf("%s fits the box but became %s", native, got)
			}
			if (w > target.Width || h > target.Height) && (got.Width > target.Width || got.Height > target.Height) {
				t.Fatalf("%s resolved to %s, outside %s", native, got, target)
			}
		}
	}
}

func TestStage_Execute(t *testing.T) {
	loader := mocks.NewImageLoader()
	loader.Add("first.jpg", 4000, 3000, 1)

	stage := NewStage(loader, logger.NewNoop())
	result, err := stage.Execute(context.Background(), pipeline.ResolveInput{
		ReferencePath: "first.jpg",
		Target:        pipeline.Dimension{Width: 1920, Height: 1080},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Native != (pipeline.Dimension{Width: 4000, Height: 3000}) {
		t.Errorf("expected native 4000x3000, got %s", result.Native)
	}
	if result.Resolved != (pipeline.Dimension{Width: 1440, Height: 1080}) {
		t.Errorf("expected resolved 1440x1080, got %s", result.Resolved)
	}
	if len(loader.DecodeCalls) != 0 {
		t.Errorf("expected header-only read, got %d full decodes", len(loader.DecodeCalls))
	}
}

func TestStage_Execute_Deterministic(t *testing.T) {
	loader := mocks.NewImageLoader()
	loader.Add("first.png", 2592, 1944, 1)
	stage := NewStage(loader, logger.NewNoop())
	input := pipeline.ResolveInput{
		ReferencePath: "first.png",
		Target:        pipeline.Dimension{Width: 1280, Height: 720},
	}

	first, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := stage.Execute(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("expected %+v, got %+v", first, again)
		}
	}
}

func TestStage_Execute_DecodeError(t *testing.T) {
	loader := mocks.NewImageLoader()
	stage := NewStage(loader, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.ResolveInput{
		ReferencePath: "missing.png",
		Target:        pipeline.Dimension{Width: 1920, Height: 1080},
	})

	var decodeErr *pipeline.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != "missing.png" {
		t.Errorf("expected path missing.png, got %s", decodeErr.Path)
	}
}

func TestStage_Execute_InvalidTarget(t *testing.T) {
	loader := mocks.NewImageLoader()
	loader.Add("first.png", 100, 100, 1)
	stage := NewStage(loader, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.ResolveInput{
		ReferencePath: "first.png",
		Target:        pipeline.Dimension{Width: 0, Height: 1080},
	})
	var verr *pipeline.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStage_Execute_ContextCancelled(t *testing.T) {
	loader := mocks.NewImageLoader()
	loader.Add("first.png", 100, 100, 1)
	stage := NewStage(loader, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, pipeline.ResolveInput{
		ReferencePath: "first.png",
		Target:        pipeline.Dimension{Width: 10, Height: 10},
	})
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}
