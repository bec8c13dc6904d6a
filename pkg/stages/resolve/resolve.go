// Package resolve implements the dimension resolution stage.
package resolve

import (
	"context"
	"fmt"
	"math"

	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// Stage computes the common output frame size from the first image.
type Stage struct {
	loader ports.ImageLoader
	logger ports.Logger
}

// NewStage creates a new resolve stage.
func NewStage(loader ports.ImageLoader, logger ports.Logger) *Stage {
	return &Stage{
		loader: loader,
		logger: logger.WithComponent("resolve"),
	}
}

// Execute reads the reference image header and fits it into the target box.
func (s *Stage) Execute(ctx context.Context, input pipeline.ResolveInput) (pipeline.ResolveResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.ResolveResult{}, pipeline.Cancelled(err)
	}
	if !input.Target.Valid() {
		return pipeline.ResolveResult{}, &pipeline.ValidationError{
			Field:  "target",
			Reason: fmt.Sprintf("must be positive, got %s", input.Target),
		}
	}

	info, err := s.loader.DecodeConfig(input.ReferencePath)
	if err != nil {
		return pipeline.ResolveResult{}, &pipeline.DecodeError{Path: input.ReferencePath, Err: err}
	}
	if info.Width <= 0 || info.Height <= 0 {
		return pipeline.ResolveResult{}, &pipeline.DecodeError{
			Path: input.ReferencePath,
			Err:  fmt.Errorf("image reports size %dx%d", info.Width, info.Height),
		}
	}

	native := pipeline.Dimension{Width: info.Width, Height: info.Height}
	resolved, scale := fit(native, input.Target)

	s.logger.Debug("Reference image %s is %s (%s)", input.ReferencePath, native, info.Format)
	s.logger.Debug("Resolved frame size %s for target %s", resolved, input.Target)

	return pipeline.ResolveResult{
		Native:   native,
		Resolved: resolved,
		Scale:    scale,
		Target:   input.Target,
	}, nil
}

// Dimensions fits a native size into a target box without upscaling.
// The aspect ratio of the native size is preserved up to rounding.
func Dimensions(native, target pipeline.Dimension) pipeline.Dimension {
	d, _ := fit(native, target)
	return d
}

func fit(native, target pipeline.Dimension) (pipeline.Dimension, float64) {
	xFactor := float64(native.Width) / float64(target.Width)
	yFactor := float64(native.Height) / float64(target.Height)

	var factor float64
	switch {
	case xFactor >= yFactor && xFactor > 1:
		factor = xFactor
	case yFactor >= xFactor && yFactor > 1:
		factor = yFactor
	default:
		return native, 1
	}

	return pipeline.Dimension{
		Width:  scaleDown(native.Width, factor),
		Height: scaleDown(native.Height, factor),
	}, 1 / factor
}

// scaleDown divides v by factor, rounding half away from zero, never below 1.
func scaleDown(v int, factor float64) int {
	n := int(math.Round(float64(v) / factor))
	if n < 1 {
		return 1
	}
	return n
}
