// Package pipeline provides the shared types and stage contract for timelapse.
package pipeline

import (
	"context"
)

// Stage represents a processing step of a run.
// Each stage takes an input and produces an output.
type Stage[In, Out any] interface {
	// Execute runs the stage with the given input and returns the output.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// ProgressFunc receives the completion percentage in [0, 100] after each
// appended frame. It is called synchronously on the encoding goroutine.
type ProgressFunc func(percent float64)

// Percent returns the completion percentage after done of total frames.
// The last frame always yields exactly 100.
func Percent(done, total int) float64 {
	if total <= 0 || done >= total {
		return 100
	}
	return 100 * float64(done) / float64(total)
}
