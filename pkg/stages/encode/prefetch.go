package encode

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/user/timelapse/pkg/pipeline"
)

// indexedFrame holds a decoded frame with its input index.
type indexedFrame struct {
	index int
	image image.Image
	err   error
}

// prefetcher decodes frames on one background goroutine into a bounded
// queue. Appends still happen on the caller's goroutine in input order.
type prefetcher struct {
	frames chan indexedFrame
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPrefetcher(parent context.Context, s *Stage, input pipeline.EncodeInput) *prefetcher {
	ctx, cancel := context.WithCancel(parent)
	p := &prefetcher{
		frames: make(chan indexedFrame, input.Prefetch),
		cancel: cancel,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(p.frames)

		for i, path := range input.Inputs {
			if ctx.Err() != nil {
				return
			}
			img, err := s.loadFrame(i, path, input.Size)
			select {
			case p.frames <- indexedFrame{index: i, image: img, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	return p
}

func (p *prefetcher) next(ctx context.Context, index int) (image.Image, error) {
	select {
	case f, ok := <-p.frames:
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, pipeline.Cancelled(err)
			}
			return nil, fmt.Errorf("prefetch ended before frame %d", index)
		}
		if f.index != index {
			return nil, fmt.Errorf("prefetch out of sequence: expected frame %d, got %d", index, f.index)
		}
		return f.image, f.err
	case <-ctx.Done():
		return nil, pipeline.Cancelled(ctx.Err())
	}
}

// stop cancels the producer and waits for it to exit.
func (p *prefetcher) stop() {
	p.cancel()
	p.wg.Wait()
}
