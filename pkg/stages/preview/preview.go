// Package preview implements the contact sheet stage.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"runtime"
	"strconv"
	"sync"

	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// Options configures the contact sheet layout.
type Options struct {
	// Cell is the edge length of each square thumbnail.
	Cell int
	// Columns is the maximum number of thumbnails per row.
	Columns int
	// Padding separates thumbnails and surrounds the sheet.
	Padding int
	// Labels draws the 1-based frame number under each thumbnail.
	Labels bool
	// Workers decode thumbnails concurrently. Zero uses runtime.NumCPU.
	Workers int
}

// DefaultOptions returns 128px cells, 8 per row, with labels.
func DefaultOptions() Options {
	return Options{
		Cell:    128,
		Columns: 8,
		Padding: 5,
		Labels:  true,
	}
}

const labelHeight = 16

var (
	background = color.White
	labelColor = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	frameColor = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
)

// Stage renders thumbnails of the input images onto one canvas.
type Stage struct {
	loader   ports.ImageLoader
	renderer ports.Renderer
	logger   ports.Logger
	opts     Options
}

// NewStage creates a new preview stage.
func NewStage(loader ports.ImageLoader, renderer ports.Renderer, logger ports.Logger, opts Options) *Stage {
	def := DefaultOptions()
	if opts.Cell <= 0 {
		opts.Cell = def.Cell
	}
	if opts.Columns <= 0 {
		opts.Columns = def.Columns
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Stage{
		loader:   loader,
		renderer: renderer,
		logger:   logger.WithComponent("preview"),
		opts:     opts,
	}
}

type thumb struct {
	index int
	img   image.Image
	err   error
}

// Execute renders the contact sheet. Unreadable images are skipped.
func (s *Stage) Execute(ctx context.Context, input pipeline.PreviewInput) (pipeline.PreviewResult, error) {
	if len(input.Inputs) == 0 {
		return pipeline.PreviewResult{}, pipeline.ErrEmptyInput
	}

	s.logger.Debug("Rendering %d thumbnails with %d workers", len(input.Inputs), s.opts.Workers)

	thumbs, err := s.thumbnails(ctx, input.Inputs)
	if err != nil {
		return pipeline.PreviewResult{}, err
	}

	var result pipeline.PreviewResult
	var ok []thumb
	for _, t := range thumbs {
		if t.err != nil {
			s.logger.Warn("Skipping %s: not a readable image", input.Inputs[t.index])
			result.Skipped = append(result.Skipped, input.Inputs[t.index])
			continue
		}
		ok = append(ok, t)
	}
	if len(ok) == 0 {
		return result, fmt.Errorf("no readable images: %w", thumbs[0].err)
	}

	cols := min(s.opts.Columns, len(ok))
	rows := (len(ok) + cols - 1) / cols
	rowHeight := s.opts.Cell + s.opts.Padding
	if s.opts.Labels {
		rowHeight += labelHeight
	}
	width := cols*(s.opts.Cell+s.opts.Padding) + s.opts.Padding
	height := rows*rowHeight + s.opts.Padding

	canvas := s.renderer.CreateCanvas(width, height, background)
	for i, t := range ok {
		x := s.opts.Padding + (i%cols)*(s.opts.Cell+s.opts.Padding)
		y := s.opts.Padding + (i/cols)*rowHeight
		canvas.DrawImage(t.img, x, y)
		canvas.DrawRectStroke(x, y, s.opts.Cell, s.opts.Cell, frameColor, 1)
		if s.opts.Labels {
			canvas.DrawText(strconv.Itoa(t.index+1), x+s.opts.Cell/2, y+s.opts.Cell+labelHeight/2, ports.TextStyle{
				Color: labelColor,
				Align: ports.AlignCenter,
			})
		}
	}

	result.Image = canvas.ToImage()
	result.Cells = len(ok)
	s.logger.Debug("Contact sheet rendered: %dx%d", width, height)
	return result, nil
}

// thumbnails decodes and fits every input using a worker pool.
// The result slice is indexed like paths.
func (s *Stage) thumbnails(ctx context.Context, paths []string) ([]thumb, error) {
	jobs := make(chan int, len(paths))
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	out := make([]thumb, len(paths))
	var wg sync.WaitGroup
	for w := 0; w < min(s.opts.Workers, len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				img, err := s.thumbnail(paths[idx])
				out[idx] = thumb{index: idx, img: img, err: err}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, pipeline.Cancelled(err)
	}
	return out, nil
}

func (s *Stage) thumbnail(path string) (image.Image, error) {
	img, err := s.loader.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s.renderer.ResizeImage(CenterCrop(img, 1), s.opts.Cell, s.opts.Cell), nil
}

// CenterCrop returns the largest centred region of img with the given
// width/height ratio. The result has bounds starting at (0,0).
func CenterCrop(img image.Image, aspect float64) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cw, ch := w, h
	if float64(w)/float64(h) > aspect {
		cw = max(1, int(math.Round(float64(h)*aspect)))
	} else {
		ch = max(1, int(math.Round(float64(w)/aspect)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	src := image.Pt(b.Min.X+(w-cw)/2, b.Min.Y+(h-ch)/2)
	draw.Draw(dst, dst.Bounds(), img, src, draw.Src)
	return dst
}
