// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/timelapse/pkg/ports"
)

// Interpolation selects the resampling kernel used for resizing.
type Interpolation string

const (
	InterpolationNearest        Interpolation = "nearest"
	InterpolationApproxBiLinear Interpolation = "approx-bilinear"
	InterpolationBiLinear       Interpolation = "bilinear"
	InterpolationCatmullRom     Interpolation = "catmullrom"
)

// DefaultInterpolation is used when none is configured.
const DefaultInterpolation = InterpolationBiLinear

// Interpolations lists the accepted interpolation names.
func Interpolations() []Interpolation {
	return []Interpolation{
		InterpolationNearest,
		InterpolationApproxBiLinear,
		InterpolationBiLinear,
		InterpolationCatmullRom,
	}
}

// ParseInterpolation parses an interpolation name. Empty yields the default.
func ParseInterpolation(s string) (Interpolation, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultInterpolation, nil
	}
	name := Interpolation(strings.ToLower(strings.TrimSpace(s)))
	for _, i := range Interpolations() {
		if i == name {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown interpolation %q", s)
}

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case InterpolationNearest:
		return draw.NearestNeighbor
	case InterpolationApproxBiLinear:
		return draw.ApproxBiLinear
	case InterpolationCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	scaler draw.Scaler
}

// New creates a new Renderer with the default interpolation.
func New() *Renderer {
	return NewWithInterpolation(DefaultInterpolation)
}

// NewWithInterpolation creates a Renderer that resizes with the given kernel.
func NewWithInterpolation(i Interpolation) *Renderer {
	return &Renderer{scaler: i.scaler()}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage stretches img to exactly width x height.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	r.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc *gg.Context
}

// DrawImage draws an image at the specified position.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

// DrawRect draws a filled rectangle.
func (c *Canvas) DrawRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawRectStroke draws a rectangle outline.
func (c *Canvas) DrawRectStroke(x, y, w, h int, col color.Color, strokeWidth float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(strokeWidth)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Stroke()
}

// DrawText draws text at the specified position.
// Without a loadable FontPath, gg's built-in face is used.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	c.dc.SetColor(style.Color)

	if style.FontPath != "" {
		_ = c.dc.LoadFontFace(style.FontPath, style.FontSize)
	}

	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}

	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, 0.5)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
