package mocks

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/user/timelapse/pkg/ports"
)

// ImageLoader is a mock implementation of ports.ImageLoader.
// Images registered with Add are served by path; other paths fail.
type ImageLoader struct {
	mu     sync.Mutex
	images map[string]mockImage

	DecodeConfigFunc func(path string) (ports.ImageInfo, error)
	DecodeFunc       func(path string) (image.Image, error)

	// Recorded calls for verification
	DecodeConfigCalls []string
	DecodeCalls       []string
}

type mockImage struct {
	width  int
	height int
	tag    uint8
}

// NewImageLoader creates an empty mock ImageLoader.
func NewImageLoader() *ImageLoader {
	return &ImageLoader{images: make(map[string]mockImage)}
}

// Add registers a solid image of the given size under path.
// The red channel carries tag so frames can be told apart after resizing.
func (m *ImageLoader) Add(path string, width, height int, tag uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[path] = mockImage{width: width, height: height, tag: tag}
}

func (m *ImageLoader) DecodeConfig(path string) (ports.ImageInfo, error) {
	m.mu.Lock()
	m.DecodeConfigCalls = append(m.DecodeConfigCalls, path)
	img, ok := m.images[path]
	m.mu.Unlock()

	if m.DecodeConfigFunc != nil {
		return m.DecodeConfigFunc(path)
	}
	if !ok {
		return ports.ImageInfo{}, fmt.Errorf("image not found: %s", path)
	}
	return ports.ImageInfo{Width: img.width, Height: img.height, Format: "mock"}, nil
}

func (m *ImageLoader) Decode(path string) (image.Image, error) {
	m.mu.Lock()
	m.DecodeCalls = append(m.DecodeCalls, path)
	img, ok := m.images[path]
	m.mu.Unlock()

	if m.DecodeFunc != nil {
		return m.DecodeFunc(path)
	}
	if !ok {
		return nil, fmt.Errorf("image not found: %s", path)
	}
	return &Solid{W: img.width, H: img.height, C: color.RGBA{R: img.tag, A: 255}}, nil
}

var _ ports.ImageLoader = (*ImageLoader)(nil)

// Solid is a single-colour image that stores no pixels.
type Solid struct {
	W, H int
	C    color.RGBA
}

func (s *Solid) ColorModel() color.Model { return color.RGBAModel }

func (s *Solid) Bounds() image.Rectangle { return image.Rect(0, 0, s.W, s.H) }

func (s *Solid) At(x, y int) color.Color { return s.C }

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu          sync.Mutex
	ResizeCalls []ResizeCall
}

// ResizeCall records a call to ResizeImage.
type ResizeCall struct {
	Width  int
	Height int
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	return &Canvas{width: width, height: height}
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

// ResizeImage keeps the top-left pixel colour so order checks survive resizing.
func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	m.mu.Lock()
	m.ResizeCalls = append(m.ResizeCalls, ResizeCall{Width: width, Height: height})
	m.mu.Unlock()

	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	c := img.At(b.Min.X, b.Min.Y)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return dst
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas.
type Canvas struct {
	width  int
	height int
	img    *image.RGBA

	DrawImageCalls int
	Texts          []string
}

func (m *Canvas) DrawImage(img image.Image, x, y int) { m.DrawImageCalls++ }

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {}

func (m *Canvas) DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64) {}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.Texts = append(m.Texts, text)
}

func (m *Canvas) ToImage() image.Image {
	if m.img != nil {
		return m.img
	}
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

var _ ports.Canvas = (*Canvas)(nil)
