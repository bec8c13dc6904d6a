// Package imagefile loads still images from disk by content, not extension.
package imagefile

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/timelapse/pkg/ports"
)

// Loader implements ports.ImageLoader on top of a ports.FileSystem.
type Loader struct {
	fs ports.FileSystem
}

// New creates a new Loader.
func New(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// DecodeConfig reads only the image header.
func (l *Loader) DecodeConfig(path string) (ports.ImageInfo, error) {
	r, err := l.fs.Open(path)
	if err != nil {
		return ports.ImageInfo{}, err
	}
	defer r.Close()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(r))
	if err != nil {
		return ports.ImageInfo{}, fmt.Errorf("read image header: %w", err)
	}
	return ports.ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Decode reads the full image.
func (l *Loader) Decode(path string) (image.Image, error) {
	r, err := l.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Ensure Loader implements ports.ImageLoader
var _ ports.ImageLoader = (*Loader)(nil)
