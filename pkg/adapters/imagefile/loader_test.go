package imagefile

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/user/timelapse/pkg/mocks"
)

func encoded(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestLoader_DecodeConfig(t *testing.T) {
	fs := mocks.NewFileSystem()
	// Extensions deliberately disagree with content.
	fs.WriteFile("a.dat", encoded(t, "png", 40, 30))
	fs.WriteFile("b.png", encoded(t, "jpeg", 64, 48))
	fs.WriteFile("c", encoded(t, "bmp", 10, 20))

	loader := New(fs)
	tests := []struct {
		path   string
		w, h   int
		format string
	}{
		{"a.dat", 40, 30, "png"},
		{"b.png", 64, 48, "jpeg"},
		{"c", 10, 20, "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			info, err := loader.DecodeConfig(tt.path)
			if err != nil {
				t.Fatalf("DecodeConfig failed: %v", err)
			}
			if info.Width != tt.w || info.Height != tt.h || info.Format != tt.format {
				t.Errorf("expected %dx%d %s, got %dx%d %s", tt.w, tt.h, tt.format, info.Width, info.Height, info.Format)
			}
		})
	}
}

func TestLoader_Decode(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("frame.png", encoded(t, "png", 8, 6))

	img, err := New(fs).Decode("frame.png")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("expected 8x6, got %v", img.Bounds())
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 200 {
		t.Errorf("expected red 200, got %d", r>>8)
	}
}

func TestLoader_NotAnImage(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("notes.txt", []byte("just some text"))

	loader := New(fs)
	if _, err := loader.DecodeConfig("notes.txt"); err == nil {
		t.Error("expected error for non-image content")
	}
	if _, err := loader.Decode("notes.txt"); err == nil {
		t.Error("expected error for non-image content")
	}
	if _, err := loader.Decode("missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
}
