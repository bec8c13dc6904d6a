package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/timelapse/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()
	img := solid(50, 50, color.RGBA{R: 255, A: 255})

	data, err := r.EncodeImage(img, ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode failed: %v", err)
	}
	if decoded.Bounds().Dx() != 50 || decoded.Bounds().Dy() != 50 {
		t.Errorf("expected 50x50, got %v", decoded.Bounds())
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))

	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if decoded.Bounds().Dx() != 30 || decoded.Bounds().Dy() != 30 {
		t.Errorf("expected 30x30, got %v", decoded.Bounds())
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	if _, err := New().EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	for _, interp := range Interpolations() {
		t.Run(string(interp), func(t *testing.T) {
			r := NewWithInterpolation(interp)
			img := solid(100, 80, color.RGBA{G: 200, A: 255})

			resized := r.ResizeImage(img, 37, 91)

			bounds := resized.Bounds()
			if bounds.Dx() != 37 || bounds.Dy() != 91 {
				t.Errorf("expected 37x91, got %dx%d", bounds.Dx(), bounds.Dy())
			}
			_, g, _, a := resized.At(18, 45).RGBA()
			if g>>8 != 200 || a>>8 != 255 {
				t.Errorf("expected solid green to survive resizing, got g=%d a=%d", g>>8, a>>8)
			}
		})
	}
}

func TestParseInterpolation(t *testing.T) {
	if got, err := ParseInterpolation(""); err != nil || got != DefaultInterpolation {
		t.Errorf("expected default, got %s %v", got, err)
	}
	if got, err := ParseInterpolation(" CatmullRom "); err != nil || got != InterpolationCatmullRom {
		t.Errorf("expected catmullrom, got %s %v", got, err)
	}
	if _, err := ParseInterpolation("lanczos"); err == nil {
		t.Error("expected error for unknown interpolation")
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawRect(10, 10, 30, 30, color.RGBA{R: 255, A: 255})

	_, g, _, _ := canvas.ToImage().At(20, 20).RGBA()
	if g != 0 {
		t.Error("expected red pixel inside rectangle")
	}
}

func TestCanvas_DrawImage(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(20, 20, color.White)

	canvas.DrawImage(solid(5, 5, color.RGBA{B: 255, A: 255}), 10, 10)

	img := canvas.ToImage()
	if _, _, b, _ := img.At(12, 12).RGBA(); b>>8 != 255 {
		t.Error("expected blue inside the drawn image")
	}
	if r, _, _, _ := img.At(2, 2).RGBA(); r>>8 != 255 {
		t.Error("expected white background outside the drawn image")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(60, 20, color.White)

	canvas.DrawText("42", 30, 10, ports.TextStyle{Color: color.Black, Align: ports.AlignCenter})

	img := canvas.ToImage()
	dark := false
	for y := 0; y < 20 && !dark; y++ {
		for x := 0; x < 60; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r>>8 < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Error("expected text pixels on the canvas")
	}
}
