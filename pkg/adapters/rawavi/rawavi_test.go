package rawavi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/timelapse/pkg/ports"
)

func writeClip(t *testing.T, spec ports.WriterSpec, frames []image.Image) []byte {
	t.Helper()
	w, err := Open(spec)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for i, img := range frames {
		if err := w.WriteFrame(img); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}
	if w.Frames() != len(frames) {
		t.Errorf("expected %d frames, got %d", len(frames), w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := os.ReadFile(spec.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return data
}

func TestFrameBytes(t *testing.T) {
	tests := []struct{ w, h, want int }{
		{4, 2, 24},
		{5, 1, 16},
		{1, 3, 12},
		{1920, 1080, 1920 * 3 * 1080},
	}
	for _, tt := range tests {
		if got := FrameBytes(tt.w, tt.h); got != tt.want {
			t.Errorf("FrameBytes(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestWriter_RoundTripHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.avi")
	spec := ports.WriterSpec{Path: path, FPS: 29.97, Width: 5, Height: 3}

	frames := make([]image.Image, 7)
	for i := range frames {
		frames[i] = image.NewRGBA(image.Rect(0, 0, 5, 3))
	}
	data := writeClip(t, spec, frames)

	if got := int(binary.LittleEndian.Uint32(data[4:8])) + 8; got != len(data) {
		t.Errorf("RIFF size covers %d bytes, file has %d", got, len(data))
	}

	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Width != 5 || h.Height != 3 {
		t.Errorf("expected 5x3, got %dx%d", h.Width, h.Height)
	}
	if h.Frames != 7 {
		t.Errorf("expected 7 frames, got %d", h.Frames)
	}
	if math.Abs(h.FPS-29.97) > 1e-9 {
		t.Errorf("expected 29.97 fps, got %v", h.FPS)
	}
	if h.Codec != Codec {
		t.Errorf("expected uncompressed codec, got %q", h.Codec)
	}

	idx := bytes.LastIndex(data, []byte("idx1"))
	if idx < 0 {
		t.Fatal("expected idx1 chunk")
	}
	if n := binary.LittleEndian.Uint32(data[idx+4:]); n != 7*16 {
		t.Errorf("expected 7 index entries, got %d bytes", n)
	}
}

func TestWriter_PixelLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "px.avi")
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(0, 1, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	data := writeClip(t, ports.WriterSpec{Path: path, FPS: 1, Width: 2, Height: 2}, []image.Image{img})

	chunk := data[moviDataStart:]
	if string(chunk[:4]) != "00db" {
		t.Fatalf("expected 00db chunk, got %q", chunk[:4])
	}
	if size := binary.LittleEndian.Uint32(chunk[4:8]); size != 16 {
		t.Fatalf("expected 16-byte frame, got %d", size)
	}
	pix := chunk[8:]
	// bottom row first, BGR order, rows padded to 8 bytes
	if pix[0] != 60 || pix[1] != 50 || pix[2] != 40 {
		t.Errorf("expected bottom-left BGR 60,50,40, got %v", pix[:3])
	}
	if pix[8] != 30 || pix[9] != 20 || pix[10] != 10 {
		t.Errorf("expected top-left BGR 30,20,10, got %v", pix[8:11])
	}
}

func TestWriter_NonRGBASource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray.avi")
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(1, 0, color.Gray{Y: 77})

	data := writeClip(t, ports.WriterSpec{Path: path, FPS: 1, Width: 3, Height: 1}, []image.Image{img})

	pix := data[moviDataStart+8:]
	if pix[3] != 77 || pix[4] != 77 || pix[5] != 77 {
		t.Errorf("expected gray 77 at second pixel, got %v", pix[3:6])
	}
}

func TestWriter_NoFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.avi")
	data := writeClip(t, ports.WriterSpec{Path: path, FPS: 10, Width: 4, Height: 4}, nil)

	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Frames != 0 {
		t.Errorf("expected 0 frames, got %d", h.Frames)
	}
}

func TestWriter_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(ports.WriterSpec{Path: filepath.Join(dir, "a.avi"), FPS: 0, Width: 4, Height: 4}); err == nil {
		t.Error("expected error for zero fps")
	}
	if _, err := Open(ports.WriterSpec{Path: filepath.Join(dir, "b.avi"), FPS: 1, Width: 0, Height: 4}); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := Open(ports.WriterSpec{Path: filepath.Join(dir, "c.avi"), FPS: 1, Width: 40000, Height: 40000}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	w, err := Open(ports.WriterSpec{Path: filepath.Join(dir, "d.avi"), FPS: 1, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := w.WriteFrame(image.NewRGBA(image.Rect(0, 0, 3, 4))); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
	w.Close()
	if err := w.WriteFrame(image.NewRGBA(image.Rect(0, 0, 4, 4))); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestReadHeader_NotAVI(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("short"),
		[]byte("RIFF\x04\x00\x00\x00WAVEfmt "),
	} {
		if _, err := ReadHeader(bytes.NewReader(data)); !errors.Is(err, ErrNotAVI) {
			t.Errorf("expected ErrNotAVI for %q, got %v", data, err)
		}
	}
}
