// Package rawavi reads and writes AVI (RIFF) containers.
// The writer stores uncompressed 24-bit BGR frames; the reader parses the
// headers of any AVI file.
package rawavi

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/user/timelapse/pkg/ports"
)

// Codec is the FourCC reported for uncompressed output.
const Codec = ""

var (
	// ErrTooLarge is returned once the RIFF size limit would be exceeded.
	ErrTooLarge = errors.New("rawavi: file exceeds 4 GiB RIFF limit")

	// ErrFrameSize is returned when a frame does not match the writer size.
	ErrFrameSize = errors.New("rawavi: frame size mismatch")

	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("rawavi: writer closed")
)

// Fixed layout of the header this writer emits.
const (
	offRIFFSize   = 4
	offAvihFrames = 48
	offStrhLength = 140
	offMoviSize   = 216
	moviDataStart = 224
	headerSize    = moviDataStart

	avihSize = 56
	strhSize = 56
	strfSize = 40

	flagHasIndex = 0x10
	flagKeyframe = 0x10
	rateScale    = 1000
)

// Writer implements ports.VideoWriter for uncompressed AVI.
type Writer struct {
	f      *os.File
	bw     *bufio.Writer
	width  int
	height int
	stride int
	row    []byte

	mu      sync.Mutex
	offsets []uint32
	pos     int64
	closed  bool
}

// FrameBytes returns the size of one stored frame. Rows are padded to four bytes.
func FrameBytes(width, height int) int {
	return stride(width) * height
}

func stride(width int) int {
	return (width*3 + 3) &^ 3
}

// Open creates path and writes a provisional header.
func Open(spec ports.WriterSpec) (*Writer, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", spec.Width, spec.Height)
	}
	if spec.FPS <= 0 || math.IsInf(spec.FPS, 0) || math.IsNaN(spec.FPS) {
		return nil, fmt.Errorf("invalid frame rate %v", spec.FPS)
	}
	if int64(FrameBytes(spec.Width, spec.Height))+headerSize > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	f, err := os.Create(spec.Path)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		f:      f,
		bw:     bufio.NewWriterSize(f, 1<<20),
		width:  spec.Width,
		height: spec.Height,
		stride: stride(spec.Width),
	}
	w.row = make([]byte, w.stride)

	if _, err := w.bw.Write(header(spec)); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.pos = headerSize
	return w, nil
}

func header(spec ports.WriterSpec) []byte {
	b := make([]byte, 0, headerSize)
	le := binary.LittleEndian
	u32 := func(v uint32) { b = le.AppendUint32(b, v) }
	u16 := func(v uint16) { b = le.AppendUint16(b, v) }
	cc := func(s string) { b = append(b, s...) }

	frameBytes := uint32(FrameBytes(spec.Width, spec.Height))
	usPerFrame := uint32(math.Round(1e6 / spec.FPS))
	rate := uint32(math.Round(spec.FPS * rateScale))
	maxBytesPerSec := uint32(math.Min(float64(frameBytes)*spec.FPS, math.MaxUint32))

	cc("RIFF")
	u32(0)
	cc("AVI ")

	cc("LIST")
	u32(4 + (8 + avihSize) + (12 + 8 + strhSize + 8 + strfSize))
	cc("hdrl")

	cc("avih")
	u32(avihSize)
	u32(usPerFrame)
	u32(maxBytesPerSec)
	u32(0)
	u32(flagHasIndex)
	u32(0) // total frames, patched on close
	u32(0)
	u32(1)
	u32(frameBytes)
	u32(uint32(spec.Width))
	u32(uint32(spec.Height))
	u32(0)
	u32(0)
	u32(0)
	u32(0)

	cc("LIST")
	u32(4 + 8 + strhSize + 8 + strfSize)
	cc("strl")

	cc("strh")
	u32(strhSize)
	cc("vids")
	cc("DIB ")
	u32(0)
	u16(0)
	u16(0)
	u32(0)
	u32(rateScale)
	u32(rate)
	u32(0)
	u32(0) // length, patched on close
	u32(frameBytes)
	u32(math.MaxUint32)
	u32(0)
	u16(0)
	u16(0)
	u16(uint16(spec.Width))
	u16(uint16(spec.Height))

	cc("strf")
	u32(strfSize)
	u32(strfSize)
	u32(uint32(spec.Width))
	u32(uint32(spec.Height)) // positive height: bottom-up rows
	u16(1)
	u16(24)
	u32(0) // BI_RGB
	u32(frameBytes)
	u32(0)
	u32(0)
	u32(0)
	u32(0)

	cc("LIST")
	u32(0) // movi size, patched on close
	cc("movi")
	return b
}

// WriteFrame appends img as a "00db" chunk.
func (w *Writer) WriteFrame(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	b := img.Bounds()
	if b.Dx() != w.width || b.Dy() != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), w.width, w.height)
	}

	size := int64(w.stride * w.height)
	// chunk + index entry + trailing idx1 header must still fit
	indexBytes := int64(len(w.offsets)+1)*16 + 8
	if w.pos+8+size+indexBytes > math.MaxUint32 {
		return ErrTooLarge
	}

	var hdr [8]byte
	copy(hdr[:4], "00db")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(size))
	if _, err := w.bw.Write(hdr[:]); err != nil {
		return err
	}

	for y := w.height - 1; y >= 0; y-- {
		fillRow(w.row, img, b.Min.X, b.Min.Y+y, w.width)
		if _, err := w.bw.Write(w.row); err != nil {
			return err
		}
	}

	w.offsets = append(w.offsets, uint32(w.pos-(moviDataStart-4)))
	w.pos += 8 + size
	return nil
}

func fillRow(row []byte, img image.Image, x0, y, width int) {
	if rgba, ok := img.(*image.RGBA); ok {
		off := rgba.PixOffset(x0, y)
		pix := rgba.Pix[off : off+width*4]
		for x := 0; x < width; x++ {
			row[x*3] = pix[x*4+2]
			row[x*3+1] = pix[x*4+1]
			row[x*3+2] = pix[x*4]
		}
		return
	}
	for x := 0; x < width; x++ {
		r, g, b, _ := img.At(x0+x, y).RGBA()
		row[x*3] = uint8(b >> 8)
		row[x*3+1] = uint8(g >> 8)
		row[x*3+2] = uint8(r >> 8)
	}
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.offsets)
}

// Close writes the index and patches the header counts.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.finish()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (w *Writer) finish() error {
	le := binary.LittleEndian
	moviEnd := w.pos
	frameSize := uint32(w.stride * w.height)

	idx := make([]byte, 0, 8+16*len(w.offsets))
	idx = append(idx, "idx1"...)
	idx = le.AppendUint32(idx, uint32(16*len(w.offsets)))
	for _, off := range w.offsets {
		idx = append(idx, "00db"...)
		idx = le.AppendUint32(idx, flagKeyframe)
		idx = le.AppendUint32(idx, off)
		idx = le.AppendUint32(idx, frameSize)
	}
	if _, err := w.bw.Write(idx); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	fileEnd := moviEnd + int64(len(idx))
	patches := []struct {
		off int64
		v   uint32
	}{
		{offRIFFSize, uint32(fileEnd - 8)},
		{offAvihFrames, uint32(len(w.offsets))},
		{offStrhLength, uint32(len(w.offsets))},
		{offMoviSize, uint32(moviEnd - (offMoviSize + 4))},
	}
	var buf [4]byte
	for _, p := range patches {
		le.PutUint32(buf[:], p.v)
		if _, err := w.f.WriteAt(buf[:], p.off); err != nil {
			return fmt.Errorf("patch header: %w", err)
		}
	}
	return nil
}

// Ensure Writer implements ports.VideoWriter
var _ ports.VideoWriter = (*Writer)(nil)
