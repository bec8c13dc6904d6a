package rawavi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotAVI is returned when the input is not a RIFF AVI file.
var ErrNotAVI = errors.New("rawavi: not an AVI file")

// Header describes the first video stream of an AVI file.
type Header struct {
	Width  int
	Height int
	Frames int
	FPS    float64
	// Codec is the stream FourCC, empty for uncompressed frames.
	Codec string
}

// ReadHeader parses the hdrl list of an AVI file.
func ReadHeader(r io.ReadSeeker) (Header, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrNotAVI, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "AVI " {
		return Header{}, ErrNotAVI
	}

	p := &headerParser{r: r}
	end := int64(binary.LittleEndian.Uint32(riff[4:8])) + 8
	if err := p.walk(12, end); err != nil && !errors.Is(err, errDone) {
		return Header{}, err
	}
	if !p.haveVideo {
		return Header{}, fmt.Errorf("%w: no video stream", ErrNotAVI)
	}
	if p.h.Width == 0 || p.h.Height == 0 {
		p.h.Width, p.h.Height = p.avihWidth, p.avihHeight
	}
	if p.h.Frames == 0 {
		p.h.Frames = p.avihFrames
	}
	return p.h, nil
}

var errDone = errors.New("done")

type headerParser struct {
	r io.ReadSeeker
	h Header

	avihWidth  int
	avihHeight int
	avihFrames int

	streamType string
	haveVideo  bool
	videoDone  bool
}

func (p *headerParser) walk(pos, end int64) error {
	le := binary.LittleEndian
	for pos+8 <= end {
		if _, err := p.r.Seek(pos, io.SeekStart); err != nil {
			return err
		}
		var ch [8]byte
		if _, err := io.ReadFull(p.r, ch[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return errDone
			}
			return err
		}
		id := string(ch[:4])
		size := int64(le.Uint32(ch[4:]))
		body := pos + 8
		next := body + size + size&1

		switch id {
		case "LIST":
			var lt [4]byte
			if _, err := io.ReadFull(p.r, lt[:]); err != nil {
				return err
			}
			switch string(lt[:]) {
			case "hdrl", "strl":
				if err := p.walk(body+4, body+size); err != nil {
					return err
				}
				if string(lt[:]) == "hdrl" {
					return errDone
				}
			case "movi":
				return errDone
			}
		case "avih":
			buf, err := p.read(size, avihSize)
			if err != nil {
				return err
			}
			p.avihFrames = int(le.Uint32(buf[16:]))
			p.avihWidth = int(le.Uint32(buf[32:]))
			p.avihHeight = int(le.Uint32(buf[36:]))
		case "strh":
			buf, err := p.read(size, strhSize)
			if err != nil {
				return err
			}
			p.streamType = string(buf[0:4])
			if p.streamType == "vids" && !p.haveVideo {
				p.haveVideo = true
				p.h.Codec = fourCC(buf[4:8])
				scale := le.Uint32(buf[20:])
				rate := le.Uint32(buf[24:])
				if scale != 0 {
					p.h.FPS = float64(rate) / float64(scale)
				}
				p.h.Frames = int(le.Uint32(buf[32:]))
			}
		case "strf":
			if p.streamType != "vids" || p.videoDone {
				break
			}
			buf, err := p.read(size, strfSize)
			if err != nil {
				return err
			}
			p.videoDone = true
			p.h.Width = int(int32(le.Uint32(buf[4:])))
			h := int(int32(le.Uint32(buf[8:])))
			if h < 0 {
				h = -h
			}
			p.h.Height = h
			if compression := fourCC(buf[16:20]); compression != "" {
				p.h.Codec = compression
			} else {
				p.h.Codec = Codec
			}
		}
		pos = next
	}
	return nil
}

func (p *headerParser) read(size int64, want int) ([]byte, error) {
	if size < int64(want) {
		return nil, fmt.Errorf("%w: short chunk", ErrNotAVI)
	}
	buf := make([]byte, want)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// fourCC renders a FourCC, treating all-zero as empty.
func fourCC(b []byte) string {
	if binary.LittleEndian.Uint32(b) == 0 {
		return ""
	}
	return strings.TrimRight(string(b), "\x00")
}
