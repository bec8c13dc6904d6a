// Package videoprobe reads stream properties back from written video files.
package videoprobe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/timelapse/pkg/adapters/rawavi"
)

// Container identifies a video container format.
type Container string

const (
	ContainerAVI Container = "avi"
	ContainerMP4 Container = "mp4"
)

var (
	// ErrUnknownContainer is returned for files that are neither AVI nor MP4.
	ErrUnknownContainer = errors.New("videoprobe: unknown container")
	// ErrNoVideoTrack is returned when a container holds no video stream.
	ErrNoVideoTrack = errors.New("videoprobe: no video track found")
)

// Info describes the first video stream of a file.
type Info struct {
	Container Container
	// Codec is the sample entry or FourCC, empty for uncompressed AVI.
	Codec  string
	Width  int
	Height int
	Frames int
	FPS    float64
}

// Duration returns the stream length implied by Frames and FPS.
func (i Info) Duration() time.Duration {
	if i.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(i.Frames) / i.FPS * float64(time.Second))
}

// ProbeFile probes the video file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe sniffs the container from the leading bytes and reads its headers.
func Probe(r io.ReadSeeker) (Info, error) {
	var head [12]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnknownContainer, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	switch {
	case string(head[0:4]) == "RIFF" && string(head[8:12]) == "AVI ":
		return probeAVI(r)
	case string(head[4:8]) == "ftyp":
		return probeMP4(r)
	default:
		return Info{}, ErrUnknownContainer
	}
}

func probeAVI(r io.ReadSeeker) (Info, error) {
	h, err := rawavi.ReadHeader(r)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Container: ContainerAVI,
		Codec:     h.Codec,
		Width:     h.Width,
		Height:    h.Height,
		Frames:    h.Frames,
		FPS:       h.FPS,
	}, nil
}

func probeMP4(r io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	var traks []*mp4.TrakBox
	if mp4File.Moov != nil {
		traks = mp4File.Moov.Traks
	} else if mp4File.Init != nil && mp4File.Init.Moov != nil {
		traks = mp4File.Init.Moov.Traks
	}

	for _, trak := range traks {
		if info, ok := videoTrack(trak); ok {
			return info, nil
		}
	}
	return Info{}, ErrNoVideoTrack
}

func videoTrack(trak *mp4.TrakBox) (Info, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return Info{}, false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return Info{}, false
	}
	stbl := trak.Mdia.Minf.Stbl

	info := Info{Container: ContainerMP4}
	if len(stbl.Stsd.Children) > 0 {
		info.Codec = stbl.Stsd.Children[0].Type()
	}
	if trak.Tkhd != nil {
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}
	if stbl.Stsz != nil {
		info.Frames = int(stbl.Stsz.SampleNumber)
	}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 && mdhd.Duration > 0 {
		seconds := float64(mdhd.Duration) / float64(mdhd.Timescale)
		info.FPS = float64(info.Frames) / seconds
	}
	return info, true
}
