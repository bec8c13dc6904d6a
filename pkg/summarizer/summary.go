package summarizer

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/user/timelapse/pkg/pipeline"
)

// Summary contains the data shown before and after a run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input photos
	Input InputInfo

	// Requested settings
	Settings Settings

	// Video output details, empty before the run
	Video VideoInfo
}

// InputInfo describes the photos going into the video.
type InputInfo struct {
	Folder string
	Photos int
}

// Settings contains the requested configuration.
type Settings struct {
	FPS       float64
	Requested pipeline.Dimension
	Format    pipeline.VideoFormat
	Codec     pipeline.FourCC
}

// VideoInfo contains information about the written video.
type VideoInfo struct {
	RunID        string
	Native       pipeline.Dimension
	Resolved     pipeline.Dimension
	Backend      string
	Codec        string
	FallbackUsed bool
	Frames       int
	OutputPath   string
	FileSize     int64
	Elapsed      time.Duration
}

// Done reports whether the summary carries run results.
func (s *Summary) Done() bool {
	return s.Video.OutputPath != ""
}

// Length returns the playback length: photos divided by the frame rate.
func (s *Summary) Length() time.Duration {
	if s.Settings.FPS <= 0 {
		return 0
	}
	n := s.Input.Photos
	if s.Done() {
		n = s.Video.Frames
	}
	return time.Duration(float64(n) / s.Settings.FPS * float64(time.Second))
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(folder string, photos int) *Builder {
	b.summary.Input = InputInfo{Folder: folder, Photos: photos}
	return b
}

// WithSettings sets the requested settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// Row is one labelled line of a summary.
type Row struct {
	Label string
	Value string
}

// Rows returns the summary as label/value pairs. Labels pass through tr;
// a nil tr leaves them untouched. Result rows appear only after a run.
func Rows(s *Summary, tr Translator) []Row {
	if tr == nil {
		tr = identity
	}
	rows := []Row{
		{tr("Photos"), fmt.Sprintf("%d", s.Input.Photos)},
		{tr("Video Length (sec)"), fmt.Sprintf("%.2f", s.Length().Seconds())},
		{tr("FPS"), formatFPS(s.Settings.FPS)},
		{tr("Resolution"), fmt.Sprintf("%d x %d", s.Settings.Requested.Width, s.Settings.Requested.Height)},
		{tr("Format"), fmt.Sprintf("%s (%s)", s.Settings.Format, s.Settings.Codec)},
	}
	if s.Input.Folder != "" {
		rows = append([]Row{{tr("Input Folder"), s.Input.Folder}}, rows...)
	}
	if !s.Done() {
		return rows
	}

	v := s.Video
	backend := v.Backend
	if v.FallbackUsed {
		backend += " (" + tr("fallback") + ")"
	}
	rows = append(rows,
		Row{tr("Frame Size"), fmt.Sprintf("%d x %d", v.Resolved.Width, v.Resolved.Height)},
		Row{tr("Source Size"), fmt.Sprintf("%d x %d", v.Native.Width, v.Native.Height)},
		Row{tr("Frames"), fmt.Sprintf("%d", v.Frames)},
		Row{tr("Writer"), fmt.Sprintf("%s, %s", backend, codecLabel(v.Codec))},
		Row{tr("Output"), v.OutputPath},
		Row{tr("File Size"), formatBytes(v.FileSize)},
		Row{tr("Elapsed"), v.Elapsed.Round(10 * time.Millisecond).String()},
	)
	if v.RunID != "" {
		rows = append(rows, Row{tr("Run ID"), v.RunID})
	}
	return rows
}

func formatFPS(fps float64) string {
	return humanize.Ftoa(fps)
}

func codecLabel(codec string) string {
	return pipeline.FourCC(codec).String()
}

// formatBytes formats a byte count in IEC units.
func formatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
