package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/timelapse/pkg/adapters/ggrenderer"
	"github.com/user/timelapse/pkg/adapters/logger"
	"github.com/user/timelapse/pkg/config"
	"github.com/user/timelapse/pkg/discovery"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// Flag categories, translated when the flags are built
const (
	catInput    = "Input"
	catOutput   = "Output"
	catVideo    = "Video"
	catWriter   = "Writer"
	catSettings = "Settings"
	catDebug    = "Debug"
	catLogging  = "Logging"
)

// flagSource is the subset of *cli.Context used to read flag values.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Float64(name string) float64
	Bool(name string) bool
}

func settingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "settings", Category: l10n.T(catSettings), Usage: l10n.T("Settings file (YAML, or TOML with a .toml extension)")},
		&cli.BoolFlag{Name: "save-settings", Category: l10n.T(catSettings), Usage: l10n.T("Write the effective settings back to the settings file")},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Category: l10n.T(catLogging), Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Category: l10n.T(catLogging), Usage: l10n.T("Suppress all log output")},
		&cli.StringFlag{Name: "log-file", Category: l10n.T(catLogging), Usage: l10n.T("Also append log lines to this file")},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input-folder", Aliases: []string{"i"}, Category: l10n.T(catInput), Usage: l10n.T("Folder scanned for photos when no files are given")},
		&cli.StringFlag{Name: "sort", Category: l10n.T(catInput), Usage: l10n.T("Frame order for folder scans (name, modtime)")},
	}
}

func videoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output-folder", Aliases: []string{"o"}, Category: l10n.T(catOutput), Usage: l10n.T("Folder the video is written to")},
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Category: l10n.T(catOutput), Usage: l10n.T("Video file name without extension (default: timestamp)")},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Category: l10n.T(catOutput), Usage: l10n.T("Video format (avi, mp4, avi(raw))")},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Category: l10n.T(catVideo), Usage: l10n.T("Maximum frame width")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Category: l10n.T(catVideo), Usage: l10n.T("Maximum frame height")},
		&cli.Float64Flag{Name: "fps", Aliases: []string{"r"}, Category: l10n.T(catVideo), Usage: l10n.T("Frames per second")},
		&cli.BoolFlag{Name: "use-photo-size", Category: l10n.T(catVideo), Usage: l10n.T("Use the first photo's size as the frame box")},
		&cli.StringFlag{Name: "interpolation", Category: l10n.T(catVideo), Usage: l10n.T("Resize kernel (nearest, approx-bilinear, bilinear, catmullrom)")},
		&cli.IntFlag{Name: "prefetch", Category: l10n.T(catVideo), Usage: l10n.T("Frames decoded ahead of the writer (0 = sequential)")},
		&cli.StringFlag{Name: "ffmpeg", Category: l10n.T(catWriter), Usage: l10n.T("Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)")},
		&cli.BoolFlag{Name: "no-fallback", Category: l10n.T(catWriter), Usage: l10n.T("Fail instead of writing MJPEG when ffmpeg is missing")},
		&cli.IntFlag{Name: "jpeg-quality", Category: l10n.T(catWriter), Usage: l10n.T("JPEG quality of MJPEG fallback frames (1-100)")},
	}
}

// applyFlags overrides settings with every flag given on the command line.
func applyFlags(f flagSource, s *config.Settings) error {
	if f.IsSet("input-folder") {
		s.InputFolder = f.String("input-folder")
	}
	if f.IsSet("sort") {
		if _, err := discovery.ParseSort(f.String("sort")); err != nil {
			return err
		}
		s.Sort = f.String("sort")
	}
	if f.IsSet("output-folder") {
		s.OutputFolder = f.String("output-folder")
	}
	if f.IsSet("name") {
		s.OutputFile = f.String("name")
	}
	if f.IsSet("format") {
		s.Format = strings.TrimSpace(f.String("format"))
	}
	if f.IsSet("width") {
		s.Width = f.Int("width")
	}
	if f.IsSet("height") {
		s.Height = f.Int("height")
	}
	if f.IsSet("fps") {
		s.FPS = f.Float64("fps")
	}
	if f.IsSet("use-photo-size") {
		s.UseLoadedPhotoSize = f.Bool("use-photo-size")
	}
	if f.IsSet("interpolation") {
		if _, err := ggrenderer.ParseInterpolation(f.String("interpolation")); err != nil {
			return err
		}
		s.Interpolation = f.String("interpolation")
	}
	if f.IsSet("prefetch") {
		s.Prefetch = f.Int("prefetch")
	}
	if f.IsSet("ffmpeg") {
		s.FFmpegPath = f.String("ffmpeg")
	}
	if f.IsSet("no-fallback") {
		s.MJPEGFallback = !f.Bool("no-fallback")
	}
	if f.IsSet("jpeg-quality") {
		q := f.Int("jpeg-quality")
		if q < 1 || q > 100 {
			return &pipeline.ValidationError{Field: "jpeg_quality", Reason: fmt.Sprintf("must be 1-100, got %d", q)}
		}
		s.JPEGQuality = q
	}
	return nil
}

// newLogger builds the console logger and, with --log-file, a file logger
// next to it. The returned close function is never nil.
func newLogger(f flagSource) (ports.Logger, func() error, error) {
	noClose := func() error { return nil }

	var console ports.Logger
	if f.Bool("quiet") {
		console = logger.NewNoop()
	} else {
		console = logger.NewConsole(ports.ParseLogLevel(f.String("log-level")))
	}

	path := f.String("log-file")
	if path == "" {
		return console, noClose, nil
	}
	file, err := logger.NewFile(path, ports.ParseLogLevel(f.String("log-level")), 0)
	if err != nil {
		return nil, noClose, err
	}
	return logger.NewMulti(console, file), file.Close, nil
}

// loadSettings reads the settings file named by --settings, or the default
// one. A corrupt file is reported and defaults are used.
func loadSettings(f flagSource, fs ports.FileSystem, log ports.Logger) (config.Settings, string, error) {
	path := f.String("settings")
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return config.Defaults(), "", nil
	}

	s, err := config.Load(fs, path)
	if err != nil {
		if errors.Is(err, config.ErrInvalidSettings) {
			log.Warn("Settings file %s is invalid, using defaults: %s", path, err)
			return s, path, nil
		}
		return s, path, err
	}
	return s, path, nil
}
