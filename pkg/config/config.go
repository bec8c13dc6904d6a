// Package config provides settings loading and persistence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/ports"
)

// OutputNameLayout formats the default output file name.
const OutputNameLayout = "02-01-2006 15-04-05"

// ErrInvalidSettings is returned when a settings file cannot be parsed.
var ErrInvalidSettings = errors.New("config: invalid settings file")

// Settings represents the persisted settings for timelapse.
type Settings struct {
	// Input/Output
	InputFolder  string `yaml:"input_folder" toml:"input_folder"`
	OutputFolder string `yaml:"output_folder" toml:"output_folder"`
	// OutputFile is the file name without extension. Empty means a timestamp.
	OutputFile string `yaml:"output_file" toml:"output_file"`

	// Video
	Width              int     `yaml:"width" toml:"width"`
	Height             int     `yaml:"height" toml:"height"`
	FPS                float64 `yaml:"fps" toml:"fps"`
	Format             string  `yaml:"format" toml:"format"`
	UseLoadedPhotoSize bool    `yaml:"use_loaded_photo_size" toml:"use_loaded_photo_size"`

	// Processing
	Sort          string `yaml:"sort" toml:"sort"`
	Interpolation string `yaml:"interpolation" toml:"interpolation"`
	Prefetch      int    `yaml:"prefetch" toml:"prefetch"`

	// Writers
	FFmpegPath    string `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	MJPEGFallback bool   `yaml:"mjpeg_fallback" toml:"mjpeg_fallback"`
	JPEGQuality   int    `yaml:"jpeg_quality" toml:"jpeg_quality"`

	// FormatLimits caps the target box per format. Zero means unlimited.
	FormatLimits map[string]pipeline.ResolutionRule `yaml:"format_limits" toml:"format_limits"`
}

// Defaults returns Settings with default values.
func Defaults() Settings {
	limits := make(map[string]pipeline.ResolutionRule)
	for f, r := range pipeline.DefaultResolutionRules() {
		limits[string(f)] = r
	}
	return Settings{
		OutputFolder:  ".",
		Width:         1920,
		Height:        1080,
		FPS:           30,
		Format:        string(pipeline.DefaultFormat),
		Sort:          "name",
		Interpolation: "bilinear",
		Prefetch:      2,
		MJPEGFallback: true,
		JPEGQuality:   90,
		FormatLimits:  limits,
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "timelapse.yaml"
	}
	return filepath.Join(dir, "timelapse", "settings.yaml")
}

// DefaultOutputName formats now the way output files are named by default.
func DefaultOutputName(now time.Time) string {
	return now.Format(OutputNameLayout)
}

type codec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return codec{marshal: toml.Marshal, unmarshal: toml.Unmarshal}
	default:
		return codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
	}
}

// Load reads settings from path. TOML is used for .toml files, YAML otherwise.
// A missing file yields defaults and no error. A corrupt file yields
// defaults and an error wrapping ErrInvalidSettings.
func Load(fsys ports.FileSystem, path string) (Settings, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), err
	}

	s := Defaults()
	if err := codecFor(path).unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}
	return s, nil
}

// Save writes settings to path in the format chosen by its extension.
func Save(fsys ports.FileSystem, path string, s Settings) error {
	data, err := codecFor(path).marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return fsys.WriteFile(path, data)
}

// Rules converts FormatLimits into resolution rules.
func (s Settings) Rules() pipeline.ResolutionRules {
	rules := make(pipeline.ResolutionRules, len(s.FormatLimits))
	for f, r := range s.FormatLimits {
		rules[pipeline.VideoFormat(f)] = r
	}
	return rules
}

// OutputName returns OutputFile, or a timestamp name when it is empty.
func (s Settings) OutputName(now time.Time) string {
	if strings.TrimSpace(s.OutputFile) != "" {
		return s.OutputFile
	}
	return DefaultOutputName(now)
}

// ToRunConfig builds the run description for inputs.
func (s Settings) ToRunConfig(inputs []string, now time.Time) pipeline.RunConfig {
	return pipeline.RunConfig{
		Inputs:       inputs,
		OutputDir:    s.OutputFolder,
		OutputName:   s.OutputName(now),
		TargetWidth:  s.Width,
		TargetHeight: s.Height,
		FPS:          s.FPS,
		Format:       pipeline.VideoFormat(s.Format),
	}
}
