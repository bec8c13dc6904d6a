package pipeline

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String returns the dimension as WxH.
func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Valid reports whether both components are positive.
func (d Dimension) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// =============================================================================
// Formats
// =============================================================================

// VideoFormat is the user-facing container/codec choice.
type VideoFormat string

const (
	FormatAVI    VideoFormat = "avi"
	FormatMP4    VideoFormat = "mp4"
	FormatAVIRaw VideoFormat = "avi(raw)"
)

// FourCC identifies the codec handed to a video writer.
// The empty FourCC means uncompressed frames.
type FourCC string

const (
	CodecDIVX FourCC = "DIVX"
	CodecMP4V FourCC = "mp4v"
	CodecRaw  FourCC = ""
)

// String returns the FourCC, or "raw" for uncompressed output.
func (c FourCC) String() string {
	if c == CodecRaw {
		return "raw"
	}
	return string(c)
}

// FormatSpec maps a VideoFormat to its codec and file extension.
type FormatSpec struct {
	Format    VideoFormat
	Codec     FourCC
	Extension string
}

// Uncompressed reports whether frames are stored without compression.
func (s FormatSpec) Uncompressed() bool {
	return s.Codec == CodecRaw
}

// DefaultFormat is used when a format id is not in the table.
const DefaultFormat = FormatAVI

var formatTable = []FormatSpec{
	{Format: FormatAVI, Codec: CodecDIVX, Extension: "avi"},
	{Format: FormatMP4, Codec: CodecMP4V, Extension: "mp4"},
	{Format: FormatAVIRaw, Codec: CodecRaw, Extension: "avi"},
}

// Formats returns the supported formats in display order.
func Formats() []FormatSpec {
	out := make([]FormatSpec, len(formatTable))
	copy(out, formatTable)
	return out
}

// LookupFormat returns the spec for f. Unknown ids resolve to the
// DefaultFormat entry and known is false.
func LookupFormat(f VideoFormat) (spec FormatSpec, known bool) {
	for _, s := range formatTable {
		if s.Format == f {
			return s, true
		}
	}
	for _, s := range formatTable {
		if s.Format == DefaultFormat {
			return s, false
		}
	}
	// formatTable always contains DefaultFormat
	return FormatSpec{Format: DefaultFormat, Codec: CodecDIVX, Extension: "avi"}, false
}

// =============================================================================
// Run Configuration
// =============================================================================

// ResolutionRule caps the target box for a format. Zero means unlimited.
type ResolutionRule struct {
	MaxWidth  int `yaml:"max_width" toml:"max_width"`
	MaxHeight int `yaml:"max_height" toml:"max_height"`
}

// Allows reports whether the rule admits the given box.
func (r ResolutionRule) Allows(d Dimension) bool {
	if r.MaxWidth > 0 && d.Width > r.MaxWidth {
		return false
	}
	if r.MaxHeight > 0 && d.Height > r.MaxHeight {
		return false
	}
	return true
}

// ResolutionRules maps formats to their limits. Formats without an entry are unlimited.
type ResolutionRules map[VideoFormat]ResolutionRule

// DefaultResolutionRules limits compressed formats to 4096x4096.
func DefaultResolutionRules() ResolutionRules {
	return ResolutionRules{
		FormatAVI: {MaxWidth: 4096, MaxHeight: 4096},
		FormatMP4: {MaxWidth: 4096, MaxHeight: 4096},
	}
}

// RunConfig is the immutable description of one assembly run.
type RunConfig struct {
	Inputs       []string
	OutputDir    string
	OutputName   string
	TargetWidth  int
	TargetHeight int
	FPS          float64
	Format       VideoFormat
}

// Target returns the requested bounding box.
func (c RunConfig) Target() Dimension {
	return Dimension{Width: c.TargetWidth, Height: c.TargetHeight}
}

// Spec returns the format table entry for the configured format.
func (c RunConfig) Spec() FormatSpec {
	spec, _ := LookupFormat(c.Format)
	return spec
}

// OutputPath returns OutputDir/OutputName.ext.
func (c RunConfig) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputName+"."+c.Spec().Extension)
}

// Validate checks the configuration. Empty inputs yield ErrEmptyInput;
// every other violation is a *ValidationError. A nil rules map disables
// resolution limits.
func (c RunConfig) Validate(rules ResolutionRules) error {
	if len(c.Inputs) == 0 {
		return ErrEmptyInput
	}
	for i, p := range c.Inputs {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Field: "inputs", Reason: fmt.Sprintf("path %d is empty", i)}
		}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &ValidationError{Field: "output_dir", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.OutputName) == "" {
		return &ValidationError{Field: "output_name", Reason: "must not be empty"}
	}
	if c.TargetWidth <= 0 {
		return &ValidationError{Field: "width", Reason: fmt.Sprintf("must be positive, got %d", c.TargetWidth)}
	}
	if c.TargetHeight <= 0 {
		return &ValidationError{Field: "height", Reason: fmt.Sprintf("must be positive, got %d", c.TargetHeight)}
	}
	if !(c.FPS > 0) {
		return &ValidationError{Field: "fps", Reason: fmt.Sprintf("must be positive, got %g", c.FPS)}
	}
	spec := c.Spec()
	if rule, ok := rules[spec.Format]; ok && !rule.Allows(c.Target()) {
		return &ValidationError{
			Field: "resolution",
			Reason: fmt.Sprintf("%s exceeds %dx%d for format %s",
				c.Target(), rule.MaxWidth, rule.MaxHeight, spec.Format),
		}
	}
	return nil
}

// NewRunConfig copies cfg, validates it and returns the copy.
func NewRunConfig(cfg RunConfig, rules ResolutionRules) (RunConfig, error) {
	inputs := make([]string, len(cfg.Inputs))
	copy(inputs, cfg.Inputs)
	cfg.Inputs = inputs
	if err := cfg.Validate(rules); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// =============================================================================
// Resolve Stage Types
// =============================================================================

// ResolveInput contains the reference image and the target box.
type ResolveInput struct {
	ReferencePath string
	Target        Dimension
}

// ResolveResult contains the native and the resolved frame size.
type ResolveResult struct {
	Native   Dimension `json:"native"`
	Resolved Dimension `json:"resolved"`
	Scale    float64   `json:"scale"`
	Target   Dimension `json:"target"`
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains everything needed to stream frames into a writer.
type EncodeInput struct {
	Inputs     []string
	OutputPath string
	Format     FormatSpec
	FPS        float64
	Size       Dimension

	// Prefetch is the number of frames decoded ahead of the writer.
	// Zero decodes on the encoding goroutine.
	Prefetch int

	OnProgress ProgressFunc
}

// EncodeResult describes a finished encode.
type EncodeResult struct {
	FramesWritten int
	OutputPath    string
	Backend       string
	Codec         string
	FallbackUsed  bool
}

// =============================================================================
// Preview Stage Types
// =============================================================================

// PreviewInput lists the images for a contact sheet.
type PreviewInput struct {
	Inputs []string
}

// PreviewResult is a rendered contact sheet.
type PreviewResult struct {
	Image   image.Image
	Cells   int
	Skipped []string
}
