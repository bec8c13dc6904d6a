package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveResolvedJSON saves the dimension resolution result as JSON.
	SaveResolvedJSON(data []byte) error

	// SaveFrame saves a resized frame as it was handed to the writer.
	SaveFrame(index int, img image.Image) error
}
