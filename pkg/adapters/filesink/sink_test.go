package filesink

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/user/timelapse/pkg/adapters/nullsink"
	"github.com/user/timelapse/pkg/mocks"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
	if nullsink.New().Enabled() {
		t.Error("expected null sink to be disabled")
	}
}

func TestSink_SaveResolvedJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"resolved":{"width":1440,"height":1080}}`)
	if err := sink.SaveResolvedJSON(data); err != nil {
		t.Fatalf("SaveResolvedJSON failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "resolved.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for _, index := range []int{0, 25, 1234} {
		if err := sink.SaveFrame(index, img); err != nil {
			t.Fatalf("SaveFrame failed: %v", err)
		}
	}

	for _, name := range []string{"frame-0000.png", "frame-0025.png", "frame-1234.png"} {
		expectedPath := filepath.Join(testBaseDir, "frames", name)
		if _, ok := fs.GetFile(expectedPath); !ok {
			t.Errorf("expected file to be saved at %s", expectedPath)
		}
	}
}
