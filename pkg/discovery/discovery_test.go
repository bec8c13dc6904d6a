package discovery

import (
	"path/filepath"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/user/timelapse/pkg/adapters/logger"
	"github.com/user/timelapse/pkg/mocks"
)

func TestNaturalLess(t *testing.T) {
	names := []string{"img10.jpg", "img2.jpg", "img1.jpg", "a.jpg", "img02.jpg", "IMG3.jpg", "img.jpg"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	want := []string{"IMG3.jpg", "a.jpg", "img.jpg", "img1.jpg", "img2.jpg", "img02.jpg", "img10.jpg"}
	if !slices.Equal(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}

	if NaturalLess("x", "x") {
		t.Error("expected irreflexive comparison")
	}
	if !NaturalLess("frame9", "frame10") || NaturalLess("frame10", "frame9") {
		t.Error("expected numeric comparison of digit runs")
	}
	if !NaturalLess("99999999999999999999998", "99999999999999999999999") {
		t.Error("expected long digit runs to compare without overflow")
	}
}

func TestParseSort(t *testing.T) {
	for in, want := range map[string]SortMethod{"": SortName, "Name": SortName, "modtime": SortModTime, "mtime": SortModTime} {
		got, err := ParseSort(in)
		if err != nil || got != want {
			t.Errorf("ParseSort(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseSort("created"); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func setup() (*mocks.FileSystem, *mocks.ImageLoader) {
	fs := mocks.NewFileSystem()
	loader := mocks.NewImageLoader()
	dir := "photos"
	for _, name := range []string{"p10.jpg", "p2.jpg", "p1.png", "notes.txt", ".thumb.jpg"} {
		fs.WriteFile(filepath.Join(dir, name), []byte("x"))
	}
	fs.WriteFile(filepath.Join(dir, "sub", "p0.jpg"), []byte("x"))
	for _, name := range []string{"p10.jpg", "p2.jpg", "p1.png", ".thumb.jpg"} {
		loader.Add(filepath.Join(dir, name), 10, 10, 0)
	}
	loader.Add(filepath.Join(dir, "sub", "p0.jpg"), 10, 10, 0)
	return fs, loader
}

func TestFinder_ByName(t *testing.T) {
	fs, loader := setup()

	got, err := New(fs, loader, logger.NewNoop()).Find("photos", SortName)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	want := []string{
		filepath.Join("photos", "p1.png"),
		filepath.Join("photos", "p2.jpg"),
		filepath.Join("photos", "p10.jpg"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFinder_ByModTime(t *testing.T) {
	fs, loader := setup()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fs.SetModTime(filepath.Join("photos", "p10.jpg"), base)
	fs.SetModTime(filepath.Join("photos", "p2.jpg"), base.Add(time.Hour))
	fs.SetModTime(filepath.Join("photos", "p1.png"), base.Add(time.Hour))

	got, err := New(fs, loader, logger.NewNoop()).Find("photos", SortModTime)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	want := []string{
		filepath.Join("photos", "p10.jpg"),
		filepath.Join("photos", "p1.png"),
		filepath.Join("photos", "p2.jpg"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFinder_MissingFolder(t *testing.T) {
	_, err := New(mocks.NewFileSystem(), mocks.NewImageLoader(), logger.NewNoop()).Find("nowhere", SortName)
	if err == nil {
		t.Error("expected error for missing folder")
	}
}
