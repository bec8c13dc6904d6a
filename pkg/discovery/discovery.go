// Package discovery lists the photos in a folder in frame order.
package discovery

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/timelapse/pkg/ports"
)

// SortMethod selects the frame order.
type SortMethod string

const (
	// SortName orders by file name, comparing digit runs numerically.
	SortName SortMethod = "name"
	// SortModTime orders by modification time, ties by name.
	SortModTime SortMethod = "modtime"
)

// ParseSort parses a sort method name. Empty yields SortName.
func ParseSort(s string) (SortMethod, error) {
	switch SortMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortName:
		return SortName, nil
	case SortModTime, "mtime", "time":
		return SortModTime, nil
	default:
		return "", fmt.Errorf("unknown sort method %q", s)
	}
}

// Finder discovers images by content rather than extension.
type Finder struct {
	fs     ports.FileSystem
	loader ports.ImageLoader
	logger ports.Logger
}

// New creates a new Finder.
func New(fs ports.FileSystem, loader ports.ImageLoader, logger ports.Logger) *Finder {
	return &Finder{
		fs:     fs,
		loader: loader,
		logger: logger.WithComponent("discovery"),
	}
}

type candidate struct {
	path string
	name string
	info ports.FileInfo
}

// Find returns the readable images directly inside dir.
// Hidden files and subdirectories are ignored.
func (f *Finder) Find(dir string, method SortMethod) ([]string, error) {
	entries, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}

	var found []candidate
	for _, e := range entries {
		if e.IsDir || strings.HasPrefix(e.Name, ".") {
			continue
		}
		path := filepath.Join(dir, e.Name)
		if _, err := f.loader.DecodeConfig(path); err != nil {
			f.logger.Debug("Skipping %s: not a readable image", path)
			continue
		}
		found = append(found, candidate{path: path, name: e.Name, info: e})
	}

	switch method {
	case SortModTime:
		sort.SliceStable(found, func(i, j int) bool {
			a, b := found[i].info.ModTime, found[j].info.ModTime
			if !a.Equal(b) {
				return a.Before(b)
			}
			return NaturalLess(found[i].name, found[j].name)
		})
	default:
		sort.SliceStable(found, func(i, j int) bool {
			return NaturalLess(found[i].name, found[j].name)
		})
	}

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	f.logger.Info("Found %d images in %s", len(paths), dir)
	return paths, nil
}

// NaturalLess compares strings so that "img2" sorts before "img10".
// Digit runs compare by value, everything else byte-wise.
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			ra, rb := digitRun(a[i:]), digitRun(b[j:])
			na, nb := strings.TrimLeft(ra, "0"), strings.TrimLeft(rb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			if len(ra) != len(rb) {
				// equal values: fewer leading zeros first
				return len(ra) < len(rb)
			}
			i += len(ra)
			j += len(rb)
			continue
		}
		if a[i] != b[j] {
			return a[i] < b[j]
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func digitRun(s string) string {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
