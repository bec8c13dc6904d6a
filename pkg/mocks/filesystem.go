package mocks

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/user/timelapse/pkg/ports"
)

// FileSystem is a mock implementation of ports.FileSystem.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	dirs     map[string]bool
	modTimes map[string]time.Time

	ReadFileFunc  func(path string) ([]byte, error)
	WriteFileFunc func(path string, data []byte) error
	MkdirAllFunc  func(path string) error
	ExistsFunc    func(path string) (bool, error)
	RemoveFunc    func(path string) error
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		modTimes: make(map[string]time.Time),
	}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s: %w", path, fs.ErrNotExist)
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	if _, ok := m.modTimes[path]; !ok {
		m.modTimes[path] = time.Now()
	}
	return nil
}

func (m *FileSystem) Open(path string) (io.ReadCloser, error) {
	data, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *FileSystem) ReadDir(path string) ([]ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	clean := filepath.Clean(path)
	if !m.dirs[clean] && !m.hasChildLocked(clean) {
		return nil, fmt.Errorf("directory not found: %s: %w", path, fs.ErrNotExist)
	}

	var entries []ports.FileInfo
	for p, data := range m.files {
		if filepath.Dir(p) == clean {
			entries = append(entries, ports.FileInfo{
				Name:    filepath.Base(p),
				Size:    int64(len(data)),
				ModTime: m.modTimes[p],
			})
		}
	}
	for d := range m.dirs {
		if d != clean && filepath.Dir(d) == clean {
			entries = append(entries, ports.FileInfo{Name: filepath.Base(d), IsDir: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *FileSystem) hasChildLocked(dir string) bool {
	for p := range m.files {
		if filepath.Dir(p) == dir {
			return true
		}
	}
	return false
}

func (m *FileSystem) Stat(path string) (ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[path]; ok {
		return ports.FileInfo{Name: filepath.Base(path), Size: int64(len(data)), ModTime: m.modTimes[path]}, nil
	}
	if m.dirs[filepath.Clean(path)] {
		return ports.FileInfo{Name: filepath.Base(path), IsDir: true}, nil
	}
	return ports.FileInfo{}, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
}

func (m *FileSystem) MkdirAll(path string) error {
	if m.MkdirAllFunc != nil {
		return m.MkdirAllFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	if _, ok := m.dirs[filepath.Clean(path)]; ok {
		return true, nil
	}
	return false, nil
}

func (m *FileSystem) Remove(path string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok && !m.dirs[filepath.Clean(path)] {
		return fmt.Errorf("remove %s: %w", path, fs.ErrNotExist)
	}
	delete(m.files, path)
	delete(m.dirs, filepath.Clean(path))
	delete(m.modTimes, path)
	return nil
}

// SetModTime overrides the modification time reported for path.
func (m *FileSystem) SetModTime(path string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modTimes[path] = t
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	return data, ok
}

// GetAllFiles returns all files (for test verification).
func (m *FileSystem) GetAllFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]byte)
	for k, v := range m.files {
		result[k] = v
	}
	return result
}

var _ ports.FileSystem = (*FileSystem)(nil)
