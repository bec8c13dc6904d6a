package ports

import (
	"io"
	"time"
)

// FileInfo describes a directory entry.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// Open opens a file for streaming reads.
	Open(path string) (io.ReadCloser, error)

	// ReadDir lists the entries of a directory.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns information about a single path.
	Stat(path string) (FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
