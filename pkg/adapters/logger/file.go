package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/timelapse/pkg/ports"
)

// DefaultMaxBytes is the size at which a log file is rotated.
const DefaultMaxBytes = 5 * 1024 * 1024

// fileSink is the shared state behind every FileLogger of one file.
type fileSink struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
}

// FileLogger appends timestamped plain-text lines to a file.
// When the file would exceed its size limit it is renamed to path.1
// and a new file is started.
type FileLogger struct {
	level     ports.LogLevel
	component string
	sink      *fileSink
}

// NewFile opens (or creates) the log file at path.
// maxBytes <= 0 uses DefaultMaxBytes.
func NewFile(path string, level ports.LogLevel, maxBytes int64) (*FileLogger, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	s := &fileSink{path: path, maxBytes: maxBytes}
	if err := s.open(); err != nil {
		return nil, err
	}
	return &FileLogger{level: level, sink: s}, nil
}

func (s *fileSink) open() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	s.file = f
	s.size = info.Size()
	return nil
}

// rotate moves the current file to path.1 and starts a new one.
// If the rename fails, logging continues in the current file.
func (s *fileSink) rotate() error {
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return err
	}
	renameErr := os.Rename(s.path, s.path+".1")
	if renameErr != nil && os.IsNotExist(renameErr) {
		renameErr = nil
	}
	if err := s.open(); err != nil {
		return err
	}
	return renameErr
}

func (s *fileSink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	if s.size > 0 && s.size+int64(len(line)) > s.maxBytes {
		if err := s.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
			if s.file == nil {
				return
			}
		}
	}
	n, _ := s.file.WriteString(line)
	s.size += int64(n)
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

// Debug logs a debug message.
func (l *FileLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args...) }

// Info logs an informational message.
func (l *FileLogger) Info(msg string, args ...interface{}) { l.log(ports.LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *FileLogger) Warn(msg string, args ...interface{}) { l.log(ports.LevelWarn, msg, args...) }

// Error logs an error message.
func (l *FileLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args...) }

// WithComponent returns a new logger with the specified component name.
func (l *FileLogger) WithComponent(component string) ports.Logger {
	return &FileLogger{level: l.level, component: component, sink: l.sink}
}

func (l *FileLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if l.level > level {
		return
	}
	text := l10n.F(msg, args...)
	if l.component != "" {
		text = fmt.Sprintf("[%s] %s", l.component, text)
	}
	line := fmt.Sprintf("%s - %-5s - %s\n", time.Now().Format("2006-01-02 15:04:05"), level.String(), text)
	l.sink.write(line)
}

var _ ports.Logger = (*FileLogger)(nil)
