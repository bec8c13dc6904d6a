// Package outputlock guards output files with advisory lock files.
package outputlock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/user/timelapse/pkg/ports"
)

// Suffix is appended to an output path to form its lock file.
const Suffix = ".lock"

// Locker implements ports.OutputLocker with gofrs/flock.
type Locker struct{}

// New creates a new Locker.
func New() *Locker {
	return &Locker{}
}

// TryLock acquires path+Suffix without blocking.
func (l *Locker) TryLock(path string) (func() error, bool, error) {
	lockPath := path + Suffix
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, false, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func() error {
		if err := fl.Unlock(); err != nil {
			return err
		}
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return unlock, true, nil
}

// Ensure Locker implements ports.OutputLocker
var _ ports.OutputLocker = (*Locker)(nil)
