package outputlock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTryLock(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "video.avi")
	l := New()

	unlock, ok, err := l.TryLock(out)
	if err != nil || !ok {
		t.Fatalf("expected lock, got ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(out + Suffix); err != nil {
		t.Errorf("expected lock file: %v", err)
	}

	// flock locks are per open file description, so a second handle conflicts.
	if _, ok, err := l.TryLock(out); err != nil || ok {
		t.Errorf("expected second lock to be refused, got ok=%v err=%v", ok, err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if _, err := os.Stat(out + Suffix); !os.IsNotExist(err) {
		t.Errorf("expected lock file to be removed, got %v", err)
	}

	unlock, ok, err = l.TryLock(out)
	if err != nil || !ok {
		t.Fatalf("expected lock after release, got ok=%v err=%v", ok, err)
	}
	unlock()
}
