package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// rotatingWriter appends to path and renames it to path.<timestamp> once the
// next write would push it past maxBytes, keeping the newest keep rotations.
type rotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	keep     int
	f        *os.File
	now      func() time.Time
}

func newRotatingWriter(path string, rotateMB, keep int) *rotatingWriter {
	if rotateMB < 1 {
		rotateMB = 10
	}
	if keep < 1 {
		keep = 5
	}
	return &rotatingWriter{
		path:     path,
		maxBytes: int64(rotateMB) * 1024 * 1024,
		keep:     keep,
		now:      time.Now,
	}
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.openLocked(); err != nil {
		return 0, err
	}

	if w.maxBytes > 0 {
		if fi, err := w.f.Stat(); err == nil && fi.Size() > 0 && fi.Size()+int64(len(p)) > w.maxBytes {
			if err := w.rotateLocked(); err != nil {
				return 0, err
			}
		}
	}
	return w.f.Write(p)
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *rotatingWriter) open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.openLocked()
}

func (w *rotatingWriter) openLocked() error {
	if w.f != nil {
		return nil
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

func (w *rotatingWriter) rotateLocked() error {
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}

	rotated := w.path + "." + w.now().Format("20060102-150405.000")
	if err := os.Rename(w.path, rotated); err != nil {
		return err
	}

	if err := w.openLocked(); err != nil {
		return err
	}
	w.cleanupLocked()
	return nil
}

// cleanupLocked removes rotations beyond keep, oldest first. Rotation names
// sort chronologically.
func (w *rotatingWriter) cleanupLocked() {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var rotated []string
	for _, e := range entries {
		name := e.Name()
		if name != base && strings.HasPrefix(name, base+".") {
			rotated = append(rotated, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(rotated)))

	for i := w.keep; i < len(rotated); i++ {
		_ = os.Remove(filepath.Join(dir, rotated[i]))
	}
}
