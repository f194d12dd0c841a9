package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Watcher polls a set of files and reports when any of them changes. The
// preview uses it to reload the room profile and template banks while the
// room layout is being tuned.
type Watcher struct {
	mu       sync.Mutex
	paths    []string
	baseline map[string]time.Time
	interval time.Duration
	stopCh   chan struct{}
	onChange func(path string)
}

// NewWatcher creates a watcher over paths. Symlinks are resolved so editors
// that replace files atomically are still noticed.
func NewWatcher(interval time.Duration, paths ...string) *Watcher {
	w := &Watcher{interval: interval, baseline: make(map[string]time.Time)}
	w.SetPaths(paths...)
	return w
}

// SetPaths replaces the watched paths. Paths already watched keep their
// baseline; new ones start from their current modification time.
func (w *Watcher) SetPaths(paths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	baseline := make(map[string]time.Time, len(paths))
	w.paths = w.paths[:0:0]
	for _, p := range paths {
		if p == "" {
			continue
		}
		if real, err := filepath.EvalSymlinks(p); err == nil {
			p = real
		}
		if _, dup := baseline[p]; dup {
			continue
		}
		t, ok := w.baseline[p]
		if !ok {
			t = modTime(p)
		}
		baseline[p] = t
		w.paths = append(w.paths, p)
	}
	w.baseline = baseline
}

// OnChange sets the callback invoked with the first changed path. It runs on
// the watcher goroutine.
func (w *Watcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Paths returns the watched paths.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.loop(stop)
}

// Stop ends polling.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *Watcher) loop(stop chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if path, ok := w.Check(); ok {
				w.mu.Lock()
				cb := w.onChange
				w.mu.Unlock()
				if cb != nil {
					cb(path)
				}
			}
		}
	}
}

// Check compares modification times against the baseline and moves the
// baseline forward. It returns the first changed path.
func (w *Watcher) Check() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := ""
	for _, p := range w.paths {
		t := modTime(p)
		if !t.Equal(w.baseline[p]) {
			w.baseline[p] = t
			if changed == "" {
				changed = p
			}
		}
	}
	return changed, changed != ""
}

// modTime returns the newest modification time under path: the file itself,
// or any direct child when path is a directory. Missing paths yield zero.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	newest := info.ModTime()
	if !info.IsDir() {
		return newest
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return newest
	}
	for _, e := range entries {
		if fi, err := e.Info(); err == nil && fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}
	return newest
}
