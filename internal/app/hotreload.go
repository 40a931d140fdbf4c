package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// HotReloader watches a project file and invokes a callback after it changes.
// The parent directory is watched so editors that save by rename are seen.
type HotReloader struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onChange func(path string)
}

// NewHotReloader starts watching path. Call Close when done.
func NewHotReloader(path string, debounce time.Duration) (*HotReloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &HotReloader{path: abs, debounce: debounce, watcher: w}, nil
}

// OnChange sets the callback. It runs on the goroutine calling Run.
func (h *HotReloader) OnChange(callback func(path string)) {
	h.onChange = callback
}

// Path returns the watched file.
func (h *HotReloader) Path() string {
	return h.path
}

// Run delivers change notifications until ctx is done or the watcher is
// closed.
func (h *HotReloader) Run(ctx context.Context) error {
	timer := time.NewTimer(h.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != h.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(h.debounce)
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch %s: %v", h.path, err)
		case <-timer.C:
			if h.onChange != nil {
				h.onChange(h.path)
			}
		}
	}
}

// Close stops watching.
func (h *HotReloader) Close() error {
	return h.watcher.Close()
}
