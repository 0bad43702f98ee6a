package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vesper3d/vesper/engine/core"
)

// Watcher observes a drop directory and reports model files that appear in
// it. Files present when the watcher starts are reported as well, so a
// pre-populated directory behaves the same as a live drop.
type Watcher struct {
	dir      string
	onModel  func(path string)
	fsnotify *fsnotify.Watcher

	mu       sync.Mutex
	reported map[string]bool
	done     chan struct{}
}

func NewWatcher(dir string, onModel func(path string)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		onModel:  onModel,
		fsnotify: fsWatch,
		reported: make(map[string]bool),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. A missing directory is created first.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.fsnotify.Add(w.dir); err != nil {
		return err
	}
	go w.run()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.report(filepath.Join(w.dir, e.Name()))
		}
	}
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.report(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				w.forget(e.Name)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())
		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *Watcher) report(path string) {
	if !IsModelFile(path) {
		return
	}
	w.mu.Lock()
	already := w.reported[path]
	w.reported[path] = true
	w.mu.Unlock()
	if !already {
		w.onModel(path)
	}
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.reported, path)
	w.mu.Unlock()
}

func (w *Watcher) Shutdown() {
	close(w.done)
}

// IsModelFile reports whether the path names an importable model.
func IsModelFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".obj")
}
