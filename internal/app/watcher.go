package app

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DocumentWatcher reports when the region file is modified by someone other
// than the session, so the UI can offer to reload before saving over it.
type DocumentWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	baseline time.Time
	onChange func() // Called from the watcher goroutine
	started  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDocumentWatcher watches the file at path. The containing directory is
// watched because saves replace the file by rename.
func NewDocumentWatcher(path string) (*DocumentWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &DocumentWatcher{
		path:    abs,
		watcher: fw,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	w.baseline = w.modTime()
	return w, nil
}

// OnChange sets the callback invoked after an external modification.
// The callback runs on a background goroutine.
func (w *DocumentWatcher) OnChange(callback func()) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Start begins watching in a background goroutine.
func (w *DocumentWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.watchLoop()
}

// Stop stops the watcher goroutine and releases the underlying watch.
func (w *DocumentWatcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	err := w.watcher.Close()
	if started {
		<-w.doneCh
	}
	return err
}

// Suppress runs fn, typically the session's own save, without reporting the
// resulting file change.
func (w *DocumentWatcher) Suppress(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := fn()
	w.baseline = w.modTime()
	return err
}

func (w *DocumentWatcher) watchLoop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if cb := w.checkForUpdate(); cb != nil {
				cb()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watch: %v", err)
		}
	}
}

// checkForUpdate returns the callback to run if the file changed since the
// last baseline, advancing the baseline.
func (w *DocumentWatcher) checkForUpdate() func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	mod := w.modTime()
	if mod.IsZero() || mod.Equal(w.baseline) {
		return nil
	}
	w.baseline = mod
	return w.onChange
}

func (w *DocumentWatcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
