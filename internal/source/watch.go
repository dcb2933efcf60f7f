package source

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"iviweb/internal/system"
)

// Watcher tracks local source files and counts how often each changed.
// Sessions compare the version they loaded against Version to decide on a
// reload.
type Watcher struct {
	fw *fsnotify.Watcher

	mu       sync.Mutex
	dirs     map[string]int
	versions map[string]uint64
	done     chan struct{}
}

// NewWatcher starts a watcher. Close stops it.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		dirs:     map[string]int{},
		versions: map[string]uint64{},
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch starts tracking path. The parent directory is watched so files
// replaced by editors are still seen. Watching a path twice is a no-op.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.versions[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.versions[abs] = 0
	system.Logger.Debug("watching source", "path", abs)
	return nil
}

// Version returns how many changes were seen for path since it was first
// watched. Unwatched paths report 0.
func (w *Watcher) Version(path string) uint64 {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.versions[abs]
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			if _, ok := w.versions[abs]; ok {
				w.versions[abs]++
				system.Logger.Debug("source changed", "path", abs, "op", ev.Op.String())
			}
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			system.Logger.Warn("watcher error", "err", err)
		}
	}
}
