package watcher

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is the cache-side hook the watcher drives. Invalidation is
// replace-only: in-flight readers keep the index they already hold.
type Invalidator interface {
	InvalidateAll()
}

// Watcher monitors the policies directory and drops cached indexes when a
// policy document changes, so the next retrieval re-chunks and re-embeds.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
}

func New(extensions []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".md", ".txt"}
	}
	return &Watcher{watcher: w, extensions: extensions}, nil
}

// Watch starts monitoring dir until ctx is canceled.
func (w *Watcher) Watch(ctx context.Context, dir string, inv Invalidator) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				inv.InvalidateAll()
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) isWatchedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
