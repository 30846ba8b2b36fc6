// Package watcher reports changes to the configuration document.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
)

// Watcher emits a notification whenever the watched file may have changed.
// Notifications coalesce: a burst of writes yields at least one, possibly
// fewer than the number of writes.
type Watcher struct {
	path    string
	dir     string
	fsw     *fsnotify.Watcher
	changes chan struct{}
	logger  *slog.Logger
}

// New starts watching path. The file does not have to exist yet.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		dir:     filepath.Dir(abs),
		fsw:     fsw,
		changes: make(chan struct{}, 1),
		logger:  slog.With("component", "watcher", "path", abs),
	}
	if err := w.arm(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Changes returns the notification channel.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run forwards file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			// Atomic replace drops the watch on the old inode.
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Create) {
				if err := w.arm(); err != nil {
					w.logger.Warn("re-arming watch failed", "error", err)
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			w.notify()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
			if err := w.arm(); err != nil {
				w.logger.Warn("re-arming watch failed", "error", err)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// arm watches the file and its directory. The directory watch catches the
// file reappearing under the same name after a rename over it.
func (w *Watcher) arm() error {
	list := w.fsw.WatchList()
	if !slices.Contains(list, w.dir) {
		if err := w.fsw.Add(w.dir); err != nil {
			return fmt.Errorf("watching %s: %w", w.dir, err)
		}
	}
	if !slices.Contains(list, w.path) {
		// Missing file: the directory watch reports its creation.
		if err := w.fsw.Add(w.path); err == nil {
			w.logger.Debug("watch armed")
		}
	}
	return nil
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
