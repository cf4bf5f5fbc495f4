package storage

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher event kinds.
const (
	EventCreated = "created"
	EventRemoved = "removed"
)

// EventCallback is called for each change to a file in the upload root.
// name is the flat file name relative to the root.
type EventCallback func(kind string, name string)

// Watch observes the upload root until ctx is cancelled and reports file
// creations and removals. Renames away from the root count as removals.
// Write's temp files are ignored.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if isTemp(name) {
				continue
			}

			var kind string
			switch {
			case ev.Op&fsnotify.Create != 0:
				kind = EventCreated
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				kind = EventRemoved
			default:
				continue
			}
			logger.Debug("watcher: event", slog.String("name", name), slog.String("op", kind))
			if cb != nil {
				cb(kind, name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
