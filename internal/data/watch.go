package data

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the registry's recipe file and reloads it on every write.
// onChange, if non-nil, is called after each successful reload. Watch runs
// until ctx is cancelled. It is a no-op for registries using the built-in
// recipe set.
//
// If a reload fails (e.g. invalid YAML), the error is logged and the previous
// recipe table remains active — onChange is not called.
func (r *Registry) Watch(ctx context.Context, onChange func()) error {
	if r.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(r.path); err != nil {
		return err
	}

	slog.Info("watching recipe file", "path", r.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so catch Create as well as Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := r.Reload(); err != nil {
				slog.Error("recipe reload failed, keeping previous set",
					"path", r.path, "err", err)
				continue
			}
			if onChange != nil {
				onChange()
			}

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(r.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("recipe watcher error", "err", err)
		}
	}
}
