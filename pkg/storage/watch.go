package storage

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch warns when another process rewrites the vault file mid-session.
// The vault assumes a single writer; this makes a violated assumption
// visible instead of silently losing the other writer's data on the
// next save. ignore reports writes that are our own (the store's atomic
// rename fires a Create/Rename pair on the target path).
func (s *Store) Watch(ctx context.Context, logger *slog.Logger, ignore func() bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: atomic renames replace the
	// inode and would silently detach a file-level watch.
	if err := watcher.Add(filepath.Dir(s.Path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.Path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if ignore != nil && ignore() {
					continue
				}
				logger.Warn("vault file changed on disk outside this session; the next save will overwrite it",
					"path", s.Path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("vault watcher error", "error", err)
			}
		}
	}()

	return nil
}
