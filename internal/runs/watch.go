package runs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchFixtures reloads the fixture file into s whenever it changes, until
// ctx is done. A file that fails to load leaves the catalog unchanged.
//
// The parent directory is watched so editors that replace the file on save
// are handled.
func (s *Service) WatchFixtures(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				list, err := LoadFixtures(abs)
				if err != nil {
					slog.WarnContext(ctx, "Failed to reload fixtures", "path", abs, "err", err)
					continue
				}
				s.Replace(list)
				slog.InfoContext(ctx, "Reloaded fixtures", "path", abs, "runs", len(list))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching fixtures", "err", err)
			}
		}
	}()
	return nil
}
