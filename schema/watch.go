package schema

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch loads the YAML schema at path, passes the result to fn, and
// reloads it every time the file is written, created or renamed into
// place, until ctx is done. fn receives the load error when the new file
// is invalid; the caller decides whether to keep the previous registry.
//
// The parent directory is watched rather than the file itself so that
// editors replacing the file atomically are followed.
func Watch(ctx context.Context, path string, fn func(*Registry, error), base ...Interface) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("schema: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("schema: watch %s: %w", path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("schema: watch %s: %w", path, err)
	}

	fn(LoadFile(abs, base...))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fn(LoadFile(abs, base...))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("schema: watch %s: %w", path, err))
		}
	}
}
