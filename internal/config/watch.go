package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Reload carries a freshly parsed config or the error that prevented it.
type Reload struct {
	Config FileConfig
	Err    error
}

// Watch reloads the config file whenever it is written, created or renamed
// into place. The parent directory is watched so editors that replace the
// file atomically are seen. The returned channel is closed when ctx is done.
func Watch(ctx context.Context, path string) (<-chan Reload, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		if cerr := w.Close(); cerr != nil {
			// Best-effort watcher close.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan Reload, 1)
	target := filepath.Clean(path)
	go func() {
		defer close(out)
		defer func() {
			if cerr := w.Close(); cerr != nil {
				// Best-effort watcher close.
				_ = cerr
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				cfg, err := LoadConfig(path)
				select {
				case out <- Reload{Config: cfg, Err: err}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				select {
				case out <- Reload{Err: fmt.Errorf("config watcher: %w", err)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
