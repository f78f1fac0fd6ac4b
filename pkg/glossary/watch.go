package glossary

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch invalidates the cached glossary whenever the local source file is
// written or replaced. Remote sources are not watched. The watcher stops when
// ctx is done.
func (l *Loader) Watch(ctx context.Context) error {
	if l.remote() {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("glossary watcher: %w", err)
	}

	// Watch the directory: editors often replace the file instead of writing it.
	target := filepath.Clean(l.Source)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("glossary watcher: %w", err)
	}

	go func() {
		defer w.Close()
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
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					l.Reload()
					log.Info("glossary changed on disk", "source", l.Source, "op", ev.Op.String())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("glossary watcher error", "error", err)
			}
		}
	}()
	return nil
}
