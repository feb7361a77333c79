package viewer

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/fmnote/internal/apperr"
)

// Watch watches the note's directory until ctx is cancelled and refreshes
// the note after each burst of events concerning it. Editors that save by
// writing a temporary file and renaming it over the note are covered by
// the Create event on the note path.
func (v *Viewer) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := v.root.Dir()
	if err := w.Add(dir); err != nil {
		return err
	}
	v.logger.Info("watcher: started", slog.String("dir", dir))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(v.debounce)
			fire = timer.C
		} else {
			timer.Reset(v.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			v.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			if err := v.Refresh(ctx); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					v.logger.Warn("watcher: note is gone", slog.String("path", v.Path()))
					continue
				}
				v.logger.Warn("watcher: refresh failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != v.Path() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			v.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
