package problem

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"contenttest/internal/bootstrap/config"
	"contenttest/internal/bootstrap/logging"
	"contenttest/internal/errs"
)

const defaultWatchDebounce = 300 * time.Millisecond

// Watcher reports problem locations whose XML changed on disk. Changes are
// batched per debounce window so an editor's save burst yields one callback.
type Watcher struct {
	dir      string
	debounce time.Duration
}

func NewWatcher(cfg config.ProblemsConfig) *Watcher {
	debounce := cfg.WatchDebounce
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	return &Watcher{dir: cfg.Dir, debounce: debounce}
}

// Watch blocks until ctx is done, calling onChange once per changed location
// per window, in sorted order.
func (w *Watcher) Watch(ctx context.Context, onChange func(ctx context.Context, location string)) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if onChange == nil {
		return errors.New("change callback is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(errs.WithStack(err), "create fs watcher")
	}
	defer watcher.Close()

	if err := addTree(watcher, w.dir); err != nil {
		return errs.Wrapf(err, "watch %q", w.dir)
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "infrastructure.problem.watcher"))
	logging.Info(logCtx, "watching problems", slog.String("dir", w.dir), slog.Duration("debounce", w.debounce))

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logging.Warn(logCtx, "watch new directory failed", slog.String("path", event.Name), slog.Any("err", errs.Loggable(err)))
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if location, ok := w.locationFor(event.Name); ok {
				pending[location] = struct{}{}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn(logCtx, "fs watcher error", slog.Any("err", errs.Loggable(err)))
		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			locations := make([]string, 0, len(pending))
			for location := range pending {
				locations = append(locations, location)
			}
			clear(pending)
			sort.Strings(locations)
			for _, location := range locations {
				logging.Debug(logCtx, "problem changed", slog.String("location", location))
				onChange(ctx, location)
			}
		}
	}
}

// locationFor maps <dir>/<location>.xml back to its location.
func (w *Watcher) locationFor(path string) (string, bool) {
	if !strings.EqualFold(filepath.Ext(path), ".xml") {
		return "", false
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))), true
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
