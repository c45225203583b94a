package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lkr/internal/parser"
	"github.com/starford/lkr/internal/repo"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// reconcileDelay debounces the reconciliation pass after renames.
const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven catalog change. path is
// relative to the repository root.
type EventCallback func(kind, path string)

// Watch observes the entries directory and keeps db current until ctx is
// cancelled, calling cb (if non-nil) after each successful change.
//
// Directories created at runtime (new id prefixes) are added to the watch
// list. Rename events trigger a debounced reconciliation that drops rows
// whose files are gone and indexes files not yet mirrored.
func Watch(ctx context.Context, db Catalog, r *repo.Repo, logger *slog.Logger, cb EventCallback) error {
	root := r.EntriesDir()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, r, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, abs); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", abs),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", abs))
					}
					indexNewDir(db, r, abs, logger, notify)
					continue
				}
			}

			if !strings.HasSuffix(abs, parser.Extension) {
				continue
			}
			rel := r.Rel(abs)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := r.Store().Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := indexFile(db, r, rel, data); idxErr != nil {
					// A file that stops parsing must not linger in listings.
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					if db.Delete(rel) == nil {
						notify(EventDeleted, rel)
					}
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.Delete(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(EventDeleted, rel)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new path
				// arrives as a Create if it stays inside a watched directory.
				if delErr := db.Delete(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					notify(EventDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile runs a Sync pass and reports every change it made as one
// aggregate event.
func reconcile(db Catalog, r *repo.Repo, logger *slog.Logger, notify EventCallback) {
	st, err := Sync(db, r, logger)
	if err != nil {
		logger.Warn("reconcile: sync failed", slog.String("error", err.Error()))
		return
	}
	if st.Indexed > 0 {
		notify(EventCreated, repo.EntriesDirName)
	}
	if st.Removed > 0 {
		notify(EventDeleted, repo.EntriesDirName)
	}
}

// indexNewDir indexes entry files already present in a newly created
// directory.
func indexNewDir(db Catalog, r *repo.Repo, dir string, logger *slog.Logger, notify EventCallback) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, parser.Extension) {
			return nil
		}
		rel := r.Rel(p)
		data, readErr := r.Store().Read(rel)
		if readErr != nil {
			return nil
		}
		if idxErr := indexFile(db, r, rel, data); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			notify(EventCreated, rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
