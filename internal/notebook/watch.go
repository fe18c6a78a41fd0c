package notebook

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/laguz/internal/apperr"
)

// reconcileDelay debounces the full re-list after rename storms.
const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the notebook root and reconciles
// external edits with the in-memory cache until ctx is cancelled. New
// directories created at runtime are added to the watch list. Rename events
// drop the old path immediately and schedule a debounced refresh pass that
// re-lists the disk, since fsnotify only reports the old name.
func (nb *Notebook) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := nb.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	nb.logger.Info("watcher: started", slog.String("root", root))

	var refreshTimer *time.Timer
	var refreshCh <-chan time.Time

	scheduleRefresh := func() {
		if refreshTimer == nil {
			refreshTimer = time.NewTimer(reconcileDelay)
			refreshCh = refreshTimer.C
		} else {
			refreshTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if refreshTimer != nil {
				refreshTimer.Stop()
			}
			nb.logger.Info("watcher: stopped", slog.String("root", root))
			return nil

		case <-refreshCh:
			if err := nb.Refresh(ctx); err != nil {
				nb.logger.Warn("watcher: refresh failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories join the watch list; notes already inside
			// them are picked up by a refresh pass.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						nb.logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					scheduleRefresh()
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				nb.reloadFromDisk(ctx, rel)

			case ev.Op&fsnotify.Remove != 0:
				nb.dropNote(rel)
				nb.notify(EventDeleted, rel)
				nb.logger.Debug("watcher: deleted", slog.String("path", rel))

			case ev.Op&fsnotify.Rename != 0:
				nb.dropNote(rel)
				nb.notify(EventDeleted, rel)
				scheduleRefresh()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			nb.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// Refresh re-runs the full index rebuild and tells observers everything may
// have changed.
func (nb *Notebook) Refresh(ctx context.Context) error {
	if err := nb.InitData(ctx); err != nil {
		return err
	}
	nb.notify(EventRefreshed, ".")
	return nil
}

// reloadFromDisk re-reads one note and folds it into the cache, skipping
// events whose content matches the cached checksum (our own writes).
func (nb *Notebook) reloadFromDisk(ctx context.Context, rel string) {
	n, err := nb.GetNote(ctx, rel)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrNotMarkdown) {
			return
		}
		nb.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}

	if old := nb.findNote(rel); old != nil && old.Checksum == n.Checksum {
		return
	}
	nb.reconcileNote(n)
	nb.logger.Debug("watcher: reloaded", slog.String("path", rel))
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
