// Package watch re-runs the preparation pipeline when built assets or the
// injection template change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Rebuild is invoked after a debounced batch of file changes. A failing
// rebuild is logged and the watch loop keeps running; authoring mistakes
// should surface on every save, not kill the loop.
type Rebuild func() error

// Watcher observes a built-assets tree and triggers rebuilds.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	rebuild  Rebuild

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// New creates a watcher. Changes are batched for the debounce duration
// before a rebuild fires.
func New(debounce time.Duration, rebuild Rebuild, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger,
		debounce: debounce,
		rebuild:  rebuild,
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// Add watches root and all of its subdirectories.
func (w *Watcher) Add(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && base != "." {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				slog.String("path", path), slog.String("error", err.Error()))
		} else {
			w.logger.Debug("Watching directory", slog.String("path", path))
		}
		return nil
	})
}

// AddFile watches a single file's directory, for templates living outside
// the asset tree.
func (w *Watcher) AddFile(path string) error {
	return w.watcher.Add(filepath.Dir(path))
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	w.logger.Info("Watching for changes", slog.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Watch directories created after startup so nested changes keep
	// arriving.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory",
					slog.String("path", event.Name), slog.String("error", err.Error()))
			}
			return
		}
	}

	if event.Op.Has(fsnotify.Chmod) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	changed := len(w.pending)
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	if changed == 0 {
		return
	}

	w.logger.Info("Changes detected, rebuilding", slog.Int("paths", changed))
	if err := w.rebuild(); err != nil {
		w.logger.Error("Rebuild failed", slog.String("error", err.Error()))
	}
}
