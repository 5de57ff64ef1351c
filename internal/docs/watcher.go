package docs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultSettleDelay = 100 * time.Millisecond

// Watcher re-extracts the library once after a settle delay and then on every
// change notification from the docs tree. Notifications are not debounced:
// each one triggers a full pass that renumbers ids from scratch.
type Watcher struct {
	lib     *Library
	settle  time.Duration
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	passes  atomic.Int64
	started atomic.Bool
	done    chan struct{}
	stopped sync.Once
}

func NewWatcher(lib *Library, settle time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if settle <= 0 {
		settle = defaultSettleDelay
	}
	return &Watcher{
		lib:    lib,
		settle: settle,
		fsw:    fsw,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Start adds watches for the docs tree and begins processing in the background.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.lib.Dir(), 0o755); err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.lib.Dir()); err != nil {
		return err
	}

	w.started.Store(true)
	go w.run(ctx)

	w.logger.Info("docs watcher started", "dir", w.lib.Dir(), "settle", w.settle)
	return nil
}

// Stop detaches the watcher and waits for the processing goroutine to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopped.Do(func() {
		err = w.fsw.Close()
	})
	if w.started.Load() {
		<-w.done
	}
	return err
}

// Passes reports how many extraction passes have completed.
func (w *Watcher) Passes() int64 {
	return w.passes.Load()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.settle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			w.extract("settle")

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addWatch(event.Name)
				}
			}
			w.extract(event.Op.String())

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("docs watcher error", "error", err)
		}
	}
}

func (w *Watcher) extract(trigger string) {
	if err := w.lib.Reload(); err != nil {
		w.logger.Error("docs re-extraction failed", "trigger", trigger, "error", err)
		return
	}
	w.passes.Add(1)
	w.logger.Debug("docs re-extracted", "trigger", trigger)
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		w.addWatch(path)
		return nil
	})
}

func (w *Watcher) addWatch(path string) {
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch directory", "path", path, "error", err)
	}
}
