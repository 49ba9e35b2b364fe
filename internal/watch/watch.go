// Package watch rebuilds the report whenever the snapshot file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/logging"
)

// DefaultDebounce batches the burst of events a single save produces.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called once per settled change.
type Handler func(ctx context.Context) error

// Watcher watches one file. The parent directory is watched so that
// atomic replacements (write temp, rename over) are seen as well.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  Handler
	logger   *zap.Logger
	ready    chan struct{}
}

// New creates a watcher for path.
func New(path string, debounce time.Duration, handler Handler, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		handler:  handler,
		logger:   logging.OrNop(logger),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watch is registered.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is cancelled. Handler errors are logged and do not
// stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	close(w.ready)
	w.logger.Info("watching snapshot", zap.String("path", w.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("snapshot event", zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := w.handler(ctx); err != nil {
				w.logger.Warn("rebuild failed", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)
}
