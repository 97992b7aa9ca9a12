// Package watch re-imports a plan file whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

// ChangeFunc is called with the watched path once a burst of events settles.
type ChangeFunc func(ctx context.Context, path string) error

// Watcher debounces file events on a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange ChangeFunc
	ready    func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must settle before onChange runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReady installs a hook called once the watch is registered.
func WithReady(fn func()) Option {
	return func(w *Watcher) { w.ready = fn }
}

// New creates a Watcher for path.
func New(path string, onChange ChangeFunc, opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: constants.WatchDebounce,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. The parent directory is watched so that
// editors replacing the file through a rename are still seen. Errors from
// onChange are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("path", w.path).Logger()

	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	logger.Info().Dur("debounce", w.debounce).Msg("watching plan file")
	if w.ready != nil {
		w.ready()
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("watch stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug().Str("op", event.Op.String()).Msg("plan file event")
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")

		case <-timer.C:
			if err := w.onChange(ctx, w.path); err != nil {
				logger.Warn().Err(err).Msg("plan re-import failed")
				continue
			}
			logger.Info().Msg("plan re-imported")
		}
	}
}
