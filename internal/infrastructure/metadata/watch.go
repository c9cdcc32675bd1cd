package metadata

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange after the metadata file is written, created or replaced.
// The parent directory is watched so editors that swap files in place are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(context.Context)
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	pending bool
}

// NewWatcher creates a watcher for path. A non-positive debounce uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, onChange func(context.Context), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is done or the underlying watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	w.logger.Info("watching agenda metadata", "path", w.path, "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("metadata watcher error", "err", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
	w.logger.Debug("agenda metadata changed", "op", ev.Op.String())
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	fire := w.pending
	w.pending = false
	w.mu.Unlock()
	if fire && w.onChange != nil {
		w.onChange(ctx)
	}
}
