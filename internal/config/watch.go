package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agbru/procwatch/internal/logging"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

// Watcher reloads the configuration file when it changes on disk.
type Watcher struct {
	path   string
	fw     *fsnotify.Watcher
	logger logging.Logger
}

// NewWatcher watches the directory holding path, so replacing the file
// (as most editors do) is seen as well as in-place writes.
func NewWatcher(path string, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Watcher{path: abs, fw: fw, logger: logger}, nil
}

// Run calls apply with the freshly decoded file after every change until
// ctx is done. Files that fail to parse are logged and skipped.
func (w *Watcher) Run(ctx context.Context, apply func(FileConfig)) error {
	defer w.fw.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			pending = time.After(reloadDebounce)
		case <-pending:
			pending = nil
			fc, err := LoadFile(w.path)
			if err != nil {
				w.logger.Error("config reload failed", err, logging.String("path", w.path))
				continue
			}
			apply(fc)
			w.logger.Info("config reloaded", logging.String("path", w.path))
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("config watcher error", err)
		}
	}
}
