package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"recast/internal/logging"
)

// Waker watches the queue database directory and fires when the database or
// its WAL is written, so entries added by another process start promptly.
type Waker struct {
	watcher *fsnotify.Watcher
	base    string
	logger  *slog.Logger
}

// NewWaker starts watching the directory holding dbPath.
func NewWaker(dbPath string, logger *slog.Logger) (*Waker, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create queue watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch queue directory: %w", err)
	}
	return &Waker{
		watcher: watcher,
		base:    filepath.Base(dbPath),
		logger:  logging.NewComponentLogger(logger, "queue-waker"),
	}, nil
}

// Run calls wake for every relevant write until ctx ends or the watcher is
// closed.
func (wk *Waker) Run(ctx context.Context, wake func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-wk.watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), wk.base) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				wake()
			}
		case err, ok := <-wk.watcher.Errors:
			if !ok {
				return nil
			}
			wk.logger.Debug("queue watcher error", logging.Error(err))
		}
	}
}

// Close stops the watcher.
func (wk *Waker) Close() error {
	return wk.watcher.Close()
}
