package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"recast/internal/config"
	"recast/internal/encoding"
	"recast/internal/logging"
	"recast/internal/media/ffprobe"
	"recast/internal/notifications"
	"recast/internal/queue"
)

// Store is the queue surface the worker needs.
type Store interface {
	PeekOldest(ctx context.Context) (*queue.Request, error)
	Remove(ctx context.Context, id int64) error
}

// Rescanner tells the library service that a file was replaced.
type Rescanner interface {
	Rescan(ctx context.Context, contentID int64, path string)
}

// LineSink receives encoder output tagged with the queue entry id.
type LineSink func(itemID int64, line string)

// Dependencies groups the worker's collaborators. Nil Rescanner and Notifier
// disable those side effects.
type Dependencies struct {
	Store     Store
	Prober    ffprobe.Prober
	Encoder   encoding.Encoder
	Rescanner Rescanner
	Notifier  notifications.Service
	Lines     LineSink
}

// Worker processes the transcode queue one entry at a time.
type Worker struct {
	cfg    *config.Config
	deps   Dependencies
	logger *slog.Logger

	pollInterval   time.Duration
	iterationDelay time.Duration
	retryInterval  time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	wake  chan struct{}

	mu      sync.RWMutex
	running bool
	current *queue.Request
	last    *Outcome
	lastErr error
	counts  map[OutcomeKind]int
}

// Option configures optional Worker behavior.
type Option func(*Worker)

// WithSleep replaces the wait used between iterations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Worker) {
		w.sleep = sleep
	}
}

// WithClock replaces the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

// NewWorker constructs a worker over deps.
func NewWorker(cfg *config.Config, deps Dependencies, logger *slog.Logger, opts ...Option) *Worker {
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewNoop()
	}
	w := &Worker{
		cfg:            cfg,
		deps:           deps,
		logger:         logging.NewComponentLogger(logger, "worker"),
		pollInterval:   time.Duration(cfg.Workflow.PollInterval) * time.Second,
		iterationDelay: time.Duration(cfg.Workflow.IterationDelay) * time.Second,
		retryInterval:  time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		sleep:          sleepContext,
		now:            time.Now,
		wake:           make(chan struct{}, 1),
		counts:         make(map[OutcomeKind]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wake cuts the current idle wait short. It never blocks.
func (w *Worker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
