package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"recast/internal/arr"
	"recast/internal/config"
	"recast/internal/encoding"
	"recast/internal/logging"
	"recast/internal/media/ffprobe"
	"recast/internal/notifications"
	"recast/internal/preflight"
	"recast/internal/queue"
	"recast/internal/webhook"
	"recast/internal/workflow"
)

// LockFileName is created inside paths.log_dir while a daemon runs.
const LockFileName = "recast.lock"

// ErrLocked is returned when another process holds the daemon lock.
var ErrLocked = errors.New("another recast daemon instance is already running")

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *queue.Store
	hub       *logging.StreamHub
	notifier  notifications.Service
	worker    *workflow.Worker
	server    *webhook.Server
	logPath   string
	sessionID string

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	runErr    error
	retention *cron.Cron
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	SessionID    string
	Worker       workflow.StatusSummary
	WebhookAddr  string
	QueueDBPath  string
	LockFilePath string
}

// Options carries optional collaborators. Zero values are replaced with the
// production implementations built from config.
type Options struct {
	Hub      *logging.StreamHub
	Notifier notifications.Service
	// LogPath is the current run's log file; retention never prunes it.
	LogPath string
	// Worker overrides the worker built from config.
	Worker *workflow.Worker
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and queue store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Hub == nil {
		opts.Hub = logging.NewStreamHub(4096)
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewService(cfg)
	}

	lockPath := LockPath(cfg)
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		hub:       opts.Hub,
		notifier:  opts.Notifier,
		logPath:   opts.LogPath,
		sessionID: uuid.NewString(),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	d.worker = opts.Worker
	if d.worker == nil {
		d.worker = NewWorker(cfg, store, logger, d.notifier, d.hub.PublishLine)
	}
	if cfg.Webhook.Enabled {
		d.server = d.buildServer()
	}
	return d, nil
}

// NewWorker builds the production worker: ffprobe, the ffmpeg runner, the
// library rescanner and notifier. lines may be nil.
func NewWorker(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, lines workflow.LineSink) *workflow.Worker {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return workflow.NewWorker(cfg, workflow.Dependencies{
		Store:  store,
		Prober: ffprobe.CommandProber{Binary: cfg.FFprobeBinary()},
		Encoder: &encoding.Runner{
			LogDir: cfg.Paths.TempDir,
			Keep:   cfg.Workflow.EncoderLogKeep,
			Logger: logger,
		},
		Rescanner: arr.NewRescanner(cfg, logger, httpClient),
		Notifier:  notifier,
		Lines:     lines,
	}, logger)
}

func (d *Daemon) buildServer() *webhook.Server {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	opts := webhook.Options{
		Store:    d.store,
		Notifier: d.notifier,
		Hub:      d.hub,
		Wake:     d.worker.Wake,
		Status:   d.worker.Status,
	}
	// Leave the interfaces nil when a service is not configured.
	if radarr, err := arr.NewClient("radarr", d.cfg.Radarr, httpClient); err == nil {
		opts.Radarr = radarr
	}
	if sonarr, err := arr.NewClient("sonarr", d.cfg.Sonarr, httpClient); err == nil {
		opts.Sonarr = sonarr
	}
	return webhook.NewServer(d.cfg, opts, d.logger)
}

// LockPath returns the daemon lock file location for cfg.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, LockFileName)
}

// AcquireLock takes the daemon lock without blocking. Callers that run the
// worker outside the daemon hold it for the duration of their work.
func AcquireLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(LockPath(cfg))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock, nil
}

// IsRunning reports whether another process holds the daemon lock.
func IsRunning(cfg *config.Config) (bool, error) {
	lock := flock.New(LockPath(cfg))
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe daemon lock: %w", err)
	}
	if !ok {
		return true, nil
	}
	return false, lock.Unlock()
}

// Start acquires the daemon lock and launches the worker, the queue watcher,
// the webhook listener and the retention schedule.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}

	runCtx, cancel := context.WithCancel(ctx)
	release := func() {
		cancel()
		_ = d.lock.Unlock()
	}

	d.logPreflight(runCtx)

	targets := d.retentionTargets()
	logging.CleanupOldLogs(d.logger, d.cfg.Logging.RetentionDays, targets...)
	retention, err := logging.ScheduleRetention(d.logger, d.cfg.Logging.RetentionSchedule, d.cfg.Logging.RetentionDays, targets...)
	if err != nil {
		release()
		return fmt.Errorf("schedule log retention: %w", err)
	}

	if d.server != nil {
		if err := d.server.Start(runCtx); err != nil {
			<-retention.Stop().Done()
			release()
			return err
		}
	}

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return d.worker.Run(groupCtx)
	})
	if d.cfg.Workflow.WatchQueue {
		waker, err := workflow.NewWaker(d.store.Path(), d.logger)
		if err != nil {
			logging.WarnWithContext(d.logger, "queue watcher unavailable", "queue_watch_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check inotify limits"),
				logging.String(logging.FieldImpact, "new entries wait for the next poll"),
			)
		} else {
			group.Go(func() error {
				defer waker.Close()
				return waker.Run(groupCtx, d.worker.Wake)
			})
		}
	}

	done := make(chan struct{})
	go func() {
		err := group.Wait()
		d.mu.Lock()
		d.runErr = err
		d.mu.Unlock()
		close(done)
	}()

	d.cancel = cancel
	d.done = done
	d.retention = retention
	d.running.Store(true)
	d.logger.Info("recast daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("session_id", d.sessionID),
		logging.String("lock", d.lockPath),
		logging.Bool("webhook_enabled", d.server != nil),
		logging.Bool("watch_queue", d.cfg.Workflow.WatchQueue),
	)
	return nil
}

// Wait blocks until the background services exit and returns the first error.
func (d *Daemon) Wait() error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runErr
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return
	}
	cancel, done, retention := d.cancel, d.done, d.retention
	d.mu.Unlock()

	cancel()
	<-done
	if d.server != nil {
		d.server.Stop()
	}
	<-retention.Stop().Done()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.cancel = nil
	d.retention = nil
	d.running.Store(false)
	d.logger.Info("recast daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon and closes the queue store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		SessionID:    d.sessionID,
		Worker:       d.worker.Status(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if d.server != nil {
		status.WebhookAddr = d.server.Addr()
	}
	return status
}

func (d *Daemon) retentionTargets() []logging.RetentionTarget {
	var exclude []string
	if d.logPath != "" {
		exclude = append(exclude, d.logPath)
	}
	return []logging.RetentionTarget{
		{Dir: d.cfg.Paths.LogDir, Pattern: "recast-*.log", Exclude: exclude},
		{Dir: d.cfg.Paths.FailedLogDir, Pattern: "*.log"},
	}
}

func (d *Daemon) logPreflight(ctx context.Context) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run recast status for details"),
			logging.String(logging.FieldImpact, "transcodes may fail until resolved"),
		)
	}
}
