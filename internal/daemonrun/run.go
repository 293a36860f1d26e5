package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"recast/internal/config"
	"recast/internal/daemon"
	"recast/internal/deps"
	"recast/internal/logging"
	"recast/internal/queue"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the recast daemon and blocks until SIGINT/SIGTERM or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("recast-%s.log", runID))
	logHub := logging.NewStreamHub(4096)

	logger, err := logging.NewFromConfig(cfg, logging.Options{
		Level:       opts.LogLevel,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
		Stream:      logHub,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logging.LogFileName, err)
	}
	logDependencySnapshot(signalCtx, logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "recast.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(signalCtx, cfg.Paths.QueueDB)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}

	d, err := daemon.New(cfg, store, logger, daemon.Options{Hub: logHub, LogPath: logPath})
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for another running daemon and queue database access"),
		)
		return err
	}

	runErr := d.Wait()
	if runErr != nil {
		logging.ErrorWithContext(logger, "daemon stopped with error", "daemon_failed", logging.Error(runErr))
	}
	logger.Info("recast daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return runErr
}

// ensureCurrentLogPointer points <log_dir>/recast.log at this run's log file.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logging.LogFileName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("radarr_configured", cfg.Radarr.Enabled()),
		logging.Bool("sonarr_configured", cfg.Sonarr.Enabled()),
		logging.Int("profiles", len(cfg.Transcoding.Profiles)),
		logging.String("hwaccel", cfg.Transcoding.HWAccel),
	}
	for _, status := range deps.CheckWithVersions(ctx, deps.Requirements(cfg)) {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
		if status.Version != "" {
			attrs = append(attrs, logging.String(key+"_version", status.Version))
		}
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
