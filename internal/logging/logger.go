package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"recast/internal/config"
)

// LogFileName is the daemon log file created inside paths.log_dir.
const LogFileName = "recast.log"

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	// Writer receives output instead of OutputPaths when set.
	Writer      io.Writer
	Development bool
	// Stream receives a copy of every record when set.
	Stream *StreamHub
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter := opts.Writer
	if outputWriter == nil {
		paths := opts.OutputPaths
		if len(paths) == 0 {
			paths = []string{"stdout"}
		}
		writer, err := openWriters(paths)
		if err != nil {
			return nil, err
		}
		outputWriter = writer
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(outputWriter, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(newStreamHandler(handler, opts.Stream)), nil
}

// NewFromConfig creates a logger whose unset options fall back to the
// logging section of cfg. Without explicit output paths it writes to stdout
// and LogFileName inside paths.log_dir.
func NewFromConfig(cfg *config.Config, opts Options) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if strings.TrimSpace(opts.Level) == "" {
		opts.Level = cfg.Logging.Level
	}
	if strings.TrimSpace(opts.Format) == "" {
		opts.Format = cfg.Logging.Format
	}
	if opts.Writer == nil && len(opts.OutputPaths) == 0 {
		opts.OutputPaths = []string{"stdout"}
		if cfg.Paths.LogDir != "" {
			if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			opts.OutputPaths = append(opts.OutputPaths, filepath.Join(cfg.Paths.LogDir, LogFileName))
		}
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openWriters(outputPaths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ensure log dir for %s: %w", trimmed, err)
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
