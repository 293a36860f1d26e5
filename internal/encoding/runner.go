package encoding

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"recast/internal/logging"
)

const (
	// DefaultLogName is the rotating encoder log inside the temp directory.
	DefaultLogName = "transcode.log"
	// stopGrace bounds how long ffmpeg may take to exit after SIGTERM.
	stopGrace  = 30 * time.Second
	maxLineLen = 1 << 20
)

// LineSink receives each line of encoder output.
type LineSink func(line string)

// RunResult describes how one encoder process ended.
type RunResult struct {
	ExitCode int
	Signaled bool
	Signal   string
	LogPath  string
	Lines    int
	Duration time.Duration
}

// Succeeded reports a zero exit status.
func (r RunResult) Succeeded() bool {
	return r.ExitCode == 0 && !r.Signaled
}

// Encoder runs an encoder command line.
type Encoder interface {
	Encode(ctx context.Context, args []string, sink LineSink) (RunResult, error)
}

// Runner executes ffmpeg, writing combined stdout and stderr line by line to
// a log file that is rotated before every run.
type Runner struct {
	LogDir  string
	LogName string
	// Keep is the number of previous logs retained as <name>.1 .. <name>.N.
	Keep   int
	Logger *slog.Logger
}

// LogPath returns the current log file location.
func (r *Runner) LogPath() string {
	name := r.LogName
	if name == "" {
		name = DefaultLogName
	}
	return filepath.Join(r.LogDir, name)
}

// Encode runs args[0] with args[1:]. A non-zero exit is reported in the
// result, not as an error; errors mean the process could not be run at all.
// Cancelling ctx sends SIGTERM so ffmpeg can finish its container cleanly.
func (r *Runner) Encode(ctx context.Context, args []string, sink LineSink) (RunResult, error) {
	if len(args) == 0 {
		return RunResult{}, errors.New("encode: empty command")
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	logPath := r.LogPath()
	if err := os.MkdirAll(r.LogDir, 0o755); err != nil {
		return RunResult{}, fmt.Errorf("ensure encoder log dir: %w", err)
	}
	if err := RotateLogs(logPath, r.Keep); err != nil {
		logging.WarnWithContext(logger, "encoder log rotation failed; overwriting", "encoder_log_rotate_failed",
			logging.String(logging.FieldPath, logPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "previous encoder log lost"),
		)
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("create encoder log: %w", err)
	}
	defer logFile.Close()

	reader, writer, err := os.Pipe()
	if err != nil {
		return RunResult{}, fmt.Errorf("encoder output pipe: %w", err)
	}
	defer reader.Close()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGrace

	started := time.Now()
	if err := cmd.Start(); err != nil {
		writer.Close()
		return RunResult{LogPath: logPath}, fmt.Errorf("start encoder: %w", err)
	}
	writer.Close()

	result := RunResult{LogPath: logPath}
	out := bufio.NewWriter(logFile)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)
	scanner.Split(scanOutputLines)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		result.Lines++
		out.WriteString(line)
		out.WriteByte('\n')
		if sink != nil {
			sink(line)
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		logger.Debug("encoder output scan stopped", logging.Error(scanErr))
	}
	if err := out.Flush(); err != nil {
		logger.Debug("encoder log flush failed", logging.Error(err))
	}

	waitErr := cmd.Wait()
	result.Duration = time.Since(started)
	if waitErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("wait for encoder: %w", waitErr)
	}
	result.ExitCode = exitErr.ExitCode()
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		result.Signaled = true
		result.Signal = status.Signal().String()
	}
	return result, nil
}

// scanOutputLines splits on \n and on the bare \r ffmpeg uses for progress.
func scanOutputLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, bytes.TrimSpace(data[:i]), nil
	}
	if atEOF {
		return len(data), bytes.TrimSpace(data), nil
	}
	return 0, nil, nil
}

// RotateLogs shifts path to path.1, path.1 to path.2 and so on, keeping at
// most keep previous files. keep <= 0 removes the previous log instead.
func RotateLogs(path string, keep int) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if keep <= 0 {
		return os.Remove(path)
	}
	oldest := path + "." + strconv.Itoa(keep)
	if err := os.Remove(oldest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for i := keep - 1; i >= 1; i-- {
		from := path + "." + strconv.Itoa(i)
		if err := os.Rename(from, path+"."+strconv.Itoa(i+1)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.Rename(path, path+".1")
}
