package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recast/internal/encoding"
	"recast/internal/fileutil"
	"recast/internal/logging"
	"recast/internal/notifications"
	"recast/internal/queue"
)

func skip(class encoding.Class, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipPermanent, Class: class, Reason: reason}
}

func retry(class encoding.Class, reason string) Outcome {
	return Outcome{Kind: OutcomeRetryLater, Class: class, Reason: reason}
}

func (w *Worker) process(ctx context.Context, logger *slog.Logger, req *queue.Request) Outcome {
	source := req.Path

	if encoding.HasExtension(source, w.cfg.Transcoding.UnsupportedExtensions) {
		return skip(encoding.ClassStaleRequest, "unsupported container extension "+filepath.Ext(source))
	}
	if _, err := os.Stat(source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return skip(encoding.ClassStaleRequest, "source file no longer exists")
		}
		return retry(encoding.ClassTransientEnvironment, fmt.Sprintf("stat source: %v", err))
	}

	probe, err := w.deps.Prober.Probe(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return retry(encoding.ClassTransientEnvironment, "stopped during probe")
		}
		w.notify(ctx, logger, notifications.EventCorruptInput, notifications.Payload{
			"file":  source,
			"error": err,
		})
		return skip(encoding.ClassCorruptInput, err.Error())
	}

	plan := encoding.BuildPlan(*req, probe)
	if plan.LanguageFallback {
		logger.Info("no audio stream matches requested languages; keeping all audio",
			logging.String("languages", req.Languages),
			logging.String(logging.FieldEventType, "language_fallback"),
		)
	}

	tempOutput := filepath.Join(w.cfg.Paths.TempDir, encoding.OutputName(source))
	args := encoding.BuildCommand(encoding.Options{
		Binary:  w.cfg.FFmpegBinary(),
		HWAccel: w.cfg.Transcoding.HWAccel,
	}, *req, plan, tempOutput)

	logger.Info("transcode started",
		logging.String(logging.FieldEventType, "transcode_started"),
		logging.String("streams", plan.Summary()),
		logging.Bool("reencode_video", req.ReencodesVideo()),
		logging.Bool("reencode_audio", req.ReencodesAudio()),
	)
	logger.Debug("encoder command", logging.String("command", encoding.FormatCommand(args)))

	result, err := w.deps.Encoder.Encode(ctx, args, w.lineSink(req.ID))
	if err != nil {
		removeTemp(logger, tempOutput)
		if ctx.Err() != nil {
			return retry(encoding.ClassTransientEnvironment, "stopped before encoder start")
		}
		w.notify(ctx, logger, notifications.EventEnvironment, notifications.Payload{"error": err})
		return retry(encoding.ClassTransientEnvironment, err.Error())
	}
	if ctx.Err() != nil && !result.Succeeded() {
		removeTemp(logger, tempOutput)
		return retry(encoding.ClassTransientEnvironment, "encode interrupted by shutdown")
	}

	verdict, err := encoding.Classify(result, req.Path)
	if err != nil {
		logger.Warn("encoder log unreadable; treating failure as unclassified",
			logging.Error(err),
			logging.String(logging.FieldEventType, "classify_failed"),
			logging.String(logging.FieldErrorHint, "check temp directory permissions"),
			logging.String(logging.FieldImpact, "failure reason is not recorded"),
		)
		verdict = encoding.Classification{
			Signature: encoding.SignatureUnknown,
			Class:     encoding.ClassUnclassifiedFailure,
			Reason:    fmt.Sprintf("encoder exited with status %d", result.ExitCode),
		}
	}
	if verdict.Signature == encoding.SignatureNone {
		logger.Info("encoder finished",
			logging.String("duration", result.Duration.Round(time.Second).String()),
			logging.Int("output_lines", result.Lines),
		)
		return w.finalize(ctx, logger, req, tempOutput)
	}

	removeTemp(logger, tempOutput)
	switch {
	case verdict.Retry:
		if verdict.Signature == encoding.SignatureSharedLibrary {
			w.notify(ctx, logger, notifications.EventEnvironment, notifications.Payload{"error": verdict.Reason})
		}
		return retry(verdict.Class, verdict.Reason)
	case verdict.Class == encoding.ClassStaleRequest:
		return skip(verdict.Class, verdict.Reason)
	default:
		failedLog := w.preserveLog(logger, result.LogPath, source)
		w.notify(ctx, logger, notifications.EventTranscodeFailed, notifications.Payload{
			"file":  source,
			"error": verdict.Reason,
			"log":   failedLog,
		})
		outcome := skip(encoding.ClassUnclassifiedFailure, verdict.Reason)
		outcome.FailedLog = failedLog
		return outcome
	}
}

// finalize moves the encoded file next to the source and retires the source.
func (w *Worker) finalize(ctx context.Context, logger *slog.Logger, req *queue.Request, tempOutput string) Outcome {
	source := req.Path
	if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
		removeTemp(logger, tempOutput)
		return skip(encoding.ClassStaleRequest, "source removed during encode")
	}

	dest := encoding.OutputPath(source)
	originalSize := fileSize(source)
	outputSize := fileSize(tempOutput)

	if err := fileutil.MoveFile(tempOutput, dest); err != nil {
		removeTemp(logger, tempOutput)
		reason := fmt.Sprintf("move transcoded file: %v", err)
		w.notify(ctx, logger, notifications.EventTranscodeFailed, notifications.Payload{
			"file":  source,
			"error": reason,
		})
		return skip(encoding.ClassUnclassifiedFailure, reason)
	}

	if dest != source {
		if err := os.Remove(source); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "failed to remove original after transcode", "source_remove_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the original file manually"),
				logging.String(logging.FieldImpact, "library holds both versions"),
			)
		}
	}

	if req.ContentID != nil && w.deps.Rescanner != nil {
		w.deps.Rescanner.Rescan(context.WithoutCancel(ctx), *req.ContentID, dest)
	}

	w.notify(ctx, logger, notifications.EventTranscodeCompleted, notifications.Payload{
		"file":          filepath.Base(dest),
		"original_size": originalSize,
		"output_size":   outputSize,
	})
	return Outcome{Kind: OutcomeCompleted, Path: dest, Reason: "transcoded"}
}

// preserveLog copies the encoder log to the forensic directory and returns
// the copy's path, or "" when it could not be kept.
func (w *Worker) preserveLog(logger *slog.Logger, logPath, source string) string {
	dir := strings.TrimSpace(w.cfg.Paths.FailedLogDir)
	if logPath == "" || dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("failed log directory unavailable", logging.Error(err),
			logging.String(logging.FieldEventType, "failed_log_dir_unavailable"),
			logging.String(logging.FieldErrorHint, "check paths.failed_log_dir"),
			logging.String(logging.FieldImpact, "encoder log not preserved"),
		)
		return ""
	}
	dst := filepath.Join(dir, filepath.Base(source)+".log")
	if err := fileutil.CopyFile(logPath, dst); err != nil {
		logger.Warn("failed to preserve encoder log", logging.Error(err),
			logging.String(logging.FieldEventType, "failed_log_copy_failed"),
			logging.String(logging.FieldErrorHint, "check paths.failed_log_dir permissions"),
			logging.String(logging.FieldImpact, "encoder log not preserved"),
		)
		return ""
	}
	return dst
}

func (w *Worker) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := w.deps.Notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (w *Worker) lineSink(itemID int64) encoding.LineSink {
	if w.deps.Lines == nil {
		return nil
	}
	return func(line string) {
		w.deps.Lines(itemID, line)
	}
}

func removeTemp(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("temp output cleanup failed", logging.String(logging.FieldPath, path), logging.Error(err))
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
