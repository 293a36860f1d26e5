package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"recast/internal/encoding"
	"recast/internal/logging"
)

// Run processes the queue until ctx is cancelled. Storage failures are
// logged and retried after the configured error interval.
func (w *Worker) Run(ctx context.Context) error {
	if w.deps.Store == nil || w.deps.Prober == nil || w.deps.Encoder == nil {
		return errors.New("worker dependencies not configured")
	}
	w.setRunning(true)
	defer w.setRunning(false)

	w.logger.Info("worker started",
		logging.String(logging.FieldEventType, "worker_started"),
		logging.Int("poll_interval_seconds", int(w.pollInterval/time.Second)),
	)
	defer w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))

	for {
		if ctx.Err() != nil {
			return nil
		}

		outcome, err := w.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.setLastError(err)
			logging.ErrorWithContext(w.logger, "queue access failed", "queue_access_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
			_ = w.sleep(ctx, w.retryInterval)
			continue
		}

		switch outcome.Kind {
		case OutcomeIdle:
			w.waitForWork(ctx)
		case OutcomeRetryLater:
			_ = w.sleep(ctx, w.retryInterval)
		default:
			_ = w.sleep(ctx, w.iterationDelay)
		}
	}
}

// RunOnce processes the oldest queue entry, if any. The returned error is
// reserved for queue storage failures; every other result is an Outcome.
func (w *Worker) RunOnce(ctx context.Context) (Outcome, error) {
	req, err := w.deps.Store.PeekOldest(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("peek queue: %w", err)
	}
	if req == nil {
		return Outcome{Kind: OutcomeIdle}, nil
	}

	w.setCurrent(req)
	defer w.setCurrent(nil)

	ctx = logging.WithItemID(ctx, req.ID)
	ctx = logging.WithAttemptID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, w.logger).With(logging.String(logging.FieldPath, req.Path))

	outcome := w.process(ctx, logger, req)
	outcome.ItemID = req.ID
	if outcome.Path == "" {
		outcome.Path = req.Path
	}
	w.logOutcome(logger, outcome)
	w.recordOutcome(outcome)

	if outcome.KeepsEntry() {
		return outcome, nil
	}
	if err := w.deps.Store.Remove(context.WithoutCancel(ctx), req.ID); err != nil {
		return outcome, fmt.Errorf("remove queue entry %d: %w", req.ID, err)
	}
	return outcome, nil
}

func (w *Worker) waitForWork(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-w.wake:
	case <-timer.C:
	}
}

func (w *Worker) logOutcome(logger *slog.Logger, outcome Outcome) {
	attrs := []logging.Attr{
		logging.String("outcome", string(outcome.Kind)),
		logging.String("reason", outcome.Reason),
	}
	if outcome.Class != encoding.ClassNone {
		attrs = append(attrs, logging.String("class", string(outcome.Class)))
	}

	switch {
	case outcome.Kind == OutcomeCompleted:
		logger.Info("transcode completed", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "transcode_completed"),
			logging.String("output", outcome.Path),
		)...)...)
	case outcome.Kind == OutcomeRetryLater:
		logging.WarnWithContext(logger, "transcode deferred; entry stays queued", "transcode_deferred", append(attrs,
			logging.String(logging.FieldErrorHint, "check encoder installation and host resources"),
			logging.String(logging.FieldImpact, "entry is retried after the error retry interval"),
		)...)
	case outcome.Class == encoding.ClassStaleRequest:
		logger.Debug("queue entry skipped", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "entry_skipped"),
		)...)...)
	default:
		if outcome.FailedLog != "" {
			attrs = append(attrs, logging.String("failed_log", outcome.FailedLog))
		}
		logging.ErrorWithContext(logger, "transcode failed; entry dropped", "transcode_failed", append(attrs,
			logging.String(logging.FieldErrorHint, "inspect the preserved encoder log and re-queue manually"),
		)...)
	}
}
