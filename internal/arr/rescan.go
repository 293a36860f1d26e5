package arr

import (
	"context"
	"log/slog"
	"time"

	"recast/internal/config"
	"recast/internal/logging"
)

// MovieRescanner is implemented by the Radarr client.
type MovieRescanner interface {
	RescanMovie(ctx context.Context, id int64) error
}

// SeriesRescanner is implemented by the Sonarr client.
type SeriesRescanner interface {
	RescanSeries(ctx context.Context, id int64) error
}

// Rescanner notifies the service owning a path that its file changed.
type Rescanner struct {
	Radarr     MovieRescanner
	RadarrRoot string
	// RadarrDelay separates the two movie rescans. Radarr only picks up the
	// renamed file reliably once the first rescan has finished.
	RadarrDelay time.Duration
	Sonarr      SeriesRescanner
	SonarrRoot  string
	Logger      *slog.Logger
	// Sleep waits between Radarr rescans; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRescanner wires clients for whichever services are configured.
func NewRescanner(cfg *config.Config, logger *slog.Logger, client HTTPDoer) *Rescanner {
	r := &Rescanner{
		RadarrRoot:  cfg.Radarr.RootFolder,
		RadarrDelay: time.Duration(cfg.Radarr.RescanDelaySeconds) * time.Second,
		SonarrRoot:  cfg.Sonarr.RootFolder,
		Logger:      logger,
	}
	if radarr, err := NewClient("radarr", cfg.Radarr, client); err == nil {
		r.Radarr = radarr
	}
	if sonarr, err := NewClient("sonarr", cfg.Sonarr, client); err == nil {
		r.Sonarr = sonarr
	}
	return r
}

// Rescan routes by root folder: Radarr paths get two movie rescans, Sonarr
// paths one series rescan. Failures are logged and never returned.
func (r *Rescanner) Rescan(ctx context.Context, contentID int64, path string) {
	if r == nil {
		return
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldPath, path), logging.Int64("content_id", contentID))

	switch {
	case r.Radarr != nil && Within(path, r.RadarrRoot):
		if err := r.Radarr.RescanMovie(ctx, contentID); err != nil {
			r.warn(logger, "radarr", err)
			return
		}
		if err := r.sleep(ctx, r.RadarrDelay); err != nil {
			return
		}
		if err := r.Radarr.RescanMovie(ctx, contentID); err != nil {
			r.warn(logger, "radarr", err)
			return
		}
		logger.Info("radarr rescan requested", logging.String(logging.FieldEventType, "rescan_requested"))
	case r.Sonarr != nil && Within(path, r.SonarrRoot):
		if err := r.Sonarr.RescanSeries(ctx, contentID); err != nil {
			r.warn(logger, "sonarr", err)
			return
		}
		logger.Info("sonarr rescan requested", logging.String(logging.FieldEventType, "rescan_requested"))
	default:
		logger.Debug("no library service owns path; rescan skipped")
	}
}

func (r *Rescanner) warn(logger *slog.Logger, service string, err error) {
	logging.WarnWithContext(logger, "library rescan failed", "rescan_failed",
		logging.String("service", service),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the service url and api key"),
		logging.String(logging.FieldImpact, "library keeps showing the previous file until its next scan"),
	)
}

func (r *Rescanner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
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
