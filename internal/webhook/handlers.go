package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recast/internal/logging"
	"recast/internal/notifications"
	"recast/internal/queue"
	"recast/internal/workflow"
)

// handleWebhook answers 400 only for bodies without an eventType. Handler
// failures are logged and still answered with 200 so the sender does not
// mark the connection as broken.
func (s *Server) handleWebhook(c *gin.Context) {
	var evt event
	if err := c.ShouldBindJSON(&evt); err != nil || strings.TrimSpace(evt.EventType) == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	logger := s.logger.With(logging.String(logging.FieldEventType, "webhook_"+strings.ToLower(evt.EventType)))
	if err := s.dispatch(c.Request.Context(), evt); err != nil {
		logging.WarnWithContext(logger, "webhook handling failed", "webhook_failed",
			logging.String("webhook_event", evt.EventType),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check radarr/sonarr settings and transcoding profiles"),
			logging.String(logging.FieldImpact, "download was not queued for transcoding"),
		)
	}
	c.Status(http.StatusOK)
}

func (s *Server) dispatch(ctx context.Context, evt event) error {
	switch evt.EventType {
	case eventGrab:
		s.notify(ctx, notifications.EventGrabbed, notifications.Payload{"title": evt.grabTitle()})
		return nil
	case eventDownload:
		return s.onDownload(ctx, evt)
	default:
		s.logger.Debug("ignoring webhook event", logging.String("webhook_event", evt.EventType))
		return nil
	}
}

func (s *Server) onDownload(ctx context.Context, evt event) error {
	var (
		path        string
		profileName string
		contentID   int64
		notice      notifications.Event
	)

	switch {
	case evt.Movie != nil && evt.MovieFile != nil:
		if s.opts.Radarr == nil {
			return errors.New("movie download received but radarr is not configured")
		}
		movie, err := s.opts.Radarr.Movie(ctx, evt.Movie.ID)
		if err != nil {
			return fmt.Errorf("lookup movie %d: %w", evt.Movie.ID, err)
		}
		profileName, err = s.opts.Radarr.QualityProfileName(ctx, movie.QualityProfileID)
		if err != nil {
			return err
		}
		path = filepath.Join(evt.Movie.FolderPath, evt.MovieFile.RelativePath)
		contentID = movie.ID
		notice = notifications.EventMovieDownloaded
	case evt.Series != nil && evt.EpisodeFile != nil:
		if s.opts.Sonarr == nil {
			return errors.New("episode download received but sonarr is not configured")
		}
		series, err := s.opts.Sonarr.Series(ctx, evt.Series.ID)
		if err != nil {
			return fmt.Errorf("lookup series %d: %w", evt.Series.ID, err)
		}
		profileName, err = s.opts.Sonarr.QualityProfileName(ctx, series.QualityProfileID)
		if err != nil {
			return err
		}
		path = filepath.Join(evt.Series.Path, evt.EpisodeFile.RelativePath)
		contentID = series.ID
		notice = notifications.EventEpisodeDownloaded
	default:
		return errors.New("unknown download payload")
	}

	if !evt.IsUpgrade {
		s.notify(ctx, notice, notifications.Payload{"title": filepath.Base(path)})
	}

	profile, ok := s.cfg.Profile(profileName)
	if !ok {
		s.logger.Info("no transcoding profile for quality profile; not queued",
			logging.String("quality_profile", profileName),
			logging.String(logging.FieldPath, path),
		)
		return nil
	}

	local := s.mapper.Map(path)
	if local != path {
		s.logger.Debug("applied remote path mapping", logging.String("remote", path), logging.String("local", local))
	}

	added, err := s.opts.Store.Add(ctx, queue.Request{
		Path:        local,
		Languages:   profile.Languages,
		VideoParams: profile.VideoParams,
		AudioParams: profile.AudioParams,
		ContentID:   queue.ContentIDPtr(contentID),
	})
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", local, err)
	}
	if s.opts.Wake != nil {
		s.opts.Wake()
	}
	s.logger.Info("download queued for transcoding",
		logging.Int64(logging.FieldItemID, added.ID),
		logging.String(logging.FieldPath, local),
		logging.String("quality_profile", profileName),
		logging.String(logging.FieldEventType, "download_queued"),
	)
	return nil
}

func (s *Server) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := s.opts.Notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		s.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

type queueItem struct {
	ID          int64     `json:"id"`
	Path        string    `json:"path"`
	Languages   string    `json:"languages,omitempty"`
	VideoParams string    `json:"video_params,omitempty"`
	AudioParams string    `json:"audio_params,omitempty"`
	ContentID   *int64    `json:"content_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleQueue(c *gin.Context) {
	items, err := s.opts.Store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]queueItem, 0, len(items))
	for _, item := range items {
		out = append(out, queueItem{
			ID:          item.ID,
			Path:        item.Path,
			Languages:   item.Languages,
			VideoParams: item.VideoParams,
			AudioParams: item.AudioParams,
			ContentID:   item.ContentID,
			CreatedAt:   item.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"size": len(out), "items": out})
}

func (s *Server) handleStatus(c *gin.Context) {
	if s.opts.Status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "worker not running in this process"})
		return
	}
	status := s.opts.Status()
	body := gin.H{
		"running": status.Running,
		"counts":  status.Counts,
	}
	if status.CurrentItem != nil {
		body["current"] = gin.H{"id": status.CurrentItem.ID, "path": status.CurrentItem.Path}
	}
	if last := status.LastOutcome; last != nil {
		body["last_outcome"] = outcomeView(*last)
	}
	if status.LastError != "" {
		body["last_error"] = status.LastError
	}
	c.JSON(http.StatusOK, body)
}

func outcomeView(o workflow.Outcome) gin.H {
	view := gin.H{
		"item_id": o.ItemID,
		"kind":    o.Kind,
		"reason":  o.Reason,
		"path":    o.Path,
	}
	if o.Class != "" {
		view["class"] = o.Class
	}
	if o.FailedLog != "" {
		view["failed_log"] = o.FailedLog
	}
	return view
}
