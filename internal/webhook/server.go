package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recast/internal/arr"
	"recast/internal/config"
	"recast/internal/logging"
	"recast/internal/notifications"
	"recast/internal/queue"
	"recast/internal/workflow"
)

// Store is the queue surface used by the listener.
type Store interface {
	Add(ctx context.Context, req queue.Request) (*queue.Request, error)
	List(ctx context.Context) ([]*queue.Request, error)
	Size(ctx context.Context) (int, error)
}

// MovieLibrary resolves Radarr movies and quality profiles.
type MovieLibrary interface {
	Movie(ctx context.Context, id int64) (arr.Movie, error)
	QualityProfileName(ctx context.Context, id int64) (string, error)
}

// SeriesLibrary resolves Sonarr series and quality profiles.
type SeriesLibrary interface {
	Series(ctx context.Context, id int64) (arr.Series, error)
	QualityProfileName(ctx context.Context, id int64) (string, error)
}

// Options carries the listener's collaborators. Radarr, Sonarr, Hub, Wake
// and Status are optional.
type Options struct {
	Store    Store
	Radarr   MovieLibrary
	Sonarr   SeriesLibrary
	Notifier notifications.Service
	Hub      *logging.StreamHub
	Wake     func()
	Status   func() workflow.StatusSummary
}

// Server is the webhook and API listener.
type Server struct {
	cfg    *config.Config
	opts   Options
	mapper arr.PathMapper
	logger *slog.Logger
	engine *gin.Engine

	listener net.Listener
	server   *http.Server
}

// NewServer builds the gin engine and registers routes.
func NewServer(cfg *config.Config, opts Options, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewNoop()
	}
	s := &Server{
		cfg:    cfg,
		opts:   opts,
		mapper: arr.NewPathMapper(cfg.General.RemotePathMappings),
		logger: logging.NewComponentLogger(logger, "webhook"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.POST("/", s.handleWebhook)
	engine.GET("/health", s.handleHealth)
	api := engine.Group("/api")
	{
		api.GET("/queue", s.handleQueue)
		api.GET("/status", s.handleStatus)
		api.GET("/encoder/stream", s.handleEncoderStream)
	}
	s.engine = engine
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured bind address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Webhook.Bind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("webhook listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook server error", logging.Error(err),
				logging.String(logging.FieldEventType, "webhook_server_failed"),
				logging.String(logging.FieldErrorHint, "check webhook.bind"),
			)
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("webhook listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "webhook_listening"),
	)
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("http request",
			logging.String("method", c.Request.Method),
			logging.String("route", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.String("duration", time.Since(started).String()),
		)
	}
}
