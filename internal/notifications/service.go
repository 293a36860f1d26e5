package notifications

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"recast/internal/config"
)

const userAgent = "recast/1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// sender delivers one rendered message to a backend.
type sender interface {
	send(ctx context.Context, msg message) error
}

// Option customizes a Service built by NewService.
type Option func(*options)

type options struct {
	client           *http.Client
	pushoverEndpoint string
}

// WithHTTPClient replaces the HTTP client shared by the backends.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithPushoverEndpoint overrides the Pushover messages API URL.
func WithPushoverEndpoint(endpoint string) Option {
	return func(o *options) {
		o.pushoverEndpoint = endpoint
	}
}

// NewService builds a notification service for every configured backend.
// When nothing is configured, a noop implementation is returned.
func NewService(cfg *config.Config, opts ...Option) Service {
	if cfg == nil {
		return noopService{}
	}
	settings := cfg.Notifications

	timeout := time.Duration(settings.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	o := options{
		client:           &http.Client{Timeout: timeout},
		pushoverEndpoint: defaultPushoverEndpoint,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var senders []sender
	if topic := strings.TrimSpace(settings.NtfyTopic); topic != "" {
		senders = append(senders, &ntfySender{endpoint: topic, client: o.client})
	}
	user := strings.TrimSpace(settings.PushoverUser)
	token := strings.TrimSpace(settings.PushoverToken)
	if user != "" && token != "" {
		senders = append(senders, &pushoverSender{
			endpoint: o.pushoverEndpoint,
			user:     user,
			token:    token,
			device:   strings.TrimSpace(settings.PushoverDevice),
			client:   o.client,
		})
	}
	if len(senders) == 0 {
		return noopService{}
	}
	return &service{
		senders:   senders,
		completed: settings.Completed,
		downloads: settings.Downloads,
	}
}

type service struct {
	senders   []sender
	completed bool
	downloads bool
}

func (s *service) Publish(ctx context.Context, event Event, payload Payload) error {
	if s.suppressed(event) {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	var errs []error
	for _, backend := range s.senders {
		if err := backend.send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) suppressed(event Event) bool {
	switch event {
	case EventTranscodeCompleted:
		return !s.completed
	case EventMovieDownloaded, EventEpisodeDownloaded, EventGrabbed:
		return !s.downloads
	default:
		return false
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

// NewNoop returns a Service that discards every event.
func NewNoop() Service {
	return noopService{}
}
