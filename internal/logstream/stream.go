package logstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"recast/internal/logging"
)

// ErrUnavailable is returned when the daemon's stream endpoint cannot be reached.
var ErrUnavailable = errors.New("encoder stream unavailable")

// Filters contains optional client-side predicates.
type Filters struct {
	ItemID    int64
	Level     string
	Component string
}

func (f Filters) match(evt logging.LogEvent) bool {
	if f.ItemID != 0 && evt.ItemID != f.ItemID {
		return false
	}
	if level := strings.TrimSpace(f.Level); level != "" && !strings.EqualFold(evt.Level, level) {
		return false
	}
	if component := strings.TrimSpace(f.Component); component != "" && !strings.EqualFold(evt.Component, component) {
		return false
	}
	return true
}

// Options controls stream behavior.
type Options struct {
	// Addr is the webhook listener address, e.g. "127.0.0.1:9000".
	Addr string
	// All includes regular log records alongside encoder output.
	All     bool
	Since   uint64
	Filters Filters
}

// StreamURL builds the websocket URL for the daemon listening on bind.
// Wildcard hosts are dialed on loopback.
func StreamURL(bind string, all bool, since uint64) (string, error) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(bind))
	if err != nil {
		return "", fmt.Errorf("parse listener address %q: %w", bind, err)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	query := url.Values{}
	if all {
		query.Set("all", "1")
	}
	if since > 0 {
		query.Set("since", strconv.FormatUint(since, 10))
	}
	u := url.URL{
		Scheme:   "ws",
		Host:     net.JoinHostPort(host, port),
		Path:     "/api/encoder/stream",
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// Stream follows the daemon's encoder stream until ctx ends or the daemon
// closes the connection. It returns true when at least one event was emitted.
func Stream(ctx context.Context, opts Options, onEvent func(logging.LogEvent)) (bool, error) {
	target, err := StreamURL(opts.Addr, opts.All, opts.Since)
	if err != nil {
		return false, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
		_ = conn.Close()
	})
	defer stop()

	printed := false
	for {
		var evt logging.LogEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return printed, nil
			}
			return printed, fmt.Errorf("read encoder stream: %w", err)
		}
		if !opts.Filters.match(evt) {
			continue
		}
		if onEvent != nil {
			onEvent(evt)
		}
		printed = true
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}
