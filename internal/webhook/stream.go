package webhook

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"recast/internal/logging"
)

const (
	streamBatch      = 200
	streamBacklog    = 100
	streamWriteLimit = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// handleEncoderStream upgrades to a websocket and forwards encoder output
// events as JSON until the client disconnects. ?since=N resumes after a
// sequence number; without it the client first receives the last ?tail=N
// events (100 by default). ?all=1 includes regular log records.
func (s *Server) handleEncoderStream(c *gin.Context) {
	if s.opts.Hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "encoder stream unavailable"})
		return
	}
	includeLogs := c.Query("all") == "1"
	since, resume := uint64(0), c.Query("since") != ""
	if resume {
		var err error
		if since, err = strconv.ParseUint(c.Query("since"), 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a sequence number"})
			return
		}
	}
	tail := streamBacklog
	if raw := c.Query("tail"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tail must be a non-negative count"})
			return
		}
		tail = n
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client never sends data; reading detects disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(events []logging.LogEvent) bool {
		for _, evt := range events {
			if evt.Kind != logging.EventKindEncoder && !includeLogs {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteLimit))
			if err := conn.WriteJSON(evt); err != nil {
				return false
			}
		}
		return true
	}

	if !resume {
		var backlog []logging.LogEvent
		backlog, since = s.opts.Hub.Tail(tail)
		if tail == 0 {
			backlog = nil
		}
		if !send(backlog) {
			return
		}
	}

	for {
		events, next, err := s.opts.Hub.Fetch(ctx, since, streamBatch, true)
		if err != nil {
			return
		}
		since = next
		if !send(events) {
			return
		}
	}
}
