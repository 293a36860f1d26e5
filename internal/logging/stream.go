package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Event kinds published to a StreamHub.
const (
	EventKindLog     = "log"
	EventKindEncoder = "encoder"
)

// LogEvent is a log record or encoder output line published to the streaming hub.
type LogEvent struct {
	Sequence  uint64            `json:"seq"`
	Timestamp time.Time         `json:"ts"`
	Kind      string            `json:"kind"`
	Level     string            `json:"level,omitempty"`
	Message   string            `json:"msg"`
	Component string            `json:"component,omitempty"`
	ItemID    int64             `json:"item_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// StreamHub stores recent events and wakes waiters when new events arrive.
type StreamHub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []LogEvent
	nextSeq  uint64
}

// NewStreamHub constructs a bounded in-memory fan-out buffer.
func NewStreamHub(capacity int) *StreamHub {
	if capacity <= 0 {
		capacity = 512
	}
	h := &StreamHub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends a new event to the hub.
func (h *StreamHub) Publish(evt LogEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.Kind == "" {
		evt.Kind = EventKindLog
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	h.cond.Broadcast()
}

// PublishLine records one line of encoder output for itemID.
func (h *StreamHub) PublishLine(itemID int64, line string) {
	h.Publish(LogEvent{Kind: EventKindEncoder, ItemID: itemID, Message: line})
}

// Fetch returns events with sequence greater than since. When wait is true,
// Fetch blocks until at least one event is available or the context ends.
func (h *StreamHub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]LogEvent, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.mu.Lock()
				h.cond.Broadcast()
				h.mu.Unlock()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		events, next := h.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, next, err
		}
		h.cond.Wait()
	}
}

// Tail returns the most recent limit events without blocking.
func (h *StreamHub) Tail(limit int) ([]LogEvent, uint64) {
	if h == nil {
		return nil, 0
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	start := len(h.buffer) - limit
	if start < 0 {
		start = 0
	}
	out := make([]LogEvent, len(h.buffer)-start)
	copy(out, h.buffer[start:])
	return out, h.nextSeq
}

func (h *StreamHub) snapshotLocked(since uint64, limit int) ([]LogEvent, uint64) {
	start := len(h.buffer)
	for i, evt := range h.buffer {
		if evt.Sequence > since {
			start = i
			break
		}
	}
	if start == len(h.buffer) {
		return nil, h.nextSeq
	}
	end := start + limit
	if end > len(h.buffer) {
		end = len(h.buffer)
	}
	out := make([]LogEvent, end-start)
	copy(out, h.buffer[start:end])
	// A truncated batch resumes after its own last event.
	return out, out[len(out)-1].Sequence
}

type streamHandler struct {
	next  slog.Handler
	hub   *StreamHub
	attrs []slog.Attr
}

func newStreamHandler(next slog.Handler, hub *StreamHub) slog.Handler {
	if hub == nil || next == nil {
		return next
	}
	return &streamHandler{next: next, hub: hub}
}

func (h *streamHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *streamHandler) Handle(ctx context.Context, record slog.Record) error {
	h.hub.Publish(eventFromRecord(record, h.attrs))
	return h.next.Handle(ctx, record.Clone())
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &streamHandler{next: h.next.WithAttrs(attrs), hub: h.hub, attrs: merged}
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	return &streamHandler{next: h.next.WithGroup(name), hub: h.hub, attrs: h.attrs}
}

func eventFromRecord(record slog.Record, preAttrs []slog.Attr) LogEvent {
	event := LogEvent{
		Timestamp: record.Time,
		Kind:      EventKindLog,
		Level:     strings.ToUpper(record.Level.String()),
		Message:   strings.TrimSpace(record.Message),
	}
	apply := func(attr slog.Attr) {
		key := strings.TrimSpace(attr.Key)
		if key == "" {
			return
		}
		switch key {
		case FieldItemID:
			event.ItemID = attr.Value.Resolve().Int64()
		case FieldComponent:
			event.Component = attrString(attr.Value)
		default:
			if event.Fields == nil {
				event.Fields = make(map[string]string)
			}
			event.Fields[key] = attrString(attr.Value)
		}
	}
	for _, attr := range preAttrs {
		apply(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		apply(attr)
		return true
	})
	return event
}
