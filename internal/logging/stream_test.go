package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestStreamHandlerCarriesWithAttrs(t *testing.T) {
	hub := NewStreamHub(100)
	handler := newStreamHandler(slog.NewTextHandler(discardWriter{}, nil), hub)

	logger := slog.New(handler).With(slog.String(FieldComponent, "worker")).With(slog.Int64(FieldItemID, 42))
	logger.Info("transcode started", slog.String("extra", "value"))

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0]
	if evt.ItemID != 42 {
		t.Fatalf("expected item_id=42, got %d", evt.ItemID)
	}
	if evt.Component != "worker" {
		t.Fatalf("expected component worker, got %q", evt.Component)
	}
	if evt.Kind != EventKindLog {
		t.Fatalf("expected log kind, got %q", evt.Kind)
	}
	if evt.Fields["extra"] != "value" {
		t.Fatalf("expected extra field, got %v", evt.Fields)
	}
}

func TestStreamHandlerNilHubReturnsBase(t *testing.T) {
	base := slog.NewTextHandler(discardWriter{}, nil)
	if handler := newStreamHandler(base, nil); handler != base {
		t.Fatal("expected base handler when hub is nil")
	}
}

func TestStreamHubEvictsOldestAtCapacity(t *testing.T) {
	hub := NewStreamHub(2)
	hub.PublishLine(1, "frame=1")
	hub.PublishLine(1, "frame=2")
	hub.PublishLine(1, "frame=3")

	events, next := hub.Tail(0)
	if next != 3 {
		t.Fatalf("expected next sequence 3, got %d", next)
	}
	if len(events) != 2 || events[0].Message != "frame=2" || events[1].Message != "frame=3" {
		t.Fatalf("unexpected buffered events: %+v", events)
	}
	if events[0].Kind != EventKindEncoder {
		t.Fatalf("expected encoder kind, got %q", events[0].Kind)
	}
}

func TestStreamHubFetchSince(t *testing.T) {
	hub := NewStreamHub(10)
	hub.PublishLine(1, "a")
	hub.PublishLine(1, "b")

	events, next, err := hub.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(events) != 1 || events[0].Message != "b" || next != 2 {
		t.Fatalf("unexpected fetch result: %+v next=%d", events, next)
	}

	events, _, err = hub.Fetch(context.Background(), 2, 10, false)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected no new events, got %+v err=%v", events, err)
	}
}

func TestStreamHubFetchLimitResumesAfterBatch(t *testing.T) {
	hub := NewStreamHub(10)
	for _, line := range []string{"a", "b", "c"} {
		hub.PublishLine(1, line)
	}

	events, next, err := hub.Fetch(context.Background(), 0, 2, false)
	if err != nil || len(events) != 2 || next != 2 {
		t.Fatalf("unexpected first batch %+v next=%d err=%v", events, next, err)
	}
	events, next, err = hub.Fetch(context.Background(), next, 2, false)
	if err != nil || len(events) != 1 || events[0].Message != "c" || next != 3 {
		t.Fatalf("unexpected second batch %+v next=%d err=%v", events, next, err)
	}
}

func TestStreamHubFetchWaitsForPublish(t *testing.T) {
	hub := NewStreamHub(10)
	done := make(chan []LogEvent, 1)
	go func() {
		events, _, _ := hub.Fetch(context.Background(), 0, 10, true)
		done <- events
	}()

	time.Sleep(20 * time.Millisecond)
	hub.PublishLine(3, "speed=1.2x")

	select {
	case events := <-done:
		if len(events) != 1 || events[0].ItemID != 3 {
			t.Fatalf("unexpected events: %+v", events)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not wake on publish")
	}
}

func TestStreamHubFetchStopsOnCancel(t *testing.T) {
	hub := NewStreamHub(10)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := hub.Fetch(ctx, 0, 10, true)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after cancel")
	}
}
