package logstream_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recast/internal/logging"
	"recast/internal/logstream"
	"recast/internal/testsupport"
	"recast/internal/webhook"
)

func TestStreamURL(t *testing.T) {
	tests := []struct {
		bind  string
		all   bool
		since uint64
		want  string
	}{
		{"0.0.0.0:9000", false, 0, "ws://127.0.0.1:9000/api/encoder/stream"},
		{":9000", true, 0, "ws://127.0.0.1:9000/api/encoder/stream?all=1"},
		{"10.0.0.5:8080", false, 42, "ws://10.0.0.5:8080/api/encoder/stream?since=42"},
		{"[::]:9000", false, 0, "ws://127.0.0.1:9000/api/encoder/stream"},
	}
	for _, tt := range tests {
		got, err := logstream.StreamURL(tt.bind, tt.all, tt.since)
		if err != nil {
			t.Fatalf("StreamURL(%q): %v", tt.bind, err)
		}
		if got != tt.want {
			t.Fatalf("StreamURL(%q) = %q, want %q", tt.bind, got, tt.want)
		}
	}
	if _, err := logstream.StreamURL("no-port", false, 0); err == nil {
		t.Fatal("expected error for address without port")
	}
}

func TestStreamFollowsEncoderLines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	hub := logging.NewStreamHub(32)
	server := webhook.NewServer(cfg, webhook.Options{Store: store, Hub: hub}, nil)
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	hub.PublishLine(1, "frame=1 item one")
	hub.PublishLine(2, "frame=1 item two")
	hub.PublishLine(2, "frame=2 item two")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	printed, err := logstream.Stream(ctx, logstream.Options{
		Addr:    strings.TrimPrefix(srv.URL, "http://"),
		Filters: logstream.Filters{ItemID: 2},
	}, func(evt logging.LogEvent) {
		got = append(got, evt.Message)
		if len(got) == 2 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !printed {
		t.Fatal("expected events to be printed")
	}
	if len(got) != 2 || got[0] != "frame=1 item two" || got[1] != "frame=2 item two" {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestStreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	_, err := logstream.Stream(context.Background(), logstream.Options{Addr: addr}, nil)
	if !errors.Is(err, logstream.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
