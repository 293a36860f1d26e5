package main

import (
	"strings"
	"testing"
	"time"

	"recast/internal/logging"
)

func TestFormatStreamEvent(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 5, 0, time.Local)

	encoder := formatStreamEvent(logging.LogEvent{Timestamp: ts, Kind: logging.EventKindEncoder, ItemID: 7, Message: "frame=  10"})
	if encoder != "12:00:05 #7 frame=  10" {
		t.Fatalf("unexpected encoder line %q", encoder)
	}

	record := formatStreamEvent(logging.LogEvent{Timestamp: ts, Kind: logging.EventKindLog, Level: "warn", Component: "worker", Message: "retrying"})
	if record != "12:00:05 WARN [worker] retrying" {
		t.Fatalf("unexpected log line %q", record)
	}
	if !strings.Contains(formatStreamEvent(logging.LogEvent{Timestamp: ts, Message: "bare"}), "- bare") {
		t.Fatal("expected placeholder level")
	}
}
