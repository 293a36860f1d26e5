package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recast/internal/config"
	"recast/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg, logging.Options{})
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon started")

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if !strings.Contains(content, "daemon started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "worker").Info("transcode started",
		logging.Int64(logging.FieldItemID, 7),
		logging.String(logging.FieldPath, "/movies/A Film.mkv"),
	)

	content := readLog(t, logPath)
	if !strings.Contains(content, " INFO worker: transcode started") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "item_id=7") {
		t.Fatalf("expected item_id field, got %q", content)
	}
	if !strings.Contains(content, `path="/movies/A Film.mkv"`) {
		t.Fatalf("expected quoted path, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("probe finished")

	if content := readLog(t, logPath); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerEmitsStructuredFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithAttemptID(logging.WithItemID(context.Background(), 12), "attempt-1")
	logging.WithContext(ctx, logger).Warn("encode retried")

	var payload map[string]any
	line := strings.TrimSpace(readLog(t, logPath))
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log %q: %v", line, err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["item_id"] != float64(12) {
		t.Fatalf("unexpected item_id: %v", payload["item_id"])
	}
	if payload["attempt_id"] != "attempt-1" {
		t.Fatalf("unexpected attempt_id: %v", payload["attempt_id"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "rescan failed", "rescan_failed", logging.String(logging.FieldImpact, "library not refreshed"))

	content := readLog(t, logPath)
	for _, want := range []string{"event_type=rescan_failed", "error_hint=", `impact="library not refreshed"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}
