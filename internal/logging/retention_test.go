package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"recast/internal/logging"
)

func TestCleanupOldLogsRemovesExpiredMatches(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "fresh.log")
	other := filepath.Join(dir, "keep.txt")
	excluded := filepath.Join(dir, "recast.log")
	for _, path := range []string{old, fresh, other, excluded} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{old, other, excluded} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "*.log",
		Exclude: []string{excluded},
	})
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{fresh, other, excluded} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	if removed := logging.CleanupOldLogs(nil, 0, logging.RetentionTarget{Dir: t.TempDir()}); removed != 0 {
		t.Fatalf("expected no removals when disabled, got %d", removed)
	}
}

func TestScheduleRetentionRejectsBadSchedule(t *testing.T) {
	if _, err := logging.ScheduleRetention(nil, "not a schedule", 3); err == nil {
		t.Fatal("expected schedule parse error")
	}
	scheduler, err := logging.ScheduleRetention(nil, "@daily", 3, logging.RetentionTarget{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("ScheduleRetention returned error: %v", err)
	}
	if len(scheduler.Entries()) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(scheduler.Entries()))
	}
	<-scheduler.Stop().Done()
}
