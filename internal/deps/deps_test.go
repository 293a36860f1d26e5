package deps_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"recast/internal/deps"
	"recast/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []deps.Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := deps.CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestRequirementsFollowConfiguredBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcoding.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	cfg.Transcoding.FFprobeBinary = ""

	reqs := deps.Requirements(cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg command = %q", reqs[0].Command)
	}
	if reqs[1].Command != "ffprobe" {
		t.Fatalf("ffprobe command = %q, want default", reqs[1].Command)
	}
}

func TestCheckWithVersions(t *testing.T) {
	dir := t.TempDir()
	good := testsupport.WriteExecutable(t, dir, "ffmpeg", "echo 'ffmpeg version 7.1 Copyright (c) 2000-2024'\necho 'built with gcc'\n")
	broken := testsupport.WriteExecutable(t, dir, "ffprobe", "exit 3\n")

	results := deps.CheckWithVersions(context.Background(), []deps.Requirement{
		{Name: "FFmpeg", Command: good},
		{Name: "FFprobe", Command: broken},
	})
	if !results[0].Available {
		t.Fatalf("expected ffmpeg available, got %#v", results[0])
	}
	if results[0].Version != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("unexpected version %q", results[0].Version)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected broken ffprobe to be unavailable, got %#v", results[1])
	}
}
