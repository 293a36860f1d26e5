package encoding_test

import (
	"slices"
	"strings"
	"testing"

	"recast/internal/encoding"
	"recast/internal/queue"
)

func indexOf(args []string, value string) int {
	return slices.Index(args, value)
}

func TestBuildCommandLayout(t *testing.T) {
	req := queue.Request{
		Path:        "/movies/Film (2020)/Film.mp4",
		Languages:   "eng",
		VideoParams: "-c libx265 -preset medium -crf 22",
		AudioParams: "-c aac -b 192k",
	}
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "audio", "aac", "eng"),
		stream(2, "audio", "aac", "ita"),
		stream(3, "subtitle", "mov_text", "eng"),
		stream(4, "video", "mjpeg", ""),
	)
	plan := encoding.BuildPlan(req, probe)
	args := encoding.BuildCommand(encoding.Options{Binary: "/opt/ffmpeg"}, req, plan, "/tmp/out.mkv")

	want := []string{
		"/opt/ffmpeg", "-hide_banner", "-y", "-i", req.Path,
		"-map", "0:v:0", "-c:v:0", "libx265", "-preset:v:0", "medium", "-crf:v:0", "22",
		"-metadata:s:v:0", "TRANSCODE_PARAMS=-c libx265 -preset medium -crf 22",
		"-map", "0:4", "-c:v:1", "copy", "-metadata:s:v:1", "TRANSCODE_PARAMS=copy",
		"-map", "0:1", "-c:a:0", "aac", "-b:a:0", "192k",
		"-metadata:s:a:0", "TRANSCODE_PARAMS=-c aac -b 192k",
		"-map", "0:3", "-c:s:0", "subrip",
		"-f", "matroska", "/tmp/out.mkv",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected command\n got: %q\nwant: %q", args, want)
	}
	if indexOf(args, "0:2") >= 0 {
		t.Fatalf("italian audio should not be mapped")
	}
}

func TestBuildCommandCopiesWhenNoParams(t *testing.T) {
	req := queue.Request{Path: "/tv/show.mkv"}
	plan := encoding.BuildPlan(req, probeOf(stream(0, "video", "hevc", ""), stream(1, "audio", "eac3", "eng")))
	args := encoding.BuildCommand(encoding.Options{}, req, plan, "/tmp/o.mkv")

	if args[0] != "ffmpeg" {
		t.Fatalf("expected default binary, got %q", args[0])
	}
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-map 0:v:0 -c:v:0 copy -metadata:s:v:0 TRANSCODE_PARAMS=copy",
		"-map 0:1 -c:a:0 copy -metadata:s:a:0 TRANSCODE_PARAMS=copy",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %q", fragment, joined)
		}
	}
}

func TestBuildCommandWithoutAudioStreams(t *testing.T) {
	req := queue.Request{
		Path:        "/movies/Silent.mkv",
		Languages:   "eng",
		VideoParams: "-c libx265 -crf 22",
		AudioParams: "-c aac",
	}
	plan := encoding.BuildPlan(req, probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "subtitle", "mov_text", "eng"),
	))
	if len(plan.Audio) != 0 || plan.LanguageFallback {
		t.Fatalf("expected no audio and no fallback, got %+v", plan)
	}

	args := encoding.BuildCommand(encoding.Options{}, req, plan, "/tmp/Silent-TRANSCODED.mkv")
	want := []string{
		"ffmpeg", "-hide_banner", "-y", "-i", "/movies/Silent.mkv",
		"-map", "0:v:0", "-c:v:0", "libx265", "-crf:v:0", "22",
	}
	if !slices.Equal(args[:len(want)], want) {
		t.Fatalf("unexpected command prefix %q", args)
	}
	tail := []string{"-map", "0:1", "-c:s:0", "subrip", "-f", "matroska", "/tmp/Silent-TRANSCODED.mkv"}
	if !slices.Equal(args[len(args)-len(tail):], tail) {
		t.Fatalf("unexpected command tail %q", args)
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-c:a") || strings.HasPrefix(arg, "-metadata:s:a") || strings.HasPrefix(arg, "0:a") {
			t.Fatalf("unexpected audio argument %q in %q", arg, args)
		}
	}
	if indexOf(args, "-map") < 0 || strings.Count(strings.Join(args, " "), "-map ") != 2 {
		t.Fatalf("expected exactly the video and subtitle maps, got %q", args)
	}
}

func TestBuildCommandHWAccel(t *testing.T) {
	req := queue.Request{Path: "/in.mkv"}
	args := encoding.BuildCommand(encoding.Options{HWAccel: "cuda"}, req, encoding.Plan{}, "/out.mkv")
	want := []string{"ffmpeg", "-hide_banner", "-y", "-hwaccel", "cuda", "-hwaccel_output_format", "cuda", "-i", "/in.mkv", "-f", "matroska", "/out.mkv"}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected command %q", args)
	}
}

func TestBuildCommandReplacesExistingSpecifier(t *testing.T) {
	req := queue.Request{Path: "/in.mkv", VideoParams: "-c:v libx265 -x265-params log-level=error -qp -1"}
	plan := encoding.BuildPlan(req, probeOf(stream(0, "video", "h264", "")))
	args := encoding.BuildCommand(encoding.Options{}, req, plan, "/out.mkv")
	joined := strings.Join(args, " ")
	want := "-c:v:0 libx265 -x265-params:v:0 log-level=error -qp:v:0 -1"
	if !strings.Contains(joined, want) {
		t.Fatalf("expected %q in %q", want, joined)
	}
}

func TestFormatCommandQuotes(t *testing.T) {
	got := encoding.FormatCommand([]string{"ffmpeg", "-i", "/a b/it's.mkv"})
	want := `ffmpeg -i '/a b/it'\''s.mkv'`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
