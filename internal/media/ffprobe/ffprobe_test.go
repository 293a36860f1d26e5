package ffprobe_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"recast/internal/media/ffprobe"
	"recast/internal/testsupport"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "tags": {"language": " eng "}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "tags": {"language": "ita"}},
    {"index": 3, "codec_name": "mov_text", "codec_type": "subtitle", "tags": {"language": "eng"}},
    {"index": 4, "codec_name": "mjpeg", "codec_type": "video", "disposition": {"attached_pic": 1}},
    {"index": 5, "codec_type": "data"}
  ],
  "format": {"filename": "x.mkv", "nb_streams": 6, "duration": "5423.2", "size": "1048576"}
}`

func TestInspectParsesStreams(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteExecutable(t, dir, "ffprobe", "cat <<'JSON'\n"+sampleJSON+"\nJSON\n")

	result, err := ffprobe.Inspect(context.Background(), binary, filepath.Join(dir, "x.mkv"))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(result.Streams) != 6 {
		t.Fatalf("expected 6 streams, got %d", len(result.Streams))
	}

	video := result.VideoStreams()
	if len(video) != 2 || video[0].Index != 0 || video[1].Index != 4 {
		t.Fatalf("unexpected video streams: %+v", video)
	}
	if video[1].Disposition.AttachedPic != 1 {
		t.Fatalf("expected attached_pic disposition on cover art")
	}
	audio := result.AudioStreams()
	if len(audio) != 2 || audio[0].Language() != " eng " || audio[1].Language() != "ita" {
		t.Fatalf("unexpected audio streams: %+v", audio)
	}
	subs := result.SubtitleStreams()
	if len(subs) != 1 || subs[0].CodecName != "mov_text" {
		t.Fatalf("unexpected subtitle streams: %+v", subs)
	}
	if result.Streams[5].Kind() != ffprobe.CodecTypeOther {
		t.Fatalf("expected data stream to be classified as other, got %q", result.Streams[5].Kind())
	}
	if result.DurationSeconds() != 5423.2 || result.SizeBytes() != 1048576 {
		t.Fatalf("unexpected format values: %+v", result.Format)
	}
}

func TestInspectPassesPathAfterSeparator(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	binary := testsupport.WriteExecutable(t, dir, "ffprobe", `printf '%s\n' "$@" > "`+argsFile+`"
echo '{"streams": [], "format": {}}'
`)
	if _, err := ffprobe.Inspect(context.Background(), binary, "-weird name.mkv"); err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	args := readLines(t, argsFile)
	if len(args) < 2 || args[len(args)-2] != "--" || args[len(args)-1] != "-weird name.mkv" {
		t.Fatalf("expected path after --, got %v", args)
	}
}

func TestInspectFailsOnNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteExecutable(t, dir, "ffprobe", "echo 'moov atom not found' >&2\nexit 1\n")

	_, err := ffprobe.Inspect(context.Background(), binary, filepath.Join(dir, "broken.mp4"))
	if err == nil {
		t.Fatal("expected error for failing ffprobe")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestInspectFailsOnGarbageOutput(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteExecutable(t, dir, "ffprobe", "echo 'not json'\n")
	if _, err := ffprobe.Inspect(context.Background(), binary, filepath.Join(dir, "x.mkv")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := ffprobe.Inspect(context.Background(), "ffprobe", "  "); !errors.Is(err, ffprobe.ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestCommandProberUsesBinary(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteExecutable(t, dir, "ffprobe", `echo '{"streams": [{"index": 0, "codec_type": "audio"}]}'`+"\n")
	var prober ffprobe.Prober = ffprobe.CommandProber{Binary: binary}
	result, err := prober.Probe(context.Background(), filepath.Join(dir, "a.mka"))
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if len(result.AudioStreams()) != 1 {
		t.Fatalf("expected one audio stream, got %+v", result.Streams)
	}
}

func TestDurationHandlesInvalidNumbers(t *testing.T) {
	result := ffprobe.Result{Format: ffprobe.Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}
