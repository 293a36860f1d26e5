package encoding_test

import (
	"slices"
	"testing"

	"recast/internal/encoding"
	"recast/internal/media/ffprobe"
	"recast/internal/queue"
)

func stream(index int, codecType, codec, lang string) ffprobe.Stream {
	return ffprobe.Stream{Index: index, CodecType: codecType, CodecName: codec, Tags: ffprobe.Tags{Language: lang}}
}

func probeOf(streams ...ffprobe.Stream) ffprobe.Result {
	return ffprobe.Result{Streams: streams}
}

func sourceIndexes(streams []encoding.MappedStream) []int {
	out := make([]int, 0, len(streams))
	for _, s := range streams {
		out = append(out, s.SourceIndex)
	}
	return out
}

func TestBuildPlanKeepsOnlyMatchingAudio(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "audio", "aac", "ita"),
		stream(2, "audio", "ac3", "eng"),
		stream(3, "subtitle", "subrip", "ita"),
		stream(4, "subtitle", "subrip", "eng"),
	)
	plan := encoding.BuildPlan(queue.Request{Path: "/m/a.mkv", Languages: "eng"}, probe)

	if got := sourceIndexes(plan.Audio); !slices.Equal(got, []int{2}) {
		t.Fatalf("expected only english audio, got %v", got)
	}
	if got := sourceIndexes(plan.Subtitles); !slices.Equal(got, []int{4}) {
		t.Fatalf("expected only english subtitles, got %v", got)
	}
	if plan.LanguageFallback {
		t.Fatalf("did not expect language fallback")
	}
	slices.Sort(plan.Dropped)
	if !slices.Equal(plan.Dropped, []int{1, 3}) {
		t.Fatalf("unexpected dropped streams %v", plan.Dropped)
	}
}

func TestBuildPlanMatchingAudioFirstInListOrder(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "audio", "aac", "ita"),
		stream(2, "audio", "aac", "fre"),
		stream(3, "audio", "aac", "eng"),
	)
	plan := encoding.BuildPlan(queue.Request{Languages: "eng, ita"}, probe)
	if got := sourceIndexes(plan.Audio); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("expected matching audio in container order, got %v", got)
	}
}

func TestBuildPlanFailsOpenWhenNoAudioMatches(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "audio", "aac", "jpn"),
		stream(2, "audio", "aac", ""),
		stream(3, "subtitle", "subrip", "jpn"),
	)
	plan := encoding.BuildPlan(queue.Request{Languages: "eng"}, probe)

	if got := sourceIndexes(plan.Audio); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("expected all audio kept, got %v", got)
	}
	if !plan.LanguageFallback {
		t.Fatalf("expected language fallback flag")
	}
	if len(plan.Subtitles) != 0 {
		t.Fatalf("expected non-matching subtitles dropped, got %+v", plan.Subtitles)
	}
}

func TestBuildPlanWithoutLanguagesKeepsEverything(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "hevc", ""),
		stream(1, "audio", "aac", "jpn"),
		stream(2, "subtitle", "ass", ""),
	)
	plan := encoding.BuildPlan(queue.Request{}, probe)
	if len(plan.Audio) != 1 || len(plan.Subtitles) != 1 || len(plan.Dropped) != 0 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.Summary() != "v:1 a:1 s:1" {
		t.Fatalf("unexpected summary %q", plan.Summary())
	}
}

func TestBuildPlanLanguageMatchIsExact(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "audio", "aac", "ENG"),
		stream(2, "audio", "aac", "en"),
		stream(3, "audio", "aac", " eng "),
		stream(4, "audio", "aac", "eng"),
	)
	plan := encoding.BuildPlan(queue.Request{Languages: " eng ,ita"}, probe)
	if got := sourceIndexes(plan.Audio); !slices.Equal(got, []int{4}) {
		t.Fatalf("expected only the exact tag match, got %v", got)
	}
}

func TestBuildPlanSubtitleRules(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "subtitle", "mov_text", "eng"),
		stream(2, "subtitle", "", "eng"),
		stream(3, "subtitle", "hdmv_pgs_subtitle", "eng"),
	)
	plan := encoding.BuildPlan(queue.Request{}, probe)

	if got := sourceIndexes(plan.Subtitles); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("expected codec-less subtitle dropped, got %v", got)
	}
	if plan.Subtitles[0].Codec != "subrip" {
		t.Fatalf("expected mov_text converted to subrip, got %q", plan.Subtitles[0].Codec)
	}
	if plan.Subtitles[1].Codec != "" || plan.Subtitles[1].Policy() != "copy" {
		t.Fatalf("expected pgs subtitle copied, got %+v", plan.Subtitles[1])
	}
	if !slices.Equal(plan.Dropped, []int{2}) {
		t.Fatalf("unexpected dropped %v", plan.Dropped)
	}
}

func TestBuildPlanPrimaryVideoAndCoverArt(t *testing.T) {
	probe := probeOf(
		stream(0, "video", "h264", ""),
		stream(1, "video", "mjpeg", ""),
	)
	plan := encoding.BuildPlan(queue.Request{VideoParams: " -c libx265 "}, probe)

	if len(plan.Video) != 2 {
		t.Fatalf("expected two video streams, got %d", len(plan.Video))
	}
	if plan.Video[0].Selector != "0:v:0" || plan.Video[0].Params != "-c libx265" {
		t.Fatalf("unexpected primary video %+v", plan.Video[0])
	}
	if plan.Video[1].Selector != "0:1" || plan.Video[1].Policy() != "copy" {
		t.Fatalf("expected cover art copied by index, got %+v", plan.Video[1])
	}
}

func TestParseLanguages(t *testing.T) {
	got := encoding.ParseLanguages(" eng, ita,,  ")
	if !slices.Equal(got, []string{"eng", "ita"}) {
		t.Fatalf("unexpected languages %v", got)
	}
	if encoding.ParseLanguages("") != nil {
		t.Fatalf("expected nil for empty list")
	}
}
