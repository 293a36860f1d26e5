package encoding

import (
	"fmt"
	"strings"

	"recast/internal/media/ffprobe"
	"recast/internal/queue"
)

// StreamType is the ffmpeg output stream specifier letter.
type StreamType string

const (
	StreamVideo    StreamType = "v"
	StreamAudio    StreamType = "a"
	StreamSubtitle StreamType = "s"
)

const (
	movTextCodec = "mov_text"
	subripCodec  = "subrip"
	copyCodec    = "copy"
)

// MappedStream is one output stream and the policy applied to it.
type MappedStream struct {
	Type        StreamType
	SourceIndex int
	// Selector is the -map argument.
	Selector string
	Language string
	// Params holds an encoder parameter fragment. Empty means no re-encode.
	Params string
	// Codec forces a codec for the stream when Params is empty; "" means copy.
	Codec string
}

// Policy describes the codec handling for metadata and logging.
func (m MappedStream) Policy() string {
	switch {
	case m.Params != "":
		return m.Params
	case m.Codec != "":
		return m.Codec
	default:
		return copyCodec
	}
}

// Plan is the stream selection for one encode.
type Plan struct {
	Video     []MappedStream
	Audio     []MappedStream
	Subtitles []MappedStream
	// Dropped lists source indexes left out of the output.
	Dropped []int
	// LanguageFallback is set when a language filter matched no audio stream
	// and every audio stream was kept.
	LanguageFallback bool
}

// Streams returns every mapped stream in output order.
func (p Plan) Streams() []MappedStream {
	out := make([]MappedStream, 0, len(p.Video)+len(p.Audio)+len(p.Subtitles))
	out = append(out, p.Video...)
	out = append(out, p.Audio...)
	return append(out, p.Subtitles...)
}

// Summary renders a short description such as "v:1 a:2 s:1 dropped:3".
func (p Plan) Summary() string {
	summary := fmt.Sprintf("v:%d a:%d s:%d", len(p.Video), len(p.Audio), len(p.Subtitles))
	if len(p.Dropped) > 0 {
		summary += fmt.Sprintf(" dropped:%d", len(p.Dropped))
	}
	return summary
}

// BuildPlan selects and orders the output streams for req.
func BuildPlan(req queue.Request, probe ffprobe.Result) Plan {
	languages := ParseLanguages(req.Languages)
	var plan Plan

	for i, stream := range probe.VideoStreams() {
		mapped := MappedStream{
			Type:        StreamVideo,
			SourceIndex: stream.Index,
			Selector:    fmt.Sprintf("0:%d", stream.Index),
			Language:    stream.Language(),
		}
		if i == 0 {
			mapped.Selector = "0:v:0"
			mapped.Params = strings.TrimSpace(req.VideoParams)
		}
		plan.Video = append(plan.Video, mapped)
	}

	audio := probe.AudioStreams()
	kept := audio
	if len(languages) > 0 {
		var matching, rest []ffprobe.Stream
		for _, stream := range audio {
			if languageMatches(stream.Language(), languages) {
				matching = append(matching, stream)
			} else {
				rest = append(rest, stream)
			}
		}
		if len(matching) > 0 {
			kept = matching
			for _, stream := range rest {
				plan.Dropped = append(plan.Dropped, stream.Index)
			}
		} else if len(audio) > 0 {
			plan.LanguageFallback = true
		}
	}
	for _, stream := range kept {
		plan.Audio = append(plan.Audio, MappedStream{
			Type:        StreamAudio,
			SourceIndex: stream.Index,
			Selector:    fmt.Sprintf("0:%d", stream.Index),
			Language:    stream.Language(),
			Params:      strings.TrimSpace(req.AudioParams),
		})
	}

	for _, stream := range probe.SubtitleStreams() {
		codec := strings.TrimSpace(stream.CodecName)
		if codec == "" {
			plan.Dropped = append(plan.Dropped, stream.Index)
			continue
		}
		if len(languages) > 0 && !languageMatches(stream.Language(), languages) {
			plan.Dropped = append(plan.Dropped, stream.Index)
			continue
		}
		mapped := MappedStream{
			Type:        StreamSubtitle,
			SourceIndex: stream.Index,
			Selector:    fmt.Sprintf("0:%d", stream.Index),
			Language:    stream.Language(),
		}
		if strings.EqualFold(codec, movTextCodec) {
			mapped.Codec = subripCodec
		}
		plan.Subtitles = append(plan.Subtitles, mapped)
	}

	return plan
}
