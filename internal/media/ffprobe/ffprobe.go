package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Codec types as reported by ffprobe's codec_type field.
const (
	CodecTypeVideo    = "video"
	CodecTypeAudio    = "audio"
	CodecTypeSubtitle = "subtitle"
	CodecTypeOther    = "other"
)

// ErrEmptyPath is returned when Inspect is called without a file.
var ErrEmptyPath = errors.New("ffprobe inspect: empty path")

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index       int         `json:"index"`
	CodecName   string      `json:"codec_name"`
	CodecType   string      `json:"codec_type"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Channels    int         `json:"channels"`
	Tags        Tags        `json:"tags"`
	Disposition Disposition `json:"disposition"`
}

// Tags holds the stream tags recast reads.
type Tags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

// Disposition flags reported per stream.
type Disposition struct {
	Default         int `json:"default"`
	Forced          int `json:"forced"`
	AttachedPic     int `json:"attached_pic"`
	HearingImpaired int `json:"hearing_impaired"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Kind normalizes codec_type to one of the CodecType constants.
func (s Stream) Kind() string {
	switch strings.ToLower(strings.TrimSpace(s.CodecType)) {
	case CodecTypeVideo:
		return CodecTypeVideo
	case CodecTypeAudio:
		return CodecTypeAudio
	case CodecTypeSubtitle:
		return CodecTypeSubtitle
	default:
		return CodecTypeOther
	}
}

// Language returns the stream's language tag exactly as the container stores it.
func (s Stream) Language() string {
	return s.Tags.Language
}

// Prober inspects media files.
type Prober interface {
	Probe(ctx context.Context, path string) (Result, error)
}

// CommandProber implements Prober by running an ffprobe binary.
type CommandProber struct {
	Binary string
}

// Probe runs Inspect with the configured binary.
func (p CommandProber) Probe(ctx context.Context, path string) (Result, error) {
	return Inspect(ctx, p.Binary, path)
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, ErrEmptyPath
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

func (r Result) streamsOfKind(kind string) []Stream {
	var out []Stream
	for _, stream := range r.Streams {
		if stream.Kind() == kind {
			out = append(out, stream)
		}
	}
	return out
}

// VideoStreams returns video streams in container order.
func (r Result) VideoStreams() []Stream { return r.streamsOfKind(CodecTypeVideo) }

// AudioStreams returns audio streams in container order.
func (r Result) AudioStreams() []Stream { return r.streamsOfKind(CodecTypeAudio) }

// SubtitleStreams returns subtitle streams in container order.
func (r Result) SubtitleStreams() []Stream { return r.streamsOfKind(CodecTypeSubtitle) }

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
