package encoding

import (
	"fmt"
	"strings"

	"recast/internal/queue"
)

// MetadataKey is the per-stream tag recording which parameters produced it.
const MetadataKey = "TRANSCODE_PARAMS"

// Options holds settings applied identically to every invocation.
type Options struct {
	Binary  string
	HWAccel string
}

// BuildCommand renders plan into a complete ffmpeg argument list. The first
// element is the binary.
func BuildCommand(opts Options, req queue.Request, plan Plan, outputPath string) []string {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	args := make([]string, 0, 32)
	args = append(args, binary, "-hide_banner", "-y")
	if hw := strings.TrimSpace(opts.HWAccel); hw != "" {
		args = append(args, "-hwaccel", hw, "-hwaccel_output_format", hw)
	}
	args = append(args, "-i", req.Path)

	args = appendStreams(args, plan.Video, true)
	args = appendStreams(args, plan.Audio, true)
	args = appendStreams(args, plan.Subtitles, false)

	return append(args, "-f", "matroska", outputPath)
}

func appendStreams(args []string, streams []MappedStream, tagPolicy bool) []string {
	for n, stream := range streams {
		specifier := fmt.Sprintf("%s:%d", stream.Type, n)
		args = append(args, "-map", stream.Selector)
		switch {
		case stream.Params != "":
			args = append(args, expandParams(stream.Params, specifier)...)
		case stream.Codec != "":
			args = append(args, "-c:"+specifier, stream.Codec)
		default:
			args = append(args, "-c:"+specifier, copyCodec)
		}
		if tagPolicy {
			args = append(args, "-metadata:s:"+specifier, MetadataKey+"="+stream.Policy())
		}
	}
	return args
}

// FormatCommand joins args for display, quoting arguments containing spaces.
func FormatCommand(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t'\"") {
			parts[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
			continue
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}
