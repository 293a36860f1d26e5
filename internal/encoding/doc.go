// Package encoding turns a queue request and an ffprobe result into an ffmpeg
// invocation, runs it, and classifies how it ended.
//
// BuildPlan decides which streams survive and under which codec policy:
// the first video stream is primary and may be re-encoded, other video streams
// are copied, audio is filtered and ordered by the requested languages (failing
// open when nothing matches), subtitles without a codec are dropped and
// mov_text is converted to SubRip. BuildCommand renders that plan into the
// exact argument list. Runner executes ffmpeg while streaming its output to a
// rotating log file, and Classify maps the exit status and log signatures onto
// an outcome.
package encoding
