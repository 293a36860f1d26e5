// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe once and decodes its stream and format sections.
// Result helpers return video, audio and subtitle streams in container
// order, which the command builder relies on for stream mapping. The Prober
// interface lets callers substitute a fake in tests.
package ffprobe
