// Package language maps the language tags found in container metadata to
// ISO 639-2 codes and English display names.
//
// Stream selection compares profile languages against stream tags
// verbatim. This package is used around that comparison, never inside it:
// the probe table shows readable names, and preflight warns about profile
// codes that ffprobe will never report.
package language
