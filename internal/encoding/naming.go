package encoding

import (
	"path/filepath"
	"regexp"
	"strings"
)

// TranscodedSuffix marks files produced by recast.
const TranscodedSuffix = "-TRANSCODED"

// releaseTagPattern matches trailing scene and release group tags, including
// a previous transcode marker, so repeated runs do not stack suffixes.
var releaseTagPattern = regexp.MustCompile(
	`(?i)(?:[\s._-]*(?:\[(?:rarbg|eztv(?:\.re)?|ettv|tgx|yts(?:\.(?:mx|am|lt))?|rartv)\]|-(?:rarbg|eztv|ettv|tgx|psa|rartv)|-transcoded))+$`)

// OutputName derives the transcoded file name for source: release tags are
// stripped from the stem, the marker is appended, and the extension is always .mkv.
func OutputName(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.TrimSpace(releaseTagPattern.ReplaceAllString(stem, ""))
	if cleaned == "" {
		cleaned = stem
	}
	return cleaned + TranscodedSuffix + ".mkv"
}

// OutputPath returns the final location of the transcoded file next to source.
func OutputPath(source string) string {
	return filepath.Join(filepath.Dir(source), OutputName(source))
}

// HasExtension reports whether path ends with one of exts (case-insensitive).
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range exts {
		if strings.EqualFold(ext, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
