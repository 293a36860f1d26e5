package encoding

import "strings"

// ParseLanguages splits a comma separated language list ("eng, ita") into its
// entries, trimming whitespace and dropping empty ones. Order is preserved.
func ParseLanguages(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// languageMatches compares the prober's tag byte for byte with the requested
// codes. A stream without a tag never matches.
func languageMatches(tag string, wanted []string) bool {
	if tag == "" {
		return false
	}
	for _, code := range wanted {
		if tag == code {
			return true
		}
	}
	return false
}
