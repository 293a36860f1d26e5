package encoding

import "strings"

// expandParams rewrites an encoder parameter fragment so every option applies
// to one output stream: "-c libx265 -preset medium" with specifier "v:0"
// becomes "-c:v:0 libx265 -preset:v:0 medium". An option that already carries
// a specifier ("-c:a aac") has it replaced.
func expandParams(fragment string, specifier string) []string {
	fields := strings.Fields(fragment)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if !isOption(field) {
			out = append(out, field)
			continue
		}
		name := field
		if idx := strings.IndexByte(name, ':'); idx > 0 {
			name = name[:idx]
		}
		out = append(out, name+":"+specifier)
	}
	return out
}

// isOption reports whether field is an ffmpeg option rather than a value.
// Negative numbers such as "-1" are values.
func isOption(field string) bool {
	if len(field) < 2 || field[0] != '-' {
		return false
	}
	c := field[1]
	return !(c >= '0' && c <= '9') && c != '.'
}
