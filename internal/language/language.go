package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the ISO 639-2 code containers use for untagged streams.
const Undetermined = "und"

// ToISO3 returns the ISO 639-2 code for a two or three letter language code.
// Unknown codes return "".
func ToISO3(code string) string {
	base, ok := parseBase(code)
	if !ok {
		return ""
	}
	return base.ISO3()
}

// DisplayName returns the English name for a language code, falling back to
// the upper-cased code when it is not recognised.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, Undetermined) {
		return "Unknown"
	}
	base, ok := parseBase(code)
	if !ok {
		return strings.ToUpper(code)
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return strings.ToUpper(code)
}

// Label renders a stream tag as "eng (English)" for tables.
func Label(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	name := DisplayName(code)
	if strings.EqualFold(name, code) {
		return code
	}
	return code + " (" + name + ")"
}

// Mismatch describes a profile language that differs from the code a
// container tag would carry for the same language.
type Mismatch struct {
	Code     string
	Expected string
}

// Mismatches reports the entries of a comma-separated language list that
// are not written the way container tags spell them. Entries that cannot
// be resolved at all are reported with an empty Expected.
func Mismatches(list string) []Mismatch {
	var out []Mismatch
	for _, raw := range strings.Split(list, ",") {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		expected := ToISO3(code)
		if expected == code {
			continue
		}
		out = append(out, Mismatch{Code: code, Expected: expected})
	}
	return out
}

func parseBase(code string) (xlanguage.Base, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) < 2 || len(code) > 3 {
		return xlanguage.Base{}, false
	}
	base, err := xlanguage.ParseBase(code)
	if err != nil {
		return xlanguage.Base{}, false
	}
	if base.String() == Undetermined {
		return xlanguage.Base{}, false
	}
	return base, true
}
