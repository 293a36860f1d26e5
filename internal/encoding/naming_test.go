package encoding_test

import (
	"testing"

	"recast/internal/encoding"
)

func TestOutputName(t *testing.T) {
	cases := map[string]string{
		"/m/Film.2020.1080p.mp4":              "Film.2020.1080p-TRANSCODED.mkv",
		"/m/Film.2020.1080p-RARBG.mkv":        "Film.2020.1080p-TRANSCODED.mkv",
		"/tv/Show.S01E01 [eztv.re].mkv":       "Show.S01E01-TRANSCODED.mkv",
		"/tv/Show.S01E02.720p.x264-[tgx].mp4": "Show.S01E02.720p.x264-TRANSCODED.mkv",
		"/m/Film-TRANSCODED.mkv":              "Film-TRANSCODED.mkv",
		"/m/Film.2019.[YTS.MX].mp4":           "Film.2019-TRANSCODED.mkv",
		"/m/Rarbg Documentary.mkv":            "Rarbg Documentary-TRANSCODED.mkv",
	}
	for source, want := range cases {
		if got := encoding.OutputName(source); got != want {
			t.Fatalf("OutputName(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestOutputPathStaysNextToSource(t *testing.T) {
	if got := encoding.OutputPath("/library/Film/Film.mp4"); got != "/library/Film/Film-TRANSCODED.mkv" {
		t.Fatalf("unexpected output path %q", got)
	}
}

func TestHasExtension(t *testing.T) {
	exts := []string{".avi", ".wmv"}
	if !encoding.HasExtension("/m/a.AVI", exts) {
		t.Fatalf("expected case-insensitive match")
	}
	if encoding.HasExtension("/m/a.mkv", exts) || encoding.HasExtension("/m/avi", exts) {
		t.Fatalf("unexpected match")
	}
}
