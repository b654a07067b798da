package mimenorm_test

import (
	"testing"

	"github.com/nervalabs/routecore/internal/mimenorm"
)

func TestNormalize_Synonyms(t *testing.T) {
	cases := map[string]string{
		"audio/x-wav":        "audio/wav",
		"image/x-icon":       "image/vnd.microsoft.icon",
		"application/x-gzip": "application/gzip",
		"image/jpg":          "image/jpeg",
		"IMAGE/PNG":          "image/png",
		"video/avi":          "video/x-msvideo",
	}
	for in, want := range cases {
		if got := mimenorm.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Unknown_PassesThrough(t *testing.T) {
	in := "application/x-my-custom-format"
	if got := mimenorm.Normalize(in); got != in {
		t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
	}
}

func TestNormalize_StripsParameters(t *testing.T) {
	got := mimenorm.Normalize("text/plain; charset=utf-8")
	if got != "text/plain" {
		t.Errorf("Normalize with params = %q, want text/plain", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"audio/x-wav",
		"image/x-icon",
		"application/octet-stream",
		"IMAGE/X-PNG",
		"",
	}
	for _, in := range inputs {
		once := mimenorm.Normalize(in)
		twice := mimenorm.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
