package vipsimage_test

import (
	"testing"

	"github.com/nervalabs/routecore/internal/handler/vipsimage"
)

func TestNew_DeclaresExpectedFormats(t *testing.T) {
	h := vipsimage.New(vipsimage.Config{})
	if h.Name() != "vipsimage" {
		t.Fatalf("Name() = %q, want vipsimage", h.Name())
	}
	if h.Ready() {
		t.Fatal("expected Ready() to be false before Init")
	}
	if h.SupportAnyInput() {
		t.Fatal("vipsimage should not claim SupportAnyInput")
	}

	formats := h.SupportedFormats()
	want := map[string]bool{"png": false, "jpeg": false, "webp": false, "avif": false, "heif": false}
	for _, f := range formats {
		if _, ok := want[f.Format]; !ok {
			t.Errorf("unexpected format %q", f.Format)
		}
		want[f.Format] = true
		if !f.From || !f.To {
			t.Errorf("format %q expected both From and To true", f.Format)
		}
		if f.PrimaryCategory() != "image" {
			t.Errorf("format %q expected primary category image, got %q", f.Format, f.PrimaryCategory())
		}
	}
	for format, seen := range want {
		if !seen {
			t.Errorf("expected format %q to be declared", format)
		}
	}
}
