package textdoc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/handler/textdoc"
)

func formatFor(t *testing.T, tag string) handler.FormatDescriptor {
	t.Helper()
	h := textdoc.New()
	for _, f := range h.SupportedFormats() {
		if f.Format == tag {
			return f
		}
	}
	t.Fatalf("no such format: %s", tag)
	return handler.FormatDescriptor{}
}

func TestDoConvert_PlainToHTML(t *testing.T) {
	h := textdoc.New()
	files := []handler.File{{Name: "note", Bytes: []byte("hello & welcome\n\nsecond paragraph")}}

	out, err := h.DoConvert(context.Background(), files, formatFor(t, "txt"), formatFor(t, "html"))
	if err != nil {
		t.Fatalf("DoConvert: %v", err)
	}
	body := string(out[0].Bytes)
	if !strings.Contains(body, "<p>hello &amp; welcome</p>") {
		t.Errorf("expected escaped first paragraph, got: %s", body)
	}
	if !strings.Contains(body, "<p>second paragraph</p>") {
		t.Errorf("expected second paragraph, got: %s", body)
	}
	if out[0].Name != "note.html" {
		t.Errorf("Name = %q, want note.html", out[0].Name)
	}
}

func TestDoConvert_HTMLToPlainStripsTags(t *testing.T) {
	h := textdoc.New()
	htmlDoc := `<html><body><p>Hello <b>World</b></p></body></html>`
	files := []handler.File{{Name: "page", Bytes: []byte(htmlDoc)}}

	out, err := h.DoConvert(context.Background(), files, formatFor(t, "html"), formatFor(t, "txt"))
	if err != nil {
		t.Fatalf("DoConvert: %v", err)
	}
	text := string(out[0].Bytes)
	if strings.Contains(text, "<") {
		t.Errorf("expected tags stripped, got: %q", text)
	}
	if !strings.Contains(text, "Hello") || !strings.Contains(text, "World") {
		t.Errorf("expected text content preserved, got: %q", text)
	}
}

func TestDoConvert_SameFormatIsIdentity(t *testing.T) {
	h := textdoc.New()
	files := []handler.File{{Name: "doc", Bytes: []byte("# Title\n\nbody text")}}

	out, err := h.DoConvert(context.Background(), files, formatFor(t, "md"), formatFor(t, "md"))
	if err != nil {
		t.Fatalf("DoConvert: %v", err)
	}
	if string(out[0].Bytes) != "# Title\n\nbody text" {
		t.Errorf("expected identity conversion, got: %q", out[0].Bytes)
	}
}

func TestDoConvert_NoInputFilesIsAnError(t *testing.T) {
	h := textdoc.New()
	if _, err := h.DoConvert(context.Background(), nil, formatFor(t, "txt"), formatFor(t, "md")); err == nil {
		t.Fatal("expected an error for empty input")
	}
}
