// Package textdoc implements a charset-aware handler for plain text,
// Markdown, and HTML, normalizing any declared or sniffed input encoding to
// UTF-8 via golang.org/x/net/html/charset before performing the (textual,
// lossless-in-intent) conversion between the three.
package textdoc

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/handler"
)

// Handler converts between text/plain, text/markdown, and text/html.
type Handler struct{}

// New returns a Handler. It needs no setup.
func New() *Handler { return &Handler{} }

func (h *Handler) Name() string                { return "textdoc" }
func (h *Handler) Ready() bool                 { return true }
func (h *Handler) Init(context.Context) error  { return nil }
func (h *Handler) SupportAnyInput() bool       { return false }

func (h *Handler) SupportedFormats() []handler.FormatDescriptor {
	return []handler.FormatDescriptor{
		{Name: "Plain text", Format: "txt", Extension: "txt", MIME: "text/plain", From: true, To: true, Lossless: true, Category: []string{"text"}},
		{Name: "Markdown", Format: "md", Extension: "md", MIME: "text/markdown", From: true, To: true, Lossless: true, Category: []string{"text"}},
		{Name: "HTML", Format: "html", Extension: "html", MIME: "text/html", From: true, To: true, Category: []string{"text"}},
	}
}

// DoConvert normalizes inputFiles[0] to a UTF-8 string, then converts it
// from inputFormat's textual shape to outputFormat's.
func (h *Handler) DoConvert(ctx context.Context, inputFiles []handler.File, inputFormat, outputFormat handler.FormatDescriptor) ([]handler.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "textdoc.convert", err)
	}
	if len(inputFiles) == 0 {
		return nil, apperrors.New(apperrors.CategoryConvert, "textdoc.convert", fmt.Errorf("no input files"))
	}

	utf8Text, err := toUTF8(inputFiles[0].Bytes, inputFormat.MIME)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "textdoc.charset", err)
	}

	converted, err := convertText(utf8Text, inputFormat.Format, outputFormat.Format)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "textdoc.transform", err)
	}

	name := inputFiles[0].Name + "." + outputFormat.Extension
	return []handler.File{{Name: name, Bytes: []byte(converted)}}, nil
}

// toUTF8 decodes raw using the charset it declares or that charset.NewReader
// sniffs from its content, returning its UTF-8 text.
func toUTF8(raw []byte, mime string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), mime)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func convertText(text, from, to string) (string, error) {
	if from == to {
		return text, nil
	}
	switch to {
	case "txt":
		return toPlainText(text, from)
	case "md":
		return toMarkdown(text, from)
	case "html":
		return toHTML(text, from)
	default:
		return "", fmt.Errorf("unsupported output format %q", to)
	}
}

// toPlainText strips HTML tags when coming from HTML; Markdown source is
// already readable as plain text, so it passes through unchanged.
func toPlainText(text, from string) (string, error) {
	if from != "html" {
		return text, nil
	}
	return stripHTML(text)
}

// toMarkdown treats plain text as already-valid Markdown (no special
// characters to escape for a round-trip); HTML is stripped to its text
// content first, the same as toPlainText, since this handler does not
// attempt structural HTML-to-Markdown translation.
func toMarkdown(text, from string) (string, error) {
	if from == "html" {
		return stripHTML(text)
	}
	return text, nil
}

// toHTML wraps plain text or Markdown source in a minimal HTML document,
// escaping entities and turning blank-line-separated blocks into paragraphs.
func toHTML(text, from string) (string, error) {
	if from == "html" {
		return text, nil
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n")
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(para))
		b.WriteString("</p>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String(), nil
}

// stripHTML extracts the text content of an HTML document using a
// tokenizer, concatenating text nodes with single spaces.
func stripHTML(doc string) (string, error) {
	z := xhtml.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return strings.TrimSpace(b.String()), nil
		case xhtml.TextToken:
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}

var _ handler.Handler = (*Handler)(nil)
