// Package sniff detects a MIME type from raw file bytes, for callers that
// hand the executor a file without a declared registry.Option to start from.
package sniff

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/nervalabs/routecore/internal/mimenorm"
)

// Detect returns the normalized MIME type of data's content. Detection never
// fails: unrecognized content falls back to mimetype's root type,
// application/octet-stream.
func Detect(data []byte) string {
	mt := mimetype.Detect(data)
	return mimenorm.Normalize(mt.String())
}

// Is reports whether data's sniffed content type is mime or a descendant of
// it in mimetype's detection hierarchy (e.g. Is(data, "text/plain") matches
// JSON and CSV content too).
func Is(data []byte, mime string) bool {
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is(mime) {
			return true
		}
	}
	return false
}
