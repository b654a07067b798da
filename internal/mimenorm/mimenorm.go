// Package mimenorm canonicalizes handler-declared MIME strings to a single
// spelling so that vertex lookup in the traversion graph is a plain string
// equality test.
package mimenorm

import (
	"mime"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// synonyms maps a raw MIME spelling to its canonical form. Unknown inputs
// pass through unchanged. Ordering is irrelevant for a map, but the table is
// authored grouped by family to make additions easy to place correctly.
var synonyms = map[string]string{
	// Audio
	"audio/x-wav":      "audio/wav",
	"audio/wave":       "audio/wav",
	"audio/vnd.wave":   "audio/wav",
	"audio/x-mpeg":     "audio/mpeg",
	"audio/mp3":        "audio/mpeg",
	"audio/x-mp3":      "audio/mpeg",
	"audio/x-m4a":      "audio/mp4",
	"audio/x-aac":      "audio/aac",
	"audio/x-flac":     "audio/flac",
	"audio/x-ms-wma":   "audio/x-ms-wma", // no canonical public MIME; kept stable

	// Image
	"image/x-icon":         "image/vnd.microsoft.icon",
	"image/ico":            "image/vnd.microsoft.icon",
	"image/x-png":          "image/png",
	"image/pjpeg":          "image/jpeg",
	"image/jpg":            "image/jpeg",
	"image/x-ms-bmp":       "image/bmp",
	"image/x-bmp":          "image/bmp",
	"image/x-tiff":         "image/tiff",
	"image/x-portable-pixmap": "image/x-portable-pixmap",
	"image/avif-sequence":  "image/avif",
	"image/heic-sequence":  "image/heic",
	"image/x-adobe-dng":    "image/x-adobe-dng",

	// Video
	"video/x-matroska":   "video/x-matroska",
	"video/quicktime":    "video/quicktime",
	"video/x-msvideo":    "video/x-msvideo",
	"video/avi":          "video/x-msvideo",
	"video/x-flv":        "video/x-flv",
	"video/x-ms-wmv":     "video/x-ms-wmv",

	// Text / document
	"text/xml":               "application/xml",
	"application/x-yaml":     "application/yaml",
	"text/yaml":              "application/yaml",
	"text/x-markdown":        "text/markdown",

	// Archive / data
	"application/x-gzip":        "application/gzip",
	"application/x-tar":         "application/x-tar",
	"application/x-7z-compressed": "application/x-7z-compressed",
	"application/x-zip-compressed": "application/zip",
	"application/x-rar-compressed": "application/vnd.rar",

	// Fonts
	"application/x-font-ttf":   "font/ttf",
	"application/x-font-otf":   "font/otf",
	"application/font-woff":    "font/woff",
	"application/font-woff2":   "font/woff2",
	"application/vnd.ms-fontobject": "application/vnd.ms-fontobject",
}

// Normalize canonicalizes a raw MIME string. It lowercases and Unicode
// NFC-normalizes the input, strips and (on success) discards any
// "; param=value" suffix via the standard library's media-type parser
// (format routing cares about the base type, not transport parameters), and
// finally consults the synonym table. Unknown inputs are returned unchanged
// other than the lowercase/NFC pass, so Normalize is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	cleaned := norm.NFC.String(strings.ToLower(strings.TrimSpace(raw)))

	if base, _, err := mime.ParseMediaType(cleaned); err == nil && base != "" {
		cleaned = base
	}

	if canon, ok := synonyms[cleaned]; ok {
		return canon
	}
	return cleaned
}
