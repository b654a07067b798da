// Package canvasimage implements a pure Go format-conversion handler for the
// image codecs the standard library and golang.org/x/image decode and
// encode without cgo: GIF, BMP, and TIFF. It is the fallback handler: no
// native library dependency, so it is always ready and willing to at least
// attempt any image input.
package canvasimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/handler"
)

// Handler is a cgo-free image format converter.
type Handler struct{}

// New returns a Handler. It needs no setup.
func New() *Handler { return &Handler{} }

func (h *Handler) Name() string { return "canvasimage" }

// Ready is always true: there is no external resource to initialize.
func (h *Handler) Ready() bool { return true }

func (h *Handler) Init(context.Context) error { return nil }

// SupportAnyInput marks canvasimage as willing to attempt decoding any image
// MIME type presented to it, not only the three it declares formats for,
// since the standard image package's format sniffing is broader than its own
// declared Format tags.
func (h *Handler) SupportAnyInput() bool { return true }

func (h *Handler) SupportedFormats() []handler.FormatDescriptor {
	return []handler.FormatDescriptor{
		{Name: "GIF", Format: "gif", Extension: "gif", MIME: "image/gif", From: true, To: true, Category: []string{"image"}},
		{Name: "BMP", Format: "bmp", Extension: "bmp", MIME: "image/bmp", From: true, To: true, Lossless: true, Category: []string{"image"}},
		{Name: "TIFF", Format: "tiff", Extension: "tiff", MIME: "image/tiff", From: true, To: true, Lossless: true, Category: []string{"image"}},
	}
}

func (h *Handler) DoConvert(ctx context.Context, inputFiles []handler.File, inputFormat, outputFormat handler.FormatDescriptor) ([]handler.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "canvasimage.convert", err)
	}
	if len(inputFiles) == 0 {
		return nil, apperrors.New(apperrors.CategoryConvert, "canvasimage.convert", fmt.Errorf("no input files"))
	}

	img, err := decode(inputFormat, inputFiles[0].Bytes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "canvasimage.decode", err)
	}

	out, err := encode(outputFormat, img)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "canvasimage.encode", err)
	}

	name := inputFiles[0].Name + "." + outputFormat.Extension
	return []handler.File{{Name: name, Bytes: out}}, nil
}

func decode(format handler.FormatDescriptor, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format.Format {
	case "gif":
		return gif.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	case "tiff":
		return tiff.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}

func encode(format handler.FormatDescriptor, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format.Format {
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format.Format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ handler.Handler = (*Handler)(nil)
