// Package vipsimage implements a format-conversion handler.Handler backed by
// libvips (via govips), covering PNG, JPEG, WebP, AVIF, and HEIF — the
// formats the teacher's vips backend wires for decode/encode, extended here
// with the newer still-image codecs libvips itself supports.
package vipsimage

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/handler"
)

// Config tunes the shared libvips runtime. Zero value is a usable default.
type Config struct {
	DefaultQuality int
	MaxCacheSize   int
	ConcurrencyLevel int
	ReportLeaks    bool
}

// startupOnce guards govips.Startup, which a process may only call once
// regardless of how many Handler values exist.
var startupOnce sync.Once

// Handler is a libvips-backed handler.Handler. One process may only call
// govips.Startup once; constructing more than one Handler is safe, but only
// the first Config supplied takes effect.
type Handler struct {
	cfg   Config
	ready atomic.Bool
}

// New returns a Handler. Init performs the (idempotent, process-wide)
// libvips startup.
func New(cfg Config) *Handler {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 85
	}
	if cfg.ConcurrencyLevel <= 0 {
		cfg.ConcurrencyLevel = runtime.NumCPU()
	}
	return &Handler{cfg: cfg}
}

func (h *Handler) Name() string { return "vipsimage" }

func (h *Handler) Ready() bool { return h.ready.Load() }

func (h *Handler) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	startupOnce.Do(func() {
		govips.Startup(&govips.Config{
			ConcurrencyLevel: h.cfg.ConcurrencyLevel,
			MaxCacheSize:     h.cfg.MaxCacheSize,
			ReportLeaks:      h.cfg.ReportLeaks,
		})
	})
	h.ready.Store(true)
	return nil
}

// SupportAnyInput is false: vipsimage only claims the formats it explicitly
// declares below.
func (h *Handler) SupportAnyInput() bool { return false }

func (h *Handler) SupportedFormats() []handler.FormatDescriptor {
	return []handler.FormatDescriptor{
		desc("PNG", "png", "png", "image/png", true),
		desc("JPEG", "jpeg", "jpg", "image/jpeg", false),
		desc("WebP", "webp", "webp", "image/webp", false),
		desc("AVIF", "avif", "avif", "image/avif", false),
		desc("HEIF", "heif", "heic", "image/heif", false),
	}
}

func desc(name, format, ext, mime string, lossless bool) handler.FormatDescriptor {
	return handler.FormatDescriptor{
		Name: name, Format: format, Extension: ext, MIME: mime,
		From: true, To: true, Lossless: lossless, Category: []string{"image"},
	}
}

// DoConvert decodes inputFiles[0] with libvips and re-encodes it as
// outputFormat. Only the first input file is used; multi-file image inputs
// are not meaningful to this handler.
func (h *Handler) DoConvert(ctx context.Context, inputFiles []handler.File, inputFormat, outputFormat handler.FormatDescriptor) ([]handler.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "vipsimage.convert", err)
	}
	if len(inputFiles) == 0 {
		return nil, apperrors.New(apperrors.CategoryConvert, "vipsimage.convert", fmt.Errorf("no input files"))
	}

	ref, err := govips.NewImageFromBuffer(inputFiles[0].Bytes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "vipsimage.decode", err)
	}
	defer ref.Close()

	var out []byte
	switch outputFormat.Format {
	case "png":
		ep := govips.NewPngExportParams()
		out, _, err = ref.ExportPng(ep)
	case "jpeg":
		ep := govips.NewJpegExportParams()
		ep.Quality = h.cfg.DefaultQuality
		out, _, err = ref.ExportJpeg(ep)
	case "webp":
		ep := govips.NewWebpExportParams()
		ep.Quality = h.cfg.DefaultQuality
		out, _, err = ref.ExportWebp(ep)
	case "avif":
		ep := govips.NewAvifExportParams()
		ep.Quality = h.cfg.DefaultQuality
		out, _, err = ref.ExportAvif(ep)
	case "heif":
		ep := govips.NewHeifExportParams()
		ep.Quality = h.cfg.DefaultQuality
		out, _, err = ref.ExportHeif(ep)
	default:
		return nil, apperrors.New(apperrors.CategoryConvert, "vipsimage.convert",
			fmt.Errorf("unsupported output format %q", outputFormat.Format))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "vipsimage.encode."+outputFormat.Format, err)
	}

	name := inputFiles[0].Name + "." + outputFormat.Extension
	return []handler.File{{Name: name, Bytes: out}}, nil
}

var _ handler.Handler = (*Handler)(nil)
