package canvasimage_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/handler/canvasimage"
)

func formatFor(tag string) handler.FormatDescriptor {
	h := canvasimage.New()
	for _, f := range h.SupportedFormats() {
		if f.Format == tag {
			return f
		}
	}
	panic("no such format: " + tag)
}

func sampleGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.White, color.Black})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("seeding gif: %v", err)
	}
	return buf.Bytes()
}

func TestDoConvert_GIFToBMP(t *testing.T) {
	h := canvasimage.New()
	files := []handler.File{{Name: "frame", Bytes: sampleGIF(t)}}

	out, err := h.DoConvert(context.Background(), files, formatFor("gif"), formatFor("bmp"))
	if err != nil {
		t.Fatalf("DoConvert: %v", err)
	}
	if len(out) != 1 || len(out[0].Bytes) == 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out[0].Name != "frame.bmp" {
		t.Errorf("Name = %q, want frame.bmp", out[0].Name)
	}
}

func TestDoConvert_GIFToTIFF(t *testing.T) {
	h := canvasimage.New()
	files := []handler.File{{Name: "frame", Bytes: sampleGIF(t)}}

	out, err := h.DoConvert(context.Background(), files, formatFor("gif"), formatFor("tiff"))
	if err != nil {
		t.Fatalf("DoConvert: %v", err)
	}
	if len(out) != 1 || len(out[0].Bytes) == 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestDoConvert_NoInputFilesIsAnError(t *testing.T) {
	h := canvasimage.New()
	if _, err := h.DoConvert(context.Background(), nil, formatFor("gif"), formatFor("bmp")); err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestSupportAnyInput_IsTrue(t *testing.T) {
	if !canvasimage.New().SupportAnyInput() {
		t.Fatal("expected canvasimage to support any input as the fallback handler")
	}
}
