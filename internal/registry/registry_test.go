package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/registry"
)

type fakeHandler struct {
	name        string
	formats     []handler.FormatDescriptor
	initErr     error
	initCalls   int
	anyInput    bool
}

func (h *fakeHandler) Name() string                            { return h.name }
func (h *fakeHandler) SupportedFormats() []handler.FormatDescriptor { return h.formats }
func (h *fakeHandler) SupportAnyInput() bool                    { return h.anyInput }
func (h *fakeHandler) Ready() bool                              { return h.initErr == nil }
func (h *fakeHandler) Init(context.Context) error {
	h.initCalls++
	return h.initErr
}
func (h *fakeHandler) DoConvert(context.Context, []handler.File, handler.FormatDescriptor, handler.FormatDescriptor) ([]handler.File, error) {
	return nil, nil
}

func pngFmt(from, to bool) handler.FormatDescriptor {
	return handler.FormatDescriptor{
		Name: "PNG Image", Format: "png", Extension: "png",
		MIME: "image/png", From: from, To: to, Lossless: true,
		Category: []string{"image"},
	}
}

func TestBuild_FlattensOptionsAndNormalizesMIME(t *testing.T) {
	h := &fakeHandler{name: "canvasToBlob", formats: []handler.FormatDescriptor{
		{Name: "PNG", Format: "png", Extension: "png", MIME: "image/x-png", From: true, To: true, Category: []string{"image"}},
	}}
	reg := registry.New()
	if err := reg.Build(context.Background(), []handler.Handler{h}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	opts := reg.Options()
	if len(opts) != 1 {
		t.Fatalf("len(opts) = %d, want 1", len(opts))
	}
	if opts[0].Format.MIME != "image/png" {
		t.Errorf("MIME not normalized: %q", opts[0].Format.MIME)
	}
}

func TestBuild_SkipsFormatsWithoutMIME(t *testing.T) {
	h := &fakeHandler{name: "h", formats: []handler.FormatDescriptor{
		{Name: "no mime", Format: "x", From: true},
		pngFmt(true, true),
	}}
	reg := registry.New()
	_ = reg.Build(context.Background(), []handler.Handler{h})
	if len(reg.Options()) != 1 {
		t.Fatalf("expected formats with empty MIME to be skipped, got %d options", len(reg.Options()))
	}
}

func TestBuild_SkipsFailedHandlerInit(t *testing.T) {
	bad := &fakeHandler{name: "bad", initErr: errors.New("boom"), formats: []handler.FormatDescriptor{pngFmt(true, true)}}
	good := &fakeHandler{name: "good", formats: []handler.FormatDescriptor{pngFmt(true, true)}}
	reg := registry.New()
	if err := reg.Build(context.Background(), []handler.Handler{bad, good}); err != nil {
		t.Fatalf("Build should tolerate a failing handler: %v", err)
	}
	if len(reg.Options()) != 1 {
		t.Fatalf("expected only good handler's option, got %d", len(reg.Options()))
	}
}

func TestBuild_DuplicateHandlerNameIsFatal(t *testing.T) {
	a := &fakeHandler{name: "dup", formats: []handler.FormatDescriptor{pngFmt(true, true)}}
	b := &fakeHandler{name: "dup", formats: []handler.FormatDescriptor{pngFmt(true, true)}}
	reg := registry.New()
	if err := reg.Build(context.Background(), []handler.Handler{a, b}); err == nil {
		t.Fatal("expected duplicate handler name to be a fatal error")
	}
}

func TestByExtensionAndByMime(t *testing.T) {
	h := &fakeHandler{name: "h", formats: []handler.FormatDescriptor{pngFmt(true, true)}}
	reg := registry.New()
	_ = reg.Build(context.Background(), []handler.Handler{h})

	if _, ok := reg.ByExtension("PNG"); !ok {
		t.Error("ByExtension should be case-insensitive")
	}
	if _, ok := reg.ByMime("image/x-png"); !ok {
		t.Error("ByMime should normalize before lookup")
	}
	if _, ok := reg.ByMime("application/does-not-exist"); ok {
		t.Error("ByMime should not match unknown mime")
	}
}

func TestCache_RoundTrip(t *testing.T) {
	h := &fakeHandler{name: "h", formats: []handler.FormatDescriptor{pngFmt(true, true)}}
	reg := registry.New()
	_ = reg.Build(context.Background(), []handler.Handler{h})

	data, err := json.Marshal(reg.Serialize())
	if err != nil {
		t.Fatalf("marshal cache: %v", err)
	}

	restored, err := registry.DecodeCache(data)
	if err != nil {
		t.Fatalf("DecodeCache: %v", err)
	}

	reg2 := registry.New()
	reg2.LoadCache(restored)
	if len(reg2.FormatsFor("h")) != 1 {
		t.Fatalf("restored cache missing formats for h")
	}
}

func TestCache_EnvelopeVariant(t *testing.T) {
	data := []byte(`{"cache": [{"handlerName": "h", "formats": []}]}`)
	c, err := registry.DecodeCache(data)
	if err != nil {
		t.Fatalf("DecodeCache envelope: %v", err)
	}
	if len(c) != 1 || c[0].HandlerName != "h" {
		t.Fatalf("unexpected decoded cache: %+v", c)
	}
}
