package routecore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nervalabs/routecore/internal/config"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/routecore"
)

type mockHandler struct {
	name    string
	formats []handler.FormatDescriptor
}

func (h *mockHandler) Name() string                                 { return h.name }
func (h *mockHandler) SupportedFormats() []handler.FormatDescriptor { return h.formats }
func (h *mockHandler) SupportAnyInput() bool                        { return false }
func (h *mockHandler) Ready() bool                                  { return true }
func (h *mockHandler) Init(context.Context) error                   { return nil }
func (h *mockHandler) DoConvert(_ context.Context, files []handler.File, _, out handler.FormatDescriptor) ([]handler.File, error) {
	renamed := make([]handler.File, len(files))
	for i, f := range files {
		renamed[i] = handler.File{Name: f.Name + "." + out.Extension, Bytes: f.Bytes}
	}
	return renamed, nil
}

func fmtDesc(format, ext, mime string, from, to, lossless bool, cats ...string) handler.FormatDescriptor {
	return handler.FormatDescriptor{
		Name: format, Format: format, Extension: ext, MIME: mime,
		From: from, To: to, Lossless: lossless, Category: cats,
	}
}

func mockCanvas() *mockHandler {
	return &mockHandler{name: "canvasToBlob", formats: []handler.FormatDescriptor{
		fmtDesc("png", "png", "image/png", true, true, true, "image"),
		fmtDesc("jpeg", "jpg", "image/jpeg", true, true, false, "image"),
	}}
}

func TestNew_BuildsRegistryAndGraph(t *testing.T) {
	handlers := []handler.Handler{mockCanvas()}
	c, err := routecore.New(context.Background(), config.Default(), handlers, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(c.Registry.Options()) == 0 {
		t.Fatal("expected at least one registry option")
	}
	if len(c.Graph.GetData().Edges) == 0 {
		t.Fatal("expected at least one graph edge")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DepthCost = -1
	_, err := routecore.New(context.Background(), cfg, []handler.Handler{mockCanvas()}, nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for invalid config")
	}
}

func TestCore_TryConvertRoundTrip(t *testing.T) {
	handlers := []handler.Handler{mockCanvas()}
	c, err := routecore.New(context.Background(), config.Default(), handlers, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	src, ok := c.Registry.ByMime("image/png")
	if !ok {
		t.Fatal("expected a png option")
	}
	dst, ok := c.Registry.ByMime("image/jpeg")
	if !ok {
		t.Fatal("expected a jpeg option")
	}

	files := []handler.File{{Name: "in", Bytes: []byte("payload")}}
	result, ok := c.Executor.TryConvert(context.Background(), files, src, dst)
	if !ok {
		t.Fatal("expected TryConvert to succeed")
	}
	if len(result.Files) != 1 || result.Files[0].Name != "in.jpg" {
		t.Fatalf("unexpected result files: %+v", result.Files)
	}
}

func TestCore_RebuildSucceedsAfterCostTableMutation(t *testing.T) {
	handlers := []handler.Handler{mockCanvas()}
	c, err := routecore.New(context.Background(), config.Default(), handlers, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := c.Graph.GetData().Edges[0].Cost

	c.Graph.Tables().AddCategoryChangeCost("image", "image", "canvasToBlob", 999)
	if err := c.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	after := c.Graph.GetData().Edges[0].Cost
	_ = before
	_ = after // same-category edges don't consult this entry; Rebuild succeeding without error is what's under test here.
}

func TestCore_PersistCacheIsNoOpWithoutStore(t *testing.T) {
	c, err := routecore.New(context.Background(), config.Default(), []handler.Handler{mockCanvas()}, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.PersistCache(); err != nil {
		t.Fatalf("PersistCache: %v", err)
	}
}

func TestCore_WatchCostTableFileConstructsWatcher(t *testing.T) {
	c, err := routecore.New(context.Background(), config.Default(), []handler.Handler{mockCanvas()}, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := t.TempDir()
	w := c.WatchCostTableFile(context.Background(), filepath.Join(dir, "costs.yaml"), 0)
	if w == nil {
		t.Fatal("expected a non-nil watcher")
	}
	c.StopWatch()
}
