package watchcfg_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nervalabs/routecore/internal/graph"
	"github.com/nervalabs/routecore/internal/watchcfg"
)

func TestLoadTableFile_ParsesChangesAndAdaptive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "costs.yaml")
	content := `
changes:
  - from: image
    to: audio
    cost: 5
adaptive:
  - categories: [text, image, audio]
    cost: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tf, err := watchcfg.LoadTableFile(path)
	if err != nil {
		t.Fatalf("LoadTableFile: %v", err)
	}
	if len(tf.Changes) != 1 || tf.Changes[0].From != "image" || tf.Changes[0].Cost != 5 {
		t.Fatalf("unexpected changes: %+v", tf.Changes)
	}
	if len(tf.Adaptive) != 1 || tf.Adaptive[0].Cost != 20 {
		t.Fatalf("unexpected adaptive: %+v", tf.Adaptive)
	}
}

func TestApply_UpdatesExistingAndAddsNewEntries(t *testing.T) {
	tables := graph.NewCostTables()

	tf := watchcfg.TableFile{
		Changes: []graph.CategoryChangeEntry{
			{From: "image", To: "audio", Cost: 99999}, // exists in defaults, should update
			{From: "text", To: "video", Cost: 3},      // new
		},
	}
	watchcfg.Apply(tables, tf)

	found := false
	for _, e := range tables.Changes() {
		if e.From == "image" && e.To == "audio" && e.Handler == "" {
			if e.Cost != 99999 {
				t.Fatalf("expected updated cost 99999, got %v", e.Cost)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected (image,audio,\"\") entry to survive Apply")
	}
	if !tables.HasCategoryChangeCost("text", "video", "") {
		t.Fatal("expected new (text,video,\"\") entry to be added")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "costs.yaml")
	if err := os.WriteFile(path, []byte("changes:\n  - from: text\n    to: video\n    cost: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tables := graph.NewCostTables()
	rebuilt := make(chan struct{}, 8)
	w := watchcfg.New(path, tables, func() error {
		rebuilt <- struct{}{}
		return nil
	}, 20*time.Millisecond, nil)

	go w.Start()
	defer w.Stop()

	// Allow the initial load (happens synchronously in Start before the
	// watch loop) a moment to land, then rewrite the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("changes:\n  - from: text\n    to: video\n    cost: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rebuilt:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload after write")
	}

	for _, e := range tables.Changes() {
		if e.From == "text" && e.To == "video" {
			if e.Cost != 2 {
				t.Fatalf("expected reloaded cost 2, got %v", e.Cost)
			}
			return
		}
	}
	t.Fatal("expected (text,video,\"\") entry in tables after reload")
}
