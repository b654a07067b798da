// Package watchcfg watches the cost-table YAML file on disk and reapplies it
// to a graph's CostTables on change, so operators can retune routing weights
// without restarting the process.
package watchcfg

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/graph"
	"github.com/nervalabs/routecore/internal/hooks"
)

// TableFile is the on-disk shape of a cost-table override file (spec §4.4's
// category-change and category-adaptive tables, expressed as YAML).
type TableFile struct {
	Changes  []graph.CategoryChangeEntry   `yaml:"changes"`
	Adaptive []graph.CategoryAdaptiveEntry `yaml:"adaptive"`
}

// LoadTableFile reads and parses a cost-table file.
func LoadTableFile(path string) (TableFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TableFile{}, apperrors.Wrap(apperrors.CategoryConfig, "watchcfg.load", err)
	}
	var tf TableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return TableFile{}, apperrors.Wrap(apperrors.CategoryConfig, "watchcfg.parse", err)
	}
	return tf, nil
}

// Apply upserts every entry of tf into tables: existing keys are updated in
// place, new keys are added. It never removes an entry absent from tf, so a
// partial override file only touches the rows it names.
func Apply(tables *graph.CostTables, tf TableFile) {
	for _, e := range tf.Changes {
		if !tables.UpdateCategoryChangeCost(e.From, e.To, e.Handler, e.Cost) {
			tables.AddCategoryChangeCost(e.From, e.To, e.Handler, e.Cost)
		}
	}
	for _, e := range tf.Adaptive {
		if !tables.UpdateCategoryAdaptiveCost(e.Categories, e.Cost) {
			tables.AddCategoryAdaptiveCost(e.Categories, e.Cost)
		}
	}
}

// Rebuilder is the callback invoked after a cost-table file changes; it is
// expected to call the owning graph.Build again.
type Rebuilder func() error

// Watcher reloads a single cost-table file on every debounced write and
// hands the parsed result to Apply before invoking onChange.
type Watcher struct {
	path     string
	tables   *graph.CostTables
	onChange Rebuilder
	debounce time.Duration
	logger   hooks.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// New creates a Watcher for path. debounce coalesces rapid successive writes
// (editors often write a file in more than one syscall) into a single
// reload.
func New(path string, tables *graph.CostTables, onChange Rebuilder, debounce time.Duration, logger hooks.Logger) *Watcher {
	return &Watcher{
		path:     path,
		tables:   tables,
		onChange: onChange,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start watches the file and blocks until Stop is called or fsnotify closes
// its event channel. It reloads and applies the file once up front so the
// tables reflect its contents even if no write ever happens.
func (w *Watcher) Start() error {
	if tf, err := LoadTableFile(w.path); err == nil {
		Apply(w.tables, tf)
	} else if w.logger != nil {
		w.logger.Warn("watchcfg.initial_load_failed", "path", w.path, "error", err.Error())
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryConfig, "watchcfg.newwatcher", err)
	}
	w.watcher = fsw
	defer fsw.Close()

	if err := fsw.Add(w.path); err != nil {
		return apperrors.Wrap(apperrors.CategoryConfig, "watchcfg.add", err)
	}

	var timer *time.Timer
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Warn("watchcfg.fsnotify_error", "error", err.Error())
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return nil
		}
	}
}

func (w *Watcher) reload() {
	tf, err := LoadTableFile(w.path)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("watchcfg.reload_failed", "path", w.path, "error", err.Error())
		}
		return
	}
	Apply(w.tables, tf)
	if w.onChange == nil {
		return
	}
	if err := w.onChange(); err != nil && w.logger != nil {
		w.logger.Error("watchcfg.rebuild_failed", "error", err.Error())
	}
}

// Stop ends the watch loop. Safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
