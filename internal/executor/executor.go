// Package executor drives the handler protocol along candidate paths
// produced by internal/graph until one full conversion succeeds (spec §4.5).
package executor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/graph"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/hooks"
	"github.com/nervalabs/routecore/internal/registry"
)

// Result is the successful outcome of TryConvert: the final files and the
// path that produced them.
type Result struct {
	Files []handler.File
	Path  graph.Path
}

// PreProbe runs a best-effort, side-effect-free inspection of the input
// files at the start of each TryConvert. It runs in an errgroup goroutine
// that TryConvert waits on before the path search begins, so it does not
// overlap with any handler's Init or DoConvert. A PreProbe error never fails
// the conversion; it is logged and ignored, and the strictly sequential,
// single-path-at-a-time contract spec §5 mandates is unchanged.
type PreProbe func(ctx context.Context, files []handler.File) error

// Executor drives the handler protocol across multi-hop paths. It holds a
// per-handler mutex so that at most one DoConvert is in flight per handler
// at a time, the Go realization of spec §5's "handlers are single-owner"
// rule.
type Executor struct {
	graph    *graph.Graph
	registry *registry.Registry
	logger   hooks.Logger
	step     hooks.StepHook
	preProbe PreProbe

	mu           sync.Mutex
	handlerLocks map[string]*sync.Mutex
}

// New returns an Executor driving g and reg. logger and step may be nil.
func New(g *graph.Graph, reg *registry.Registry, logger hooks.Logger, step hooks.StepHook) *Executor {
	return &Executor{
		graph:        g,
		registry:     reg,
		logger:       logger,
		step:         step,
		handlerLocks: make(map[string]*sync.Mutex),
	}
}

// WithPreProbe attaches a PreProbe run to completion at the start of each
// TryConvert, before the first candidate path is attempted.
func (e *Executor) WithPreProbe(p PreProbe) *Executor {
	e.preProbe = p
	return e
}

func (e *Executor) lockFor(handlerName string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.handlerLocks[handlerName]
	if !ok {
		l = &sync.Mutex{}
		e.handlerLocks[handlerName] = l
	}
	return l
}

func (e *Executor) logDebug(msg string, fields ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, fields...)
	}
}

func (e *Executor) logWarn(msg string, fields ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, fields...)
	}
}

// TryConvert iterates candidate paths from sourceOption to targetOption,
// attempting each until one succeeds, per spec §4.5.
func (e *Executor) TryConvert(ctx context.Context, files []handler.File, sourceOption, targetOption registry.Option) (*Result, bool) {
	sourceNode := graph.PathNode{Handler: sourceOption.Handler, Format: sourceOption.Format}
	targetNode := graph.PathNode{Handler: targetOption.Handler, Format: targetOption.Format}

	if e.preProbe != nil {
		e.runPreProbe(ctx, files)
	}

	// simpleMode=true: any handler reaching the target MIME is an
	// acceptable candidate. substituteTargetHandler then cosmetically
	// swaps in the caller's exact target option when a candidate's last
	// hop happens to already use that handler (spec §4.5 step 2).
	search := e.graph.Search(sourceNode, targetNode, true)
	for {
		path, ok := search.Next()
		if !ok {
			return nil, false
		}

		candidate := substituteTargetHandler(path, targetNode)

		outFiles, err := e.attemptPath(ctx, files, candidate)
		if err != nil {
			e.logWarn("executor.path.abandoned", "error", err.Error())
			continue
		}
		return &Result{Files: outFiles, Path: candidate}, true
	}
}

// runPreProbe runs the configured PreProbe in an errgroup and waits for it
// to finish, swallowing any error per its documented contract. Nothing else
// runs while it waits.
func (e *Executor) runPreProbe(ctx context.Context, files []handler.File) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.preProbe(gctx, files)
	})
	if err := g.Wait(); err != nil {
		e.logDebug("executor.preprobe.failed", "error", err.Error())
	}
}

// substituteTargetHandler replaces the last path node's handler/format with
// targetNode's exact option when the last node's handler identity already
// matches, preserving the user-intended handler when several are equivalent
// on MIME (spec §4.5 step 2).
func substituteTargetHandler(path graph.Path, targetNode graph.PathNode) graph.Path {
	if len(path) == 0 || targetNode.Handler == nil {
		return path
	}
	last := path[len(path)-1]
	if last.Handler.Name() != targetNode.Handler.Name() {
		return path
	}
	out := make(graph.Path, len(path))
	copy(out, path)
	out[len(out)-1] = targetNode
	return out
}

// attemptPath drives the handler protocol across one candidate path,
// per spec §4.5.
func (e *Executor) attemptPath(ctx context.Context, files []handler.File, path graph.Path) ([]handler.File, error) {
	for i := 1; i < len(path); i++ {
		prev, next := path[i-1], path[i]
		h := next.Handler

		if !h.Ready() {
			if err := h.Init(ctx); err != nil {
				return nil, apperrors.Wrap(apperrors.CategoryHandlerInit, "attemptPath.init", err)
			}
		}

		e.registry.SetFormatsFor(h.Name(), h.SupportedFormats())

		inputFormat, ok := findInputFormat(h.SupportedFormats(), prev.Format.MIME)
		if !ok {
			return nil, apperrors.New(apperrors.CategoryConvert, "attemptPath.locateInput", apperrors.ErrInputFormatMissing)
		}

		outFiles, err := e.runStep(ctx, h, files, inputFormat, next.Format, next)
		if err != nil {
			return nil, err
		}
		if hasEmptyOutput(outFiles) {
			return nil, apperrors.New(apperrors.CategoryConvert, "attemptPath.emptyOutput", apperrors.ErrEmptyOutput)
		}

		files = outFiles
	}
	return files, nil
}

func (e *Executor) runStep(ctx context.Context, h handler.Handler, files []handler.File, inputFormat, outputFormat handler.FormatDescriptor, node graph.PathNode) (outFiles []handler.File, err error) {
	lock := e.lockFor(h.Name())
	lock.Lock()
	defer lock.Unlock()

	if e.step != nil {
		e.step.BeforeStep(ctx, h.Name(), node)
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.CategoryConvert, "doConvert.panic", panicToError(r))
		}
		if e.step != nil {
			e.step.AfterStep(ctx, h.Name(), node, time.Since(start), err)
		}
	}()

	// The yield barrier: two successive frame-scheduling points, the
	// literal Go equivalent of spec §4.5's "two successive
	// frame-scheduling points or equivalent" cooperative-yield note.
	runtime.Gosched()
	runtime.Gosched()

	outFiles, err = h.DoConvert(ctx, files, inputFormat, outputFormat)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConvert, "doConvert", err)
	}
	return outFiles, nil
}

func findInputFormat(formats []handler.FormatDescriptor, mime string) (handler.FormatDescriptor, bool) {
	for _, f := range formats {
		if f.MIME == mime && f.From {
			return f, true
		}
	}
	return handler.FormatDescriptor{}, false
}

func hasEmptyOutput(files []handler.File) bool {
	if len(files) == 0 {
		return true
	}
	for _, f := range files {
		if len(f.Bytes) == 0 {
			return true
		}
	}
	return false
}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return apperrors.ErrHandlerPanic
}
