// Package routecore bundles the format registry, traversion graph, and
// conversion executor into a single object with no package-level mutable
// state (spec §9), so a process can host more than one independently
// configured core — for tests, for multi-tenant serving, or simply to avoid
// global init-order surprises.
package routecore

import (
	"context"
	"time"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/cachefile"
	"github.com/nervalabs/routecore/internal/config"
	"github.com/nervalabs/routecore/internal/events"
	"github.com/nervalabs/routecore/internal/executor"
	"github.com/nervalabs/routecore/internal/graph"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/hooks"
	"github.com/nervalabs/routecore/internal/registry"
	"github.com/nervalabs/routecore/internal/watchcfg"
)

// Core is the assembled conversion routing system: a registry of declared
// formats, the graph built from them, and the executor that drives handler
// conversions across graph paths.
type Core struct {
	Config   config.Config
	Registry *registry.Registry
	Graph    *graph.Graph
	Executor *executor.Executor
	Events   *events.Hub

	handlers []handler.Handler
	store    cachefile.Store
	logger   hooks.Logger

	watcher *watchcfg.Watcher
}

// New builds a Core from cfg and handlers. store may be nil, in which case
// the registry always rebuilds from scratch (no cache read or write).
// logger and step may be nil.
func New(ctx context.Context, cfg config.Config, handlers []handler.Handler, store cachefile.Store, logger hooks.Logger, step hooks.StepHook) (*Core, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "core.new", err)
	}

	reg := registry.New()
	if store != nil {
		cached, err := store.Load()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryCache, "core.new.loadcache", err)
		}
		if cached != nil {
			reg.LoadCache(cached)
		}
	}
	if err := reg.Build(ctx, handlers); err != nil {
		return nil, err
	}

	tables := graph.NewCostTables()
	constants := graph.Constants{
		DepthCost:                 cfg.DepthCost,
		DefaultCategoryChangeCost: cfg.DefaultCategoryChangeCost,
		LossyCostMultiplier:       cfg.LossyCostMultiplier,
		HandlerPriorityCost:       cfg.HandlerPriorityCost,
		FormatPriorityCost:        cfg.FormatPriorityCost,
	}
	g := graph.New(tables, constants, cfg.StrictCategories, cfg.SafetyFilter)
	if err := g.Build(handlers, reg); err != nil {
		return nil, err
	}

	hub := events.NewHub(logger)
	g.AddListener(hub.Listener())

	exec := executor.New(g, reg, logger, step)

	c := &Core{
		Config:   cfg,
		Registry: reg,
		Graph:    g,
		Executor: exec,
		Events:   hub,
		handlers: handlers,
		store:    store,
		logger:   logger,
	}
	return c, nil
}

// PersistCache writes the registry's current cache to the configured store.
// A no-op if Core was built without one.
func (c *Core) PersistCache() error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(c.Registry.Serialize())
}

// Rebuild reruns the registry and graph build protocol against the current
// handler set, picking up any newly ready handlers and any cost-table
// mutations made since the last build.
func (c *Core) Rebuild(ctx context.Context) error {
	if err := c.Registry.Build(ctx, c.handlers); err != nil {
		return err
	}
	return c.Graph.Build(c.handlers, c.Registry)
}

// WatchCostTableFile returns a watchcfg.Watcher over path that applies
// reloads to the graph's cost tables and triggers Rebuild on every debounced
// change. It does not start the watcher: Start blocks, so call it in its own
// goroutine; cancel via the returned Watcher's Stop.
func (c *Core) WatchCostTableFile(ctx context.Context, path string, debounce time.Duration) *watchcfg.Watcher {
	c.watcher = watchcfg.New(path, c.Graph.Tables(), func() error {
		return c.Rebuild(ctx)
	}, debounce, c.logger)
	return c.watcher
}

// StopWatch stops any running cost-table watcher. A no-op if none was
// started.
func (c *Core) StopWatch() {
	if c.watcher != nil {
		c.watcher.Stop()
	}
}
