package graph

import (
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/registry"
)

// EventType names one of the three opaque path-search events (spec §6).
type EventType string

const (
	EventSearching EventType = "searching"
	EventFound     EventType = "found"
	EventSkipped   EventType = "skipped"
)

// Listener receives path-search events synchronously. Listeners must not
// mutate the graph or the path they are handed.
type Listener func(event EventType, path Path)

// Graph is the traversion graph: vertices keyed by normalized MIME, edges
// mediated by handlers, and the mutable cost tables that priced them at the
// last Build.
type Graph struct {
	vertices []Vertex
	edges    []Edge

	mimeIndex    map[string]int
	handlers     map[string]handler.Handler
	handlerOrder []string

	tables           *CostTables
	constants        Constants
	strictCategories bool
	safetyFilter     bool

	listeners []Listener
}

// New returns an empty Graph. Call Build to populate it.
func New(tables *CostTables, constants Constants, strictCategories, safetyFilter bool) *Graph {
	if tables == nil {
		tables = NewCostTables()
	}
	return &Graph{
		tables:           tables,
		constants:        constants,
		strictCategories: strictCategories,
		safetyFilter:     safetyFilter,
	}
}

// Tables returns the graph's mutable cost tables. Mutations via the returned
// value do not retroactively re-cost an already-built graph; call Build
// again to apply them.
func (g *Graph) Tables() *CostTables { return g.tables }

// AddListener registers an event listener invoked synchronously at every
// "searching"/"found"/"skipped" point of every search run against this
// graph from this point forward.
func (g *Graph) AddListener(l Listener) { g.listeners = append(g.listeners, l) }

func (g *Graph) emit(event EventType, path Path) {
	for _, l := range g.listeners {
		l(event, path)
	}
}

func (g *Graph) vertexIndex(mime string) int {
	if idx, ok := g.mimeIndex[mime]; ok {
		return idx
	}
	idx := len(g.vertices)
	g.vertices = append(g.vertices, Vertex{MIME: mime})
	g.mimeIndex[mime] = idx
	return idx
}

// VertexIndexByMIME looks up a vertex by normalized MIME type.
func (g *Graph) VertexIndexByMIME(mime string) (int, bool) {
	idx, ok := g.mimeIndex[mime]
	return idx, ok
}

func (g *Graph) handlerByName(name string) (handler.Handler, bool) {
	h, ok := g.handlers[name]
	return h, ok
}

// Build (re)constructs the graph from handlers' cached, registry-declared
// format lists. Build is deterministic given a fixed input ordering: it
// iterates handlers in the order given, and within a handler, formats in
// the order the registry cached them. A rebuild discards all existing
// vertices and edges; cost-table mutations made since the last Build take
// effect here.
func (g *Graph) Build(handlers []handler.Handler, reg *registry.Registry) error {
	g.vertices = nil
	g.edges = nil
	g.mimeIndex = make(map[string]int)
	g.handlers = make(map[string]handler.Handler, len(handlers))
	g.handlerOrder = make([]string, 0, len(handlers))

	changeTable := g.tables.Changes()

	for hIdx, h := range handlers {
		g.handlers[h.Name()] = h
		g.handlerOrder = append(g.handlerOrder, h.Name())

		formats := reg.FormatsFor(h.Name())
		fromSet := filterFormats(formats, func(f handler.FormatDescriptor) bool { return f.From })
		toSet := filterFormats(formats, func(f handler.FormatDescriptor) bool { return f.To })

		for _, f := range fromSet {
			for _, t := range toSet {
				if f.MIME == t.MIME {
					continue // self-loops forbidden
				}
				cost := edgeCost(f, t, h.Name(), hIdx, formats, g.strictCategories, changeTable, g.constants)

				fromIdx := g.vertexIndex(f.MIME)
				toIdx := g.vertexIndex(t.MIME)
				edgeIdx := len(g.edges)
				g.edges = append(g.edges, Edge{
					From: fromIdx, To: toIdx,
					FromFormat: f, ToFormat: t,
					HandlerName: h.Name(),
					Cost:        cost,
				})
				g.vertices[fromIdx].Out = append(g.vertices[fromIdx].Out, edgeIdx)
			}
		}
	}
	return nil
}

func filterFormats(formats []handler.FormatDescriptor, pred func(handler.FormatDescriptor) bool) []handler.FormatDescriptor {
	out := make([]handler.FormatDescriptor, 0, len(formats))
	for _, f := range formats {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// Data is a deep-copied snapshot of the graph's structure plus both cost
// tables, for debugging and UI inspection (spec §4.4 GetData). It shares no
// mutable reference with the graph's internal storage.
type Data struct {
	Vertices []Vertex
	Edges    []Edge
	Changes  []CategoryChangeEntry
	Adaptive []CategoryAdaptiveEntry
}

// GetData returns a deep copy of the graph.
func (g *Graph) GetData() Data {
	vertices := make([]Vertex, len(g.vertices))
	for i, v := range g.vertices {
		out := make([]int, len(v.Out))
		copy(out, v.Out)
		vertices[i] = Vertex{MIME: v.MIME, Out: out}
	}

	edges := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		e.FromFormat.Category = cloneStrings(e.FromFormat.Category)
		e.ToFormat.Category = cloneStrings(e.ToFormat.Category)
		edges[i] = e
	}

	return Data{
		Vertices: vertices,
		Edges:    edges,
		Changes:  g.tables.Changes(),
		Adaptive: g.tables.Adaptive(),
	}
}
