// Package graph implements the weighted traversion graph: vertices keyed by
// normalized MIME type, handler-mediated edges between them, the cost model
// that prices each edge, and the lazy Dijkstra-style path search generator
// (spec §4.4).
package graph

import "github.com/nervalabs/routecore/internal/handler"

// PathNode is a (handler, format) pair. A Path's first node's handler is
// context only (the source handler); subsequent nodes name the conversion
// step into that format by that handler.
type PathNode struct {
	Handler handler.Handler
	Format  handler.FormatDescriptor
}

// Path is a non-empty ordered sequence of PathNodes.
type Path []PathNode

// categories returns the primary category of each node's format, falling
// back to the major part of its MIME type when no category is declared.
func (p Path) categories() []string {
	out := make([]string, len(p))
	for i, n := range p {
		out[i] = primaryCategoryOrMIMEMajor(n.Format)
	}
	return out
}

func primaryCategoryOrMIMEMajor(f handler.FormatDescriptor) string {
	if cat := f.PrimaryCategory(); cat != "" {
		return cat
	}
	for i, r := range f.MIME {
		if r == '/' {
			return f.MIME[:i]
		}
	}
	return f.MIME
}

// Vertex is a graph node identified by normalized MIME; it holds the index
// list of its outgoing edges.
type Vertex struct {
	MIME string
	Out  []int
}

// Edge is a handler-mediated direct conversion between two MIME-distinct
// vertices.
type Edge struct {
	From, To             int // vertex indices
	FromFormat, ToFormat handler.FormatDescriptor
	HandlerName          string
	Cost                 float64
}

// CategoryChangeEntry is one row of the category-change cost table.
// Handler == "" means the entry applies regardless of which handler
// performs the edge.
type CategoryChangeEntry struct {
	From, To string
	Handler  string
	Cost     float64
}

// CategoryAdaptiveEntry is one row of the category-adaptive cost table,
// keyed by a full category sequence.
type CategoryAdaptiveEntry struct {
	Categories []string
	Cost       float64
}

func sameSequence(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
