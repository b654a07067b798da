package graph

import "github.com/nervalabs/routecore/internal/pqueue"

// pathTail is a persistent-list node: a shared immutable prefix plus one
// extra step, so the priority queue stores a pointer rather than a copy of
// the path. A []PathNode is still materialized for every extension (to
// price it with adaptiveCost) and for every emitted event.
type pathTail struct {
	parent *pathTail
	node   PathNode
}

func (t *pathTail) toPath() Path {
	var rev Path
	for n := t; n != nil; n = n.parent {
		rev = append(rev, n.node)
	}
	out := make(Path, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

type frontier struct {
	vertexIdx     int
	tail          *pathTail
	visitedBorder int
}

// PathSearch is the lazy, stateful path-search iterator described in
// spec §4.4 and §9: each call to Next drives the Dijkstra-style frontier
// loop until it either yields a path or the frontier is exhausted.
// A PathSearch is restartable only by constructing a new one; it consumes
// its internal state as it is pulled.
type PathSearch struct {
	g                 *Graph
	targetHandlerName string
	simpleMode        bool
	safetyFilter      bool

	pq      *pqueue.Queue[frontier]
	visited []int // append-only; deliberately a linear-scan slice, not a set

	dstIdx     int
	exhausted  bool
	listeners  []Listener
}

// Search constructs a new path search from source to target. simpleMode
// relaxes the terminal-handler check: when true, or when target.Handler is
// nil, any path reaching the target's MIME is accepted regardless of which
// handler produced the final hop.
func (g *Graph) Search(source, target PathNode, simpleMode bool) *PathSearch {
	s := &PathSearch{
		g:            g,
		simpleMode:   simpleMode,
		safetyFilter: g.safetyFilter,
	}
	if target.Handler != nil {
		s.targetHandlerName = target.Handler.Name()
	}

	srcIdx, srcOK := g.VertexIndexByMIME(source.Format.MIME)
	dstIdx, dstOK := g.VertexIndexByMIME(target.Format.MIME)
	if !srcOK || !dstOK {
		s.exhausted = true
		return s
	}
	s.dstIdx = dstIdx

	s.pq = pqueue.New[frontier]()
	s.pq.Add(frontier{vertexIdx: srcIdx, tail: &pathTail{node: source}, visitedBorder: 0}, 0)
	return s
}

// AddListener registers a search-scoped event listener, invoked in addition
// to any listeners registered on the graph itself.
func (s *PathSearch) AddListener(l Listener) { s.listeners = append(s.listeners, l) }

func (s *PathSearch) emit(event EventType, path Path) {
	s.g.emit(event, path)
	for _, l := range s.listeners {
		l(event, path)
	}
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// Next advances the search and returns the next path in non-decreasing cost
// order, or ok=false once the frontier is exhausted.
func (s *PathSearch) Next() (Path, bool) {
	if s.exhausted {
		return nil, false
	}

	for {
		item, ok := s.pq.Poll()
		if !ok {
			s.exhausted = true
			return nil, false
		}
		popped := item.Value

		if pos := indexOf(s.visited, popped.vertexIdx); pos != -1 && pos < popped.visitedBorder {
			s.emit(EventSkipped, popped.tail.toPath())
			continue
		}

		if popped.vertexIdx == s.dstIdx {
			path := popped.tail.toPath()

			if s.safetyFilter && containsUnsafeTriple(path) {
				s.emit(EventSkipped, path)
				continue
			}

			lastHandlerName := path[len(path)-1].Handler.Name()
			if s.simpleMode || s.targetHandlerName == "" || lastHandlerName == s.targetHandlerName {
				s.emit(EventFound, path)
				return path, true
			}
			s.emit(EventSkipped, path)
			continue
		}

		s.visited = append(s.visited, popped.vertexIdx)
		s.emit(EventSearching, popped.tail.toPath())

		vertex := s.g.vertices[popped.vertexIdx]
		for _, edgeIdx := range vertex.Out {
			edge := s.g.edges[edgeIdx]

			if pos := indexOf(s.visited, edge.To); pos != -1 && pos < popped.visitedBorder {
				continue
			}

			h, ok := s.g.handlerByName(edge.HandlerName)
			if !ok {
				continue
			}

			newTail := &pathTail{parent: popped.tail, node: PathNode{Handler: h, Format: edge.ToFormat}}
			newPath := newTail.toPath()
			newCost := item.Cost + edge.Cost + adaptiveCost(newPath, s.g.tables.Adaptive())

			s.pq.Add(frontier{
				vertexIdx:     edge.To,
				tail:          newTail,
				visitedBorder: len(s.visited),
			}, newCost)
		}
	}
}

// All adapts Next into a Go 1.23+ range-over-func iterator, per spec §9's
// guidance that synchronous consumers may pull greedily.
func (s *PathSearch) All(yield func(Path) bool) {
	for {
		path, ok := s.Next()
		if !ok {
			return
		}
		if !yield(path) {
			return
		}
	}
}
