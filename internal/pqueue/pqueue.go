// Package pqueue implements a min-heap priority queue of caller-supplied
// items, keyed by accumulated cost, used by internal/graph's path search.
//
// It is built on container/heap rather than a third-party heap library: the
// teacher module reaches for third-party packages at the domain-I/O layer
// (libvips, image codecs, object storage) but uses plain standard-library
// data structures (sync.Pool, atomic counters) for its internal plumbing, and
// this queue follows that precedent.
package pqueue

import "container/heap"

// Item is a value stored in the queue together with its cost and insertion
// sequence number, used to break cost ties deterministically.
type Item[T any] struct {
	Value T
	Cost  float64
	seq   uint64
}

// Queue is a min-heap ordered by Item.Cost, with ties broken by insertion
// order (the item added first among equal-cost items is polled first).
type Queue[T any] struct {
	h    innerHeap[T]
	next uint64
}

// New returns an empty Queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{h: innerHeap[T]{}}
}

// Add inserts item with the given cost. O(log n). Never fails.
func (q *Queue[T]) Add(value T, cost float64) {
	heap.Push(&q.h, Item[T]{Value: value, Cost: cost, seq: q.next})
	q.next++
}

// Poll removes and returns the minimum-cost item. The second return value is
// false if the queue was empty.
func (q *Queue[T]) Poll() (Item[T], bool) {
	if q.h.Len() == 0 {
		return Item[T]{}, false
	}
	it := heap.Pop(&q.h).(Item[T])
	return it, true
}

// Peek returns the minimum-cost item without removing it.
func (q *Queue[T]) Peek() (Item[T], bool) {
	if q.h.Len() == 0 {
		return Item[T]{}, false
	}
	return q.h[0], true
}

// Size returns the number of items currently queued.
func (q *Queue[T]) Size() int { return q.h.Len() }

// Empty reports whether the queue has no items.
func (q *Queue[T]) Empty() bool { return q.h.Len() == 0 }

// ── container/heap plumbing ─────────────────────────────────────────────────

type innerHeap[T any] []Item[T]

func (h innerHeap[T]) Len() int { return len(h) }

func (h innerHeap[T]) Less(i, j int) bool {
	if h[i].Cost != h[j].Cost {
		return h[i].Cost < h[j].Cost
	}
	return h[i].seq < h[j].seq
}

func (h innerHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *innerHeap[T]) Push(x any) {
	*h = append(*h, x.(Item[T]))
}

func (h *innerHeap[T]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
