// Package aheap implements the inline driver's change heap: a priority
// queue over nodes ordered so that the most recently born node is popped
// first, with push idempotency so a node already queued for revisit is
// never queued twice.
//
// Processing newest-first is what makes the inline propagation terminate
// in a single upward sweep per generation: a naive FIFO can revisit an
// ancestor before its descendants' changes have settled, giving quadratic
// behavior.
package aheap

import (
	"container/heap"

	"github.com/foretime/ancestry/pkg/ancestry/graph"
)

// Heap is a deduplicating priority queue of *graph.Node, ordered by
// BirthTime descending, ties broken by Index descending for a
// deterministic (if arbitrary) tie-break.
type Heap struct {
	items   nodeHeap
	present map[*graph.Node]bool
}

// New creates an empty change heap.
func New() *Heap {
	return &Heap{present: make(map[*graph.Node]bool)}
}

// Push enqueues n if it is not already queued. Idempotent.
func (h *Heap) Push(n *graph.Node) {
	if h.present[n] {
		return
	}
	h.present[n] = true
	heap.Push(&h.items, n)
}

// Pop removes and returns the most-recent node in the heap. Panics if the
// heap is empty; callers must check IsEmpty first.
func (h *Heap) Pop() *graph.Node {
	n := heap.Pop(&h.items).(*graph.Node)
	delete(h.present, n)
	return n
}

// IsEmpty reports whether the heap holds no nodes.
func (h *Heap) IsEmpty() bool { return h.items.Len() == 0 }

// Len returns the number of nodes currently queued.
func (h *Heap) Len() int { return h.items.Len() }

// nodeHeap implements container/heap.Interface over *graph.Node.
type nodeHeap []*graph.Node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].BirthTime != h[j].BirthTime {
		return h[i].BirthTime > h[j].BirthTime
	}
	return h[i].Index > h[j].Index
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(*graph.Node))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
