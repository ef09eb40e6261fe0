package aheap

import (
	"testing"

	"github.com/foretime/ancestry/pkg/ancestry/graph"
)

func TestHeapPopsNewestFirst(t *testing.T) {
	h := New()
	a := graph.New(0, 10, false)
	b := graph.New(1, 30, false)
	c := graph.New(2, 20, false)

	h.Push(a)
	h.Push(b)
	h.Push(c)

	var order []int64
	for !h.IsEmpty() {
		order = append(order, h.Pop().BirthTime)
	}

	want := []int64{30, 20, 10}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestHeapPushIsIdempotent(t *testing.T) {
	h := New()
	n := graph.New(0, 5, false)

	h.Push(n)
	h.Push(n)
	h.Push(n)

	if h.Len() != 1 {
		t.Fatalf("pushing the same node three times gave length %d, want 1", h.Len())
	}

	h.Pop()
	if !h.IsEmpty() {
		t.Fatalf("heap should be empty after popping the sole entry")
	}
}

func TestHeapBreaksTiesByIndexDescending(t *testing.T) {
	h := New()
	a := graph.New(5, 100, false)
	b := graph.New(9, 100, false)
	c := graph.New(3, 100, false)

	h.Push(a)
	h.Push(b)
	h.Push(c)

	var order []int64
	for !h.IsEmpty() {
		order = append(order, h.Pop().Index)
	}

	want := []int64{9, 5, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}
