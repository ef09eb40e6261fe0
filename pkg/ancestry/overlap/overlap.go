// Package overlap implements the ancestry overlapper: a lazy enumerator
// that, given a multiset of segments sorted by Left, emits maximal
// intervals over which a fixed subset of those segments simultaneously
// overlap, together with that subset.
//
// This is the sweep-line primitive the simplification kernel runs over a
// parent's gathered transmission segments. It is grounded on the index-
// cursor implementation in the original Rust prototype
// (ancestry_overlapper.rs's Iterator impl) and on the bottom-up interval
// sweep in the teacher's dag/transform span-overlap resolution, adapted
// here to segment-overlap decomposition rather than layout-span detection.
package overlap

import "github.com/foretime/ancestry/pkg/ancestry/segment"

// Overlapper is a lazy sweep-line enumerator over a multiset of segments.
//
// Successive calls to Next emit disjoint intervals ordered by increasing
// Left; the union of emitted intervals equals the union of the input
// segments. The returned overlap set is shared and reused internally —
// callers must finish processing one emission (copying out anything they
// need) before calling Next again. This mirrors the original Rust
// implementation's Rc<RefCell<Vec<Overlap>>>, adapted to Go's single-
// threaded reuse discipline instead of reference counting.
//
// The zero value is not usable; create with New.
type Overlapper struct {
	items  []segment.Segment
	active []segment.Segment
	j      int
	n      int
	x      segment.Position
}

// New creates an Overlapper over segments. The input is sorted by Left
// ascending (stable, so ties preserve input order); the slice passed in is
// not mutated, sorting is performed on an internal copy.
func New(segments []segment.Segment) *Overlapper {
	items := make([]segment.Segment, len(segments))
	copy(items, segments)
	sortByLeft(items)

	o := &Overlapper{
		items: items,
		n:     len(items),
	}
	if o.n > 0 {
		o.x = items[0].Left
	}
	return o
}

// sortByLeft sorts segments by Left ascending using insertion sort — the
// per-parent transmission queues the kernel builds stay small, so an
// allocation-free sort over a reused scratch slice beats sort.Slice's
// interface-dispatch overhead here.
func sortByLeft(s []segment.Segment) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j].Left > v.Left {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

// Reset reconfigures the Overlapper to sweep a new, already-allocated
// segments slice, reusing the Overlapper's internal scratch buffers
// instead of allocating new ones as New does.
func (o *Overlapper) Reset(segments []segment.Segment) {
	if cap(o.items) < len(segments) {
		o.items = make([]segment.Segment, len(segments))
	}
	o.items = o.items[:len(segments)]
	copy(o.items, segments)
	sortByLeft(o.items)

	o.active = o.active[:0]
	o.j = 0
	o.n = len(o.items)
	if o.n > 0 {
		o.x = o.items[0].Left
	}
}

// Next advances the sweep and reports the next maximal overlap interval.
// It returns ok=false once both the input cursor is exhausted and the
// active set is empty. The returned slice aliases the Overlapper's
// internal active-set buffer and is invalidated by the next call to Next
// or Reset.
func (o *Overlapper) Next() (left, right segment.Position, overlapSet []segment.Segment, ok bool) {
	if o.j < o.n {
		return o.advance()
	}
	return o.drain()
}

// advance consumes unvisited input segments: it drops expired ones from
// the active set, folds in every segment starting at the current left
// edge, and emits the interval up to the next boundary.
func (o *Overlapper) advance() (segment.Position, segment.Position, []segment.Segment, bool) {
	left := o.x

	o.active = dropExpired(o.active, left)
	if len(o.active) == 0 {
		left = o.items[o.j].Left
	}

	for o.j < o.n && o.items[o.j].Left == left {
		o.active = append(o.active, o.items[o.j])
		o.j++
	}

	right := segment.Position(1<<62 - 1)
	for _, a := range o.active {
		right = segment.Min(right, a.Right)
	}
	if o.j < o.n {
		right = segment.Min(right, o.items[o.j].Left)
	}

	o.x = right
	return left, right, o.active, true
}

// drain emits the remaining active segments once the input is exhausted.
func (o *Overlapper) drain() (segment.Position, segment.Position, []segment.Segment, bool) {
	if len(o.active) == 0 {
		return 0, 0, nil, false
	}

	left := o.x
	o.active = dropExpired(o.active, left)
	if len(o.active) == 0 {
		return 0, 0, nil, false
	}

	right := segment.Position(1<<62 - 1)
	for _, a := range o.active {
		right = segment.Min(right, a.Right)
	}
	o.x = right
	return left, right, o.active, true
}

// dropExpired removes from active every segment whose Right <= x,
// compacting in place to avoid allocation.
func dropExpired(active []segment.Segment, x segment.Position) []segment.Segment {
	n := 0
	for _, a := range active {
		if a.Right > x {
			active[n] = a
			n++
		}
	}
	return active[:n]
}

// All drains the Overlapper into a slice of independent (non-aliased)
// emissions. Intended for tests and small call sites; the kernel's hot
// path uses Next directly to avoid the per-emission copy.
func All(o *Overlapper) []Emission {
	var out []Emission
	for {
		l, r, set, ok := o.Next()
		if !ok {
			break
		}
		cp := make([]segment.Segment, len(set))
		copy(cp, set)
		out = append(out, Emission{Left: l, Right: r, Set: cp})
	}
	return out
}

// Emission is a materialized, non-aliased overlap interval, used by All
// and by tests that want to inspect every emission after the sweep
// completes.
type Emission struct {
	Left  segment.Position
	Right segment.Position
	Set   []segment.Segment
}
