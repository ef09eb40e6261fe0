// Package kernel implements the per-parent simplification step shared by
// the batch and inline drivers: given a parent node and the ancestry
// segments its children currently hold over the intervals that parent
// transmitted to them, it decides which intervals coalesce (requiring the
// parent to be retained as an output node and recorded as a parent in the
// output edge table) and which pass straight through (path compression
// for unary transmission — a parent with only a single mapped child over
// an interval is never retained there unless it is itself a sample).
//
// This is the classic sample-based simplification step described in
// Kelleher, Etheridge & McVean (2018); both drivers differ only in how
// they gather a parent's children's ancestry segments and in when they
// decide a parent is due for processing.
package kernel

import (
	"github.com/foretime/ancestry/pkg/ancestry/overlap"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// Edge is a retained parent/child transmission over a half-open interval,
// in output node id space.
type Edge struct {
	Parent segment.NodeID
	Child  segment.NodeID
	Left   segment.Position
	Right  segment.Position
}

// Result is the outcome of processing one parent.
type Result struct {
	// Ancestry is the parent's own ancestry list to be recorded for when
	// this node is itself consulted as a child of an older parent. It is
	// sorted by Left and adjacent runs sharing the same Node are merged.
	Ancestry []segment.Segment

	// Edges are the output edges produced by this parent's coalescing (or
	// sample-forced) intervals. Empty when the parent passed through
	// entirely as a unary path.
	Edges []Edge

	// Retained reports whether the parent was assigned an output node id
	// (i.e. AssignID was invoked). A parent with every interval unary and
	// that is not a sample is never retained.
	Retained bool

	// OutputID is the parent's assigned output id, valid only if Retained.
	OutputID segment.NodeID
}

// ProcessParent runs the per-parent coalescing sweep.
//
// segments is the multiset of already-mapped, already-clipped ancestry
// segments the parent's children hold over the intervals the parent
// transmitted to them; each Segment.Node must be the child's assigned
// output id (never segment.Unmapped — callers drop pruned children before
// calling). isSample forces retention even where every interval is
// unary, matching the rule that samples are always present in the output
// node table. assignID is invoked at most once, lazily, the first time an
// output id is actually needed.
func ProcessParent(isSample bool, segments []segment.Segment, assignID func() segment.NodeID) Result {
	var res Result

	if len(segments) == 0 {
		return res
	}

	ov := overlap.New(segments)
	var outputID segment.NodeID
	var hasOutputID bool

	ensureID := func() segment.NodeID {
		if !hasOutputID {
			outputID = assignID()
			hasOutputID = true
			res.Retained = true
			res.OutputID = outputID
		}
		return outputID
	}

	for {
		left, right, active, ok := ov.Next()
		if !ok {
			break
		}

		if len(active) == 1 && !isSample {
			res.Ancestry = appendAncestry(res.Ancestry, segment.Segment{
				Left: left, Right: right, Node: active[0].Node,
			})
			continue
		}

		w := ensureID()
		for _, a := range active {
			res.Edges = append(res.Edges, Edge{Parent: w, Child: a.Node, Left: left, Right: right})
		}
		res.Ancestry = appendAncestry(res.Ancestry, segment.Segment{Left: left, Right: right, Node: w})
	}

	return res
}

// appendAncestry appends next to list, merging it into the last entry
// when they are contiguous and share the same output node — this is the
// unary-path compaction the original prototype performs by reusing a
// segment's Left as the next lower bound; here it falls out naturally
// from merging adjacent same-node runs after the fact.
func appendAncestry(list []segment.Segment, next segment.Segment) []segment.Segment {
	if n := len(list); n > 0 {
		last := &list[n-1]
		if last.Node == next.Node && last.Right == next.Left {
			last.Right = next.Right
			return list
		}
	}
	return append(list, next)
}
