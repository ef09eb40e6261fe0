// Package graph implements the inline variant's linked node graph: nodes
// own their ancestry segments and their outgoing transmissions strongly,
// with weak back-references to parents so the cyclic parent/child
// relationship never keeps a node alive past the point nothing else
// reaches it.
//
// Go's standard library `weak` package is the direct, garbage-collector-
// aware answer to that cyclic-ownership problem: rather than a manually
// reference-counted Rc/Weak pair as in the original Rust prototype, a
// node's Parents set holds weak.Pointer[Node] values, which never prevent
// the runtime from collecting a node once its last strong (Children-map)
// reference is gone.
package graph

import (
	"weak"

	"github.com/foretime/ancestry/pkg/ancestry/aerrors"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// Debug enables invariant checking in Validate call sites that gate on it
// (inline.Simplify is the one such site). Off by default.
var Debug = false

// AncestrySegment is one entry in a Node's ancestry list: over [Left,
// Right) this node's lineage currently maps to Mapped.
type AncestrySegment struct {
	Left   segment.Position
	Right  segment.Position
	Mapped *Node
}

// Node is one vertex of the inline ancestry graph.
type Node struct {
	BirthTime segment.Time
	Index     segment.NodeID
	Alive     bool

	Ancestry []AncestrySegment
	Children map[*Node][]segment.Segment
	Parents  map[weak.Pointer[Node]]struct{}
}

// New creates a node with the given identity, initially childless and
// parentless, with no ancestry. Callers populate Ancestry afterward;
// inline.RecordBirth gives every birth a single self-mapped segment [0, L).
func New(index segment.NodeID, birthTime segment.Time, alive bool) *Node {
	return &Node{
		Index:     index,
		BirthTime: birthTime,
		Alive:     alive,
		Children:  make(map[*Node][]segment.Segment),
		Parents:   make(map[weak.Pointer[Node]]struct{}),
	}
}

// SeedSample sets n's ancestry to the single self-mapped full-genome
// segment every alive node carries: a sample maps its own full genome to
// itself until a descendant's transmissions start carving it up.
func (n *Node) SeedSample(genomeLength segment.Position) {
	n.Ancestry = []AncestrySegment{{Left: 0, Right: genomeLength, Mapped: n}}
}

// Link records a transmission of [left, right) from parent to child,
// establishing the symmetric strong-child/weak-parent back-edge pair.
func Link(parent, child *Node, left, right segment.Position) {
	parent.Children[child] = append(parent.Children[child], segment.New(child.Index, left, right))
	child.Parents[weak.Make(parent)] = struct{}{}
}

// Unlink removes the transmission edge between parent and child entirely,
// dropping the back-reference once parent no longer names child as a
// child at all.
func Unlink(parent, child *Node) {
	delete(parent.Children, child)
	for wp := range child.Parents {
		if p := wp.Value(); p == parent || p == nil {
			delete(child.Parents, wp)
		}
	}
}

// Detach removes n from every node that still names it as parent or
// child, so that n is retained in memory only by whatever reference the
// caller itself is still holding. This is the inline driver's reaction to
// a node whose recomputed ancestry became empty while it is no longer
// alive: once a dead node carries no ancestry, it has nothing left to
// contribute to a simplified tree sequence and can be unlinked.
func Detach(n *Node) {
	for child := range n.Children {
		for wp := range child.Parents {
			if p := wp.Value(); p == n || p == nil {
				delete(child.Parents, wp)
			}
		}
	}
	n.Children = make(map[*Node][]segment.Segment)

	for wp := range n.Parents {
		p := wp.Value()
		if p == nil {
			continue
		}
		delete(p.Children, n)
	}
	n.Parents = make(map[weak.Pointer[Node]]struct{})
}

// ParentSlice materializes n's currently-live parents. Weak references
// whose referent has already been collected are silently skipped.
func (n *Node) ParentSlice() []*Node {
	out := make([]*Node, 0, len(n.Parents))
	for wp := range n.Parents {
		if p := wp.Value(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that every node reachable from roots has consistent
// parent/child back-references and non-overlapping, properly-ordered
// ancestry segments. It is intended for debug-mode use (graph.Debug) and
// test suites, not the steady-state hot path.
func Validate(roots []*Node) error {
	visited := make(map[*Node]bool)
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if visited[n] {
			return nil
		}
		visited[n] = true

		if err := validateAncestry(n); err != nil {
			return err
		}
		for child := range n.Children {
			if !hasWeakRef(child.Parents, n) {
				return aerrors.New(aerrors.ErrCodeInvariantViolation,
					"node %d lists child %d but child does not back-reference it", n.Index, child.Index)
			}
			if child.BirthTime <= n.BirthTime {
				return aerrors.New(aerrors.ErrCodeInvariantViolation,
					"child %d (birth %d) is not more recent than parent %d (birth %d)",
					child.Index, child.BirthTime, n.Index, n.BirthTime)
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}

func hasWeakRef(set map[weak.Pointer[Node]]struct{}, target *Node) bool {
	for wp := range set {
		if wp.Value() == target {
			return true
		}
	}
	return false
}

func validateAncestry(n *Node) error {
	for i := 1; i < len(n.Ancestry); i++ {
		prev, cur := n.Ancestry[i-1], n.Ancestry[i]
		if cur.Left < prev.Left {
			return aerrors.New(aerrors.ErrCodeInvariantViolation,
				"node %d ancestry is not sorted by left", n.Index)
		}
		if cur.Left < prev.Right {
			return aerrors.New(aerrors.ErrCodeInvariantViolation,
				"node %d ancestry segments overlap: [%d,%d) and [%d,%d)",
				n.Index, prev.Left, prev.Right, cur.Left, cur.Right)
		}
	}
	return nil
}
