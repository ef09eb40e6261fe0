// Package tables implements the tree-sequence interchange format: a
// one-way conversion from either driver's internal representation into a
// node table and an edge table, leaving sorting and indexing to the
// receiver.
//
// The conversion is asymmetric by design: FromInline's edges come only
// from each node's pruned Children map, so a unary node that never
// coalesced contributes no edge row at all — its lineage is visible only
// by following ancestry through the node it passed through. FromBatch has
// the same property since it only ever sees the batch driver's already-
// pruned descendants lists. A consumer expecting every historical
// lineage position to resolve to an edge must instead resolve it through
// ancestry lookups, not the edge table alone.
package tables

import (
	"encoding/json"
	"sort"

	"github.com/foretime/ancestry/pkg/ancestry/aerrors"
	"github.com/foretime/ancestry/pkg/ancestry/batch"
	"github.com/foretime/ancestry/pkg/ancestry/graph"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// NodeRow is one row of the output node table.
type NodeRow struct {
	Time   segment.Time `json:"time"`
	Sample bool         `json:"sample"`
}

// EdgeRow is one row of the output edge table, referencing node table
// positions (not the driver's internal node identities).
type EdgeRow struct {
	Parent int             `json:"parent"`
	Child  int             `json:"child"`
	Left   segment.Position `json:"left"`
	Right  segment.Position `json:"right"`
}

// Tables is the full interchange payload: a node table and an edge table.
// The receiver is responsible for sorting and indexing.
type Tables struct {
	Nodes []NodeRow `json:"nodes"`
	Edges []EdgeRow `json:"edges"`
}

// FromInline converts the currently-alive cohort of an inline population
// into node/edge tables via a reachability sweep: each alive node is
// visited first (so its table position is stable across calls with an
// unchanged alive cohort), then its ancestors are discovered by following
// Parents upward.
func FromInline(alive []*graph.Node) (*Tables, error) {
	index := make(map[*graph.Node]int)
	var order []*graph.Node

	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if _, ok := index[n]; ok {
			return
		}
		index[n] = len(order)
		order = append(order, n)
		for _, parent := range n.ParentSlice() {
			visit(parent)
		}
	}
	for _, a := range alive {
		visit(a)
	}

	var maxBirth segment.Time
	for _, n := range order {
		if n.BirthTime > maxBirth {
			maxBirth = n.BirthTime
		}
	}

	t := &Tables{Nodes: make([]NodeRow, len(order))}
	for i, n := range order {
		t.Nodes[i] = NodeRow{Time: maxBirth - n.BirthTime, Sample: n.Alive}
	}

	for _, n := range order {
		for child, segs := range n.Children {
			childIdx, ok := index[child]
			if !ok {
				return nil, aerrors.New(aerrors.ErrCodeInvariantViolation,
					"node %d transmits to child %d which is unreachable from the alive cohort", n.Index, child.Index)
			}
			for _, s := range segs {
				t.Edges = append(t.Edges, EdgeRow{Parent: index[n], Child: childIdx, Left: s.Left, Right: s.Right})
			}
		}
	}

	return t, nil
}

// FromBatch converts a batch driver's simplified edge table into
// node/edge tables. birthTimes supplies the original birth time for every
// input node id the idmap retains (the batch driver itself only tracks
// output identities, not a birth-time axis). samples marks which output
// ids are samples.
func FromBatch(idmap batch.IDMap, records []batch.EdgeRecord, birthTimes map[segment.NodeID]segment.Time, samples []segment.NodeID) *Tables {
	outputCount := 0
	for _, out := range idmap {
		if out != segment.Unmapped && int(out)+1 > outputCount {
			outputCount = int(out) + 1
		}
	}

	timeByOutput := make(map[segment.NodeID]segment.Time, outputCount)
	for in, out := range idmap {
		if out == segment.Unmapped {
			continue
		}
		timeByOutput[out] = birthTimes[in]
	}

	sampleSet := make(map[segment.NodeID]bool, len(samples))
	for _, s := range samples {
		sampleSet[idmap[s]] = true
	}

	var maxBirth segment.Time
	for _, bt := range timeByOutput {
		if bt > maxBirth {
			maxBirth = bt
		}
	}

	t := &Tables{Nodes: make([]NodeRow, outputCount)}
	for out := segment.NodeID(0); out < segment.NodeID(outputCount); out++ {
		t.Nodes[out] = NodeRow{Time: maxBirth - timeByOutput[out], Sample: sampleSet[out]}
	}

	for _, rec := range records {
		for _, d := range rec.Descendants {
			t.Edges = append(t.Edges, EdgeRow{Parent: int(rec.Node), Child: int(d.Node), Left: d.Left, Right: d.Right})
		}
	}

	return t
}

// Validate checks the basic structural invariants of a Tables value:
// edge endpoints index into the node table, and intervals are
// well-formed.
func Validate(t *Tables) error {
	for i, e := range t.Edges {
		if e.Parent < 0 || e.Parent >= len(t.Nodes) {
			return aerrors.New(aerrors.ErrCodeInvariantViolation, "edge %d parent %d out of node table range", i, e.Parent)
		}
		if e.Child < 0 || e.Child >= len(t.Nodes) {
			return aerrors.New(aerrors.ErrCodeInvariantViolation, "edge %d child %d out of node table range", i, e.Child)
		}
		if e.Left >= e.Right {
			return aerrors.New(aerrors.ErrCodeInvariantViolation, "edge %d has non-positive length interval [%d,%d)", i, e.Left, e.Right)
		}
	}
	return nil
}

// SortAndIndex sorts edges by (parent time descending, child, left), the
// order a tree-sequence consumer conventionally expects. Tables built by
// FromInline or FromBatch are not sorted on construction, so a caller
// that needs this order must call SortAndIndex itself.
func SortAndIndex(t *Tables) {
	sort.SliceStable(t.Edges, func(i, j int) bool {
		ti, tj := t.Nodes[t.Edges[i].Parent].Time, t.Nodes[t.Edges[j].Parent].Time
		if ti != tj {
			return ti > tj
		}
		if t.Edges[i].Child != t.Edges[j].Child {
			return t.Edges[i].Child < t.Edges[j].Child
		}
		return t.Edges[i].Left < t.Edges[j].Left
	})
}

// MarshalJSON-compatible round trip helpers, grounded in the teacher's
// former DAG export format: a compact, human-inspectable JSON document.

// Encode serializes Tables to JSON.
func Encode(t *Tables) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Decode deserializes Tables from JSON produced by Encode.
func Decode(data []byte) (*Tables, error) {
	var t Tables
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeInvariantViolation, err, "decoding tables JSON")
	}
	return &t, nil
}
