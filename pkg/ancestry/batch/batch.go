// Package batch implements the batch simplifier: given a flat edge table
// sorted past-to-present by birth time, it rebuilds a minimal equivalent
// edge table keyed on a supplied sample set, reusing the shared
// per-parent kernel for the actual overlap-decomposition work.
package batch

import (
	"sort"

	"github.com/foretime/ancestry/pkg/ancestry/aerrors"
	"github.com/foretime/ancestry/pkg/ancestry/kernel"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// EdgeRecord is one parent's transmissions: descendants[i] means "over
// this interval, node transmitted to child descendants[i].Node". A table
// of EdgeRecords is sorted globally by BirthTime ascending.
type EdgeRecord struct {
	Node        segment.NodeID
	BirthTime   segment.Time
	Descendants []segment.Segment
}

// IDMap is the function from input node identifier to output node
// identifier; segment.Unmapped (-1) means "not retained".
type IDMap map[segment.NodeID]segment.NodeID

// Simplify runs the batch driver. numNodes is the size of the input node
// table (valid sample indices are [0, numNodes)). records must be sorted
// ascending by BirthTime; the returned edge table is the simplified
// result, sorted ascending by BirthTime, containing only retained nodes,
// with Node and Descendants[].Node rewritten to output ids.
func Simplify(records []EdgeRecord, samples []segment.NodeID, numNodes segment.NodeID, genomeLength segment.Position) (IDMap, []EdgeRecord, error) {
	if genomeLength <= 0 {
		return nil, nil, aerrors.New(aerrors.ErrCodeInvalidGenomeLength, "genome length must be > 0, got %d", genomeLength)
	}

	for i := 1; i < len(records); i++ {
		if records[i].BirthTime < records[i-1].BirthTime {
			return nil, nil, aerrors.New(aerrors.ErrCodeUnorderedInput,
				"edge records must be sorted ascending by birth time: record %d (time %d) precedes record %d (time %d)",
				i-1, records[i-1].BirthTime, i, records[i].BirthTime)
		}
	}

	idmap := make(IDMap, numNodes)
	for n := segment.NodeID(0); n < numNodes; n++ {
		idmap[n] = segment.Unmapped
	}

	isSample := make(map[segment.NodeID]bool, len(samples))
	for _, s := range samples {
		if s < 0 || s >= numNodes {
			return nil, nil, aerrors.New(aerrors.ErrCodeSampleOutOfRange, "sample %d outside node table of size %d", s, numNodes)
		}
		if isSample[s] {
			return nil, nil, aerrors.New(aerrors.ErrCodeDuplicateSample, "sample %d listed more than once", s)
		}
		isSample[s] = true
	}

	ancestry := make(map[segment.NodeID][]segment.Segment, numNodes)
	var nextOutputID segment.NodeID

	// Step 2: mark samples and seed their ancestry with the self-mapped
	// full interval; allocation order here fixes the output ids samples
	// receive (ascending by sample id, not by caller-supplied order),
	// independent of the order the samples slice happened to list them in.
	sortedSamples := append([]segment.NodeID(nil), samples...)
	sort.Slice(sortedSamples, func(i, j int) bool { return sortedSamples[i] < sortedSamples[j] })
	for _, s := range sortedSamples {
		idmap[s] = nextOutputID
		ancestry[s] = []segment.Segment{segment.New(nextOutputID, 0, genomeLength)}
		nextOutputID++
	}

	// Step 3: walk records most-recent to most-ancient.
	byOutputNode := make(map[segment.NodeID]*EdgeRecord)
	var ordered []segment.NodeID // output ids in the order they were assigned, newest first

	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		u := r.Node

		gathered := gatherOverlaps(r.Descendants, ancestry)
		if len(gathered) == 0 {
			continue
		}

		assigned := false
		res := kernel.ProcessParent(isSample[u], gathered, func() segment.NodeID {
			if isSample[u] {
				assigned = true
				return idmap[u]
			}
			id := nextOutputID
			nextOutputID++
			idmap[u] = id
			assigned = true
			return id
		})

		if !isSample[u] {
			ancestry[u] = res.Ancestry
		}

		if res.Retained && len(res.Edges) > 0 {
			out := byOutputNode[res.OutputID]
			if out == nil {
				out = &EdgeRecord{Node: res.OutputID, BirthTime: r.BirthTime}
				byOutputNode[res.OutputID] = out
				ordered = append(ordered, res.OutputID)
			}
			for _, e := range res.Edges {
				out.Descendants = append(out.Descendants, segment.New(e.Child, e.Left, e.Right))
			}
		}
		_ = assigned
	}

	// Output ids were assigned in processing order as parents were
	// visited present-to-past; flip that to ascending time order so a
	// parent always gets a lower id than its children:
	// new = |old - next_output_node_id| - 1.
	remap := func(id segment.NodeID) segment.NodeID {
		if id == segment.Unmapped {
			return segment.Unmapped
		}
		v := id - nextOutputID
		if v < 0 {
			v = -v
		}
		return v - 1
	}

	for n, id := range idmap {
		idmap[n] = remap(id)
	}

	output := make([]EdgeRecord, 0, len(ordered))
	for _, oldOut := range ordered {
		rec := byOutputNode[oldOut]
		remapped := EdgeRecord{
			Node:        remap(rec.Node),
			BirthTime:   rec.BirthTime,
			Descendants: make([]segment.Segment, len(rec.Descendants)),
		}
		for i, d := range rec.Descendants {
			remapped.Descendants[i] = segment.New(remap(d.Node), d.Left, d.Right)
		}
		output = append(output, remapped)
	}

	sort.SliceStable(output, func(i, j int) bool { return output[i].BirthTime < output[j].BirthTime })

	return idmap, output, nil
}

// gatherOverlaps implements kernel step 1: intersect each transmission
// with its child's current ancestry, producing the working segment queue
// for the overlapper.
func gatherOverlaps(descendants []segment.Segment, ancestry map[segment.NodeID][]segment.Segment) []segment.Segment {
	var gathered []segment.Segment
	for _, d := range descendants {
		for _, a := range ancestry[d.Node] {
			if a.Right > d.Left && d.Right > a.Left {
				l, r := segment.Max(a.Left, d.Left), segment.Min(a.Right, d.Right)
				gathered = append(gathered, segment.Segment{Left: l, Right: r, Node: a.Node})
			}
		}
	}
	return gathered
}
