// Package inline implements the inline simplifier: a linked node graph
// that propagates ancestry changes incrementally after each birth/death
// round, visiting only the subgraph affected by the generation's
// replacements via the change heap.
package inline

import (
	"github.com/foretime/ancestry/pkg/ancestry/aerrors"
	"github.com/foretime/ancestry/pkg/ancestry/aheap"
	"github.com/foretime/ancestry/pkg/ancestry/graph"
	"github.com/foretime/ancestry/pkg/ancestry/kernel"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// Transmission is one parental contribution recorded at a birth: the
// child inherited [Left, Right) from the node currently occupying
// ParentSlot in the population's alive cohort.
type Transmission struct {
	ParentSlot int
	Left       segment.Position
	Right      segment.Position
}

// DeathOracle yields a Bernoulli death outcome for the slot currently
// being considered by GenerateDeaths.
type DeathOracle interface {
	Dies() bool
}

// Population is the simulator-facing state of the inline driver: an
// indexable cohort of currently-alive node references, plus the change
// heap used to drain affected ancestors after each generation's
// replacements.
type Population struct {
	genomeLength segment.Position
	nextIndex    segment.NodeID
	alive        []*graph.Node
	heap         *aheap.Heap
}

// NewPopulation constructs a Population for a genome of the given length.
func NewPopulation(genomeLength segment.Position) (*Population, error) {
	if genomeLength <= 0 {
		return nil, aerrors.New(aerrors.ErrCodeInvalidGenomeLength, "genome length must be > 0, got %d", genomeLength)
	}
	return &Population{
		genomeLength: genomeLength,
		heap:         aheap.New(),
	}, nil
}

// Setup pre-sizes the alive cohort with initialSize founder nodes, each
// seeded with the self-mapped full-genome ancestry segment every alive
// node carries. finalTime is accepted to match the simulator interface's
// shape but is not otherwise used by the inline driver itself.
func (p *Population) Setup(finalTime segment.Time, initialSize int) error {
	_ = finalTime
	p.alive = make([]*graph.Node, 0, initialSize)
	for i := 0; i < initialSize; i++ {
		n := graph.New(p.nextIndex, 0, true)
		n.SeedSample(p.genomeLength)
		p.nextIndex++
		p.alive = append(p.alive, n)
	}
	return nil
}

// GenerateDeaths consults oracle once per currently-alive slot and
// returns the slots chosen to die this generation.
func (p *Population) GenerateDeaths(oracle DeathOracle) []int {
	var deaths []int
	for i := range p.alive {
		if oracle.Dies() {
			deaths = append(deaths, i)
		}
	}
	return deaths
}

// RecordBirth allocates a new node for a birth, linking it to each named
// parent slot over its transmitted interval, and returns it so the caller
// can later pass it to Replace. A birth with zero parents transmitted to
// it isn't a birth at all, so at least one transmission is required.
func (p *Population) RecordBirth(birthTime, finalTime segment.Time, transmissions []Transmission) (*graph.Node, error) {
	_ = finalTime
	if len(transmissions) == 0 {
		return nil, aerrors.New(aerrors.ErrCodeEmptyTransmissions, "birth at time %d named zero parents", birthTime)
	}

	child := graph.New(p.nextIndex, birthTime, false)
	child.SeedSample(p.genomeLength)
	p.nextIndex++

	for _, tx := range transmissions {
		if tx.ParentSlot < 0 || tx.ParentSlot >= len(p.alive) {
			return nil, aerrors.New(aerrors.ErrCodeUnknownParent,
				"birth at time %d names parent slot %d outside alive cohort of size %d", birthTime, tx.ParentSlot, len(p.alive))
		}
		parent := p.alive[tx.ParentSlot]
		graph.Link(parent, child, tx.Left, tx.Right)
	}

	return child, nil
}

// Replace retires the node in deathSlot and installs newborn in its
// place, queuing both for ancestry recomputation: the retired node's
// ancestry is no longer pinned to self-mapped-whole-genome now that it is
// not alive, and the newborn's parents may need to see it once it
// settles.
func (p *Population) Replace(deathSlot int, newborn *graph.Node) error {
	if deathSlot < 0 || deathSlot >= len(p.alive) {
		return aerrors.New(aerrors.ErrCodeInvariantViolation, "death slot %d outside alive cohort of size %d", deathSlot, len(p.alive))
	}

	dead := p.alive[deathSlot]
	dead.Alive = false
	newborn.Alive = true
	p.alive[deathSlot] = newborn

	p.heap.Push(dead)
	p.heap.Push(newborn)
	return nil
}

// Simplify drains the change heap, recomputing ancestry for each
// non-alive node popped (most-recent first) and re-queuing any parent
// whose ancestry view of this node changed. currentTime is accepted to
// match the simulator interface's shape.
func (p *Population) Simplify(currentTime segment.Time) error {
	_ = currentTime
	for !p.heap.IsEmpty() {
		u := p.heap.Pop()
		if u.Alive {
			continue
		}
		p.recompute(u)
	}

	if graph.Debug {
		if err := graph.Validate(p.alive); err != nil {
			return err
		}
	}
	return nil
}

// Finish forces a final simplification pass if the heap is not already
// drained. The population's alive cohort is, by construction, exactly the
// set of nodes whose ancestry is pinned to the self-mapped whole genome —
// the inline driver's notion of "sample".
func (p *Population) Finish(currentTime segment.Time) error {
	return p.Simplify(currentTime)
}

// Alive returns the current alive cohort, in slot order.
func (p *Population) Alive() []*graph.Node {
	return p.alive
}

// recompute runs the shared kernel over u's children and their current
// ancestry, rewrites u.Children to hold only the retained (coalescing)
// edges, and reports whether u's ancestry view changed.
func (p *Population) recompute(u *graph.Node) bool {
	oldParents := u.ParentSlice()

	gathered, lookup := gatherChildSegments(u)
	lookup[u.Index] = u

	var newAncestry []graph.AncestrySegment
	var edges []kernel.Edge
	if len(gathered) > 0 {
		res := kernel.ProcessParent(false, gathered, func() segment.NodeID { return u.Index })
		edges = res.Edges
		for _, s := range res.Ancestry {
			newAncestry = append(newAncestry, graph.AncestrySegment{Left: s.Left, Right: s.Right, Mapped: lookup[s.Node]})
		}
	}

	changed := !ancestryEqual(u.Ancestry, newAncestry)

	for child := range u.Children {
		graph.Unlink(u, child)
	}
	for _, e := range edges {
		graph.Link(u, lookup[e.Child], e.Left, e.Right)
	}
	u.Ancestry = newAncestry

	if len(newAncestry) == 0 && !u.Alive {
		graph.Detach(u)
	}

	if changed {
		for _, parent := range oldParents {
			p.heap.Push(parent)
		}
	}
	return changed
}

// gatherChildSegments implements kernel step 1 over the inline
// representation: each child's current ancestry segments, clipped to the
// interval u actually transmitted to that child.
func gatherChildSegments(u *graph.Node) ([]segment.Segment, map[segment.NodeID]*graph.Node) {
	lookup := make(map[segment.NodeID]*graph.Node)
	var gathered []segment.Segment

	for child, txs := range u.Children {
		for _, tx := range txs {
			for _, a := range child.Ancestry {
				if a.Right > tx.Left && tx.Right > a.Left {
					l, r := segment.Max(a.Left, tx.Left), segment.Min(a.Right, tx.Right)
					gathered = append(gathered, segment.Segment{Left: l, Right: r, Node: a.Mapped.Index})
					lookup[a.Mapped.Index] = a.Mapped
				}
			}
		}
	}
	return gathered, lookup
}

func ancestryEqual(a, b []graph.AncestrySegment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Left != b[i].Left || a[i].Right != b[i].Right || a[i].Mapped != b[i].Mapped {
			return false
		}
	}
	return true
}
