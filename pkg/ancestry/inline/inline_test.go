package inline

import (
	"testing"

	"github.com/foretime/ancestry/pkg/ancestry/graph"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// buildFeb11 drives the Population through the same topology as the
// Feb-11 worked example (founders 0,1; children 2,3; grandchildren 4,5)
// and returns the population plus the now-historical nodes 0-3 for
// inspection (they have been replaced out of the alive cohort but remain
// reachable as long as the test holds them).
func buildFeb11(t *testing.T) (*Population, map[string]*graph.Node) {
	t.Helper()

	p, err := NewPopulation(100)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	if err := p.Setup(10, 2); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	node0, node1 := p.Alive()[0], p.Alive()[1]

	node2, err := p.RecordBirth(1, 10, []Transmission{
		{ParentSlot: 0, Left: 0, Right: 50},
		{ParentSlot: 1, Left: 0, Right: 50},
	})
	if err != nil {
		t.Fatalf("RecordBirth node2: %v", err)
	}
	node3, err := p.RecordBirth(1, 10, []Transmission{
		{ParentSlot: 1, Left: 0, Right: 100},
	})
	if err != nil {
		t.Fatalf("RecordBirth node3: %v", err)
	}

	if err := p.Replace(0, node2); err != nil {
		t.Fatalf("Replace(0, node2): %v", err)
	}
	if err := p.Replace(1, node3); err != nil {
		t.Fatalf("Replace(1, node3): %v", err)
	}

	node5, err := p.RecordBirth(2, 10, []Transmission{
		{ParentSlot: 0, Left: 0, Right: 60},
		{ParentSlot: 1, Left: 60, Right: 100},
	})
	if err != nil {
		t.Fatalf("RecordBirth node5: %v", err)
	}
	node4, err := p.RecordBirth(2, 10, []Transmission{
		{ParentSlot: 1, Left: 0, Right: 100},
	})
	if err != nil {
		t.Fatalf("RecordBirth node4: %v", err)
	}

	if err := p.Replace(0, node4); err != nil {
		t.Fatalf("Replace(0, node4): %v", err)
	}
	if err := p.Replace(1, node5); err != nil {
		t.Fatalf("Replace(1, node5): %v", err)
	}

	if err := p.Simplify(2); err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	return p, map[string]*graph.Node{
		"node0": node0, "node1": node1, "node2": node2, "node3": node3,
		"node4": node4, "node5": node5,
	}
}

func TestInlineFeb11Example(t *testing.T) {
	p, n := buildFeb11(t)

	if len(p.Alive()) != 2 || p.Alive()[0] != n["node4"] || p.Alive()[1] != n["node5"] {
		t.Fatalf("unexpected alive cohort: %+v", p.Alive())
	}

	// node1 coalesces over [0,50); its children are the pruned edges to
	// node4 and node5 over that interval.
	if len(n["node1"].Children) != 2 {
		t.Fatalf("node1 should retain exactly 2 children after pruning, got %d: %+v", len(n["node1"].Children), n["node1"].Children)
	}
	if segs, ok := n["node1"].Children[n["node4"]]; !ok || len(segs) != 1 || segs[0].Left != 0 || segs[0].Right != 50 {
		t.Errorf("node1->node4 edge wrong: %+v", n["node1"].Children[n["node4"]])
	}
	if segs, ok := n["node1"].Children[n["node5"]]; !ok || len(segs) != 1 || segs[0].Left != 0 || segs[0].Right != 50 {
		t.Errorf("node1->node5 edge wrong: %+v", n["node1"].Children[n["node5"]])
	}

	// node3 coalesces over [60,100).
	if len(n["node3"].Children) != 2 {
		t.Fatalf("node3 should retain exactly 2 children after pruning, got %d", len(n["node3"].Children))
	}
	if segs, ok := n["node3"].Children[n["node4"]]; !ok || segs[0].Left != 60 || segs[0].Right != 100 {
		t.Errorf("node3->node4 edge wrong: %+v", n["node3"].Children[n["node4"]])
	}

	// node0 and node2 are purely unary throughout and must be fully
	// pruned: no retained outgoing edges.
	if len(n["node0"].Children) != 0 {
		t.Errorf("node0 should have no retained children, got %+v", n["node0"].Children)
	}
	if len(n["node2"].Children) != 0 {
		t.Errorf("node2 should have no retained children, got %+v", n["node2"].Children)
	}

	// Samples keep their fixed self-mapped ancestry.
	for _, name := range []string{"node4", "node5"} {
		a := n[name].Ancestry
		if len(a) != 1 || a[0].Left != 0 || a[0].Right != 100 || a[0].Mapped != n[name] {
			t.Errorf("%s ancestry should remain self-mapped [0,100), got %+v", name, a)
		}
	}

	if err := graph.Validate(p.Alive()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestInlineTwoRoundExtension(t *testing.T) {
	p, n := buildFeb11(t)

	// A second round of births off the surviving parents (node4, node5)
	// with crossovers at 25, 75, 10, 90.
	births := make([]*graph.Node, 0, 4)
	crossovers := []segment.Position{25, 75, 10, 90}
	for _, x := range crossovers {
		b, err := p.RecordBirth(3, 10, []Transmission{
			{ParentSlot: 0, Left: 0, Right: x},
			{ParentSlot: 1, Left: x, Right: 100},
		})
		if err != nil {
			t.Fatalf("RecordBirth: %v", err)
		}
		births = append(births, b)
	}

	for i, b := range births {
		if err := p.Replace(i%2, b); err != nil {
			t.Fatalf("Replace(%d): %v", i%2, err)
		}
	}

	if err := p.Simplify(3); err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	if err := graph.Validate(p.Alive()); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for _, a := range p.Alive() {
		var covered segment.Position
		for _, seg := range a.Ancestry {
			covered += seg.Right - seg.Left
		}
		if covered != 100 {
			t.Errorf("alive node %d coverage = %d, want 100 (ancestry %+v)", a.Index, covered, a.Ancestry)
		}
	}
	_ = n
}

type alwaysDies struct{}

func (alwaysDies) Dies() bool { return true }

type neverDies struct{}

func (neverDies) Dies() bool { return false }

func TestGenerateDeathsUsesOracle(t *testing.T) {
	p, err := NewPopulation(10)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	if err := p.Setup(5, 3); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if got := p.GenerateDeaths(neverDies{}); got != nil {
		t.Fatalf("expected no deaths, got %v", got)
	}
	if got := p.GenerateDeaths(alwaysDies{}); len(got) != 3 {
		t.Fatalf("expected all 3 slots to die, got %v", got)
	}
}

func TestRecordBirthRejectsEmptyTransmissions(t *testing.T) {
	p, err := NewPopulation(10)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	if err := p.Setup(5, 1); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, err := p.RecordBirth(1, 5, nil); err == nil {
		t.Fatalf("expected error for zero transmissions")
	}
}
