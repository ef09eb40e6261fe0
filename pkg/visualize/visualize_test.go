package visualize

import (
	"strings"
	"testing"

	"github.com/foretime/ancestry/pkg/ancestry/graph"
	"github.com/foretime/ancestry/pkg/ancestry/tables"
)

func TestFromPopulationIncludesEdgeIntervals(t *testing.T) {
	parent := graph.New(0, 0, false)
	child := graph.New(1, 1, true)
	child.SeedSample(10)
	graph.Link(parent, child, 0, 10)

	dot, err := FromPopulation([]*graph.Node{child}, DefaultOptions())
	if err != nil {
		t.Fatalf("FromPopulation: %v", err)
	}
	if !strings.Contains(dot, "digraph G") {
		t.Errorf("expected a DOT digraph header, got: %s", dot)
	}
	if !strings.Contains(dot, "[0,10)") {
		t.Errorf("expected edge interval label in output: %s", dot)
	}
}

func TestFromTablesRendersSamplesDistinctly(t *testing.T) {
	tbl := &tables.Tables{
		Nodes: []tables.NodeRow{{Time: 0, Sample: true}, {Time: 5, Sample: false}},
		Edges: []tables.EdgeRow{{Parent: 1, Child: 0, Left: 0, Right: 10}},
	}

	dot := FromTables(tbl, Options{Style: "dense"})
	if !strings.Contains(dot, "lightblue") {
		t.Errorf("expected sample node to be styled distinctly: %s", dot)
	}
	if !strings.Contains(dot, "time: 5") {
		t.Errorf("dense style should include node time: %s", dot)
	}
}
