package store

import (
	"testing"
	"time"

	"github.com/foretime/ancestry/pkg/ancestry/tables"
)

func TestSnapshotCountsMatchTables(t *testing.T) {
	tbl := &tables.Tables{
		Nodes: []tables.NodeRow{{Time: 0, Sample: true}, {Time: 5, Sample: false}},
		Edges: []tables.EdgeRow{{Parent: 1, Child: 0, Left: 0, Right: 10}},
	}
	recordedAt := time.Unix(1700000000, 0).UTC()

	doc := Snapshot{
		RunID:      "run-1",
		Generation: 42,
		RecordedAt: recordedAt,
		NodeCount:  len(tbl.Nodes),
		EdgeCount:  len(tbl.Edges),
		Nodes:      tbl.Nodes,
		Edges:      tbl.Edges,
	}

	if doc.NodeCount != 2 {
		t.Errorf("NodeCount = %d, want 2", doc.NodeCount)
	}
	if doc.EdgeCount != 1 {
		t.Errorf("EdgeCount = %d, want 1", doc.EdgeCount)
	}
	if doc.RunID != "run-1" {
		t.Errorf("RunID = %q, want %q", doc.RunID, "run-1")
	}
	if !doc.RecordedAt.Equal(recordedAt) {
		t.Errorf("RecordedAt = %v, want %v", doc.RecordedAt, recordedAt)
	}
}
