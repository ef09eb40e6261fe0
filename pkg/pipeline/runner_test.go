package pipeline

import (
	"context"
	"testing"

	"github.com/foretime/ancestry/pkg/ancestry/inline"
	"github.com/foretime/ancestry/pkg/cache"
)

func TestRunnerRunProducesConsistentSnapshot(t *testing.T) {
	opts := Options{
		PopulationSize:   10,
		GenomeLength:     100,
		Generations:      30,
		SimplifyInterval: 5,
		DeathProbability: 0.3,
		Seed:             1,
	}

	runner := NewRunner(cache.NewNullCache(), nil, nil)

	sim, err := inline.NewPopulation(opts.GenomeLength)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	result, err := runner.Run(context.Background(), sim, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.CacheHit {
		t.Error("first run against a null cache should not be a cache hit")
	}
	if result.Stats.Generations != opts.Generations {
		t.Errorf("Stats.Generations = %d, want %d", result.Stats.Generations, opts.Generations)
	}
	if len(result.Snapshot.Nodes) == 0 {
		t.Fatal("expected a non-empty node table")
	}
}

func TestRunnerRunIsDeterministicForFixedSeed(t *testing.T) {
	opts := Options{
		PopulationSize:   8,
		GenomeLength:     50,
		Generations:      20,
		SimplifyInterval: 4,
		DeathProbability: 0.25,
		Seed:             42,
	}

	run := func() *Result {
		runner := NewRunner(cache.NewNullCache(), nil, nil)
		sim, err := inline.NewPopulation(opts.GenomeLength)
		if err != nil {
			t.Fatalf("NewPopulation: %v", err)
		}
		result, err := runner.Run(context.Background(), sim, opts)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	a, b := run(), run()
	if len(a.Snapshot.Nodes) != len(b.Snapshot.Nodes) || len(a.Snapshot.Edges) != len(b.Snapshot.Edges) {
		t.Fatalf("two runs with the same seed produced different table sizes: %d/%d nodes, %d/%d edges",
			len(a.Snapshot.Nodes), len(b.Snapshot.Nodes), len(a.Snapshot.Edges), len(b.Snapshot.Edges))
	}
}

func TestRunnerRunServesSnapshotFromCache(t *testing.T) {
	opts := Options{
		PopulationSize:   6,
		GenomeLength:     40,
		Generations:      12,
		SimplifyInterval: 3,
		DeathProbability: 0.2,
		Seed:             7,
	}

	c := cache.NewNullCache()
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c = fc

	runner := NewRunner(c, nil, nil)
	sim, err := inline.NewPopulation(opts.GenomeLength)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	first, err := runner.Run(context.Background(), sim, opts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first run should not be a cache hit")
	}

	sim2, err := inline.NewPopulation(opts.GenomeLength)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	second, err := runner.Run(context.Background(), sim2, opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second run with identical params should be a cache hit")
	}
	if len(second.Snapshot.Nodes) != len(first.Snapshot.Nodes) {
		t.Errorf("cached snapshot node count = %d, want %d", len(second.Snapshot.Nodes), len(first.Snapshot.Nodes))
	}
}
