package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/foretime/ancestry/pkg/pipeline"
)

func TestLoadParsesSimulationSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ancestrysim.toml")
	body := `
[simulation]
population_size = 25
generations = 100
seed = 7

[cache]
backend = "redis"
redis_url = "redis://localhost:6379"

[store]
uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.PopulationSize != 25 {
		t.Errorf("PopulationSize = %d, want 25", cfg.Simulation.PopulationSize)
	}
	if cfg.Simulation.Generations != 100 {
		t.Errorf("Generations = %d, want 100", cfg.Simulation.Generations)
	}
	if cfg.Simulation.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Simulation.Seed)
	}
	if cfg.Simulation.GenomeLength != pipeline.DefaultGenomeLength {
		t.Errorf("unset GenomeLength should fall back to default, got %d", cfg.Simulation.GenomeLength)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Store.URI != "mongodb://localhost:27017" {
		t.Errorf("Store.URI = %q, want mongodb uri", cfg.Store.URI)
	}
	if cfg.Store.Database != "ancestrysim" {
		t.Errorf("Store.Database should default, got %q", cfg.Store.Database)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/ancestrysim.toml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Simulation.PopulationSize != pipeline.DefaultPopulationSize {
		t.Errorf("PopulationSize = %d, want %d", cfg.Simulation.PopulationSize, pipeline.DefaultPopulationSize)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}
