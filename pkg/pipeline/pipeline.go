// Package pipeline orchestrates a Simulator's setup/generate-deaths/
// record-birth/simplify/finish lifecycle across many generations,
// collecting stats and caching the resulting snapshot.
//
// # Architecture
//
// A Runner drives any Simulator (inline.Population is the one concrete
// implementation) through a toy random-mating population loop: each
// generation it asks the simulator which slots die, replaces them with
// births carrying a single random crossover, and periodically calls
// Simplify. The final alive cohort is converted to tree-sequence tables
// and, unless caching is disabled, stored under a key derived from the
// run parameters so a repeated run with identical parameters and seed
// skips the simulation entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{PopulationSize: 50, GenomeLength: 1000, Generations: 200}
//	sim, err := inline.NewPopulation(opts.GenomeLength)
//	result, err := runner.Run(ctx, sim, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/foretime/ancestry/pkg/ancestry/segment"
	"github.com/foretime/ancestry/pkg/ancestry/tables"
)

// Default values shared by the CLI and any programmatic caller, the
// single source of truth the teacher's pipeline package also kept.
const (
	DefaultPopulationSize   = 50
	DefaultGenomeLength     = segment.Position(1000)
	DefaultGenerations      = 200
	DefaultSimplifyInterval = 10
	DefaultDeathProbability = 0.3
	DefaultSeed             = uint64(42)
)

// Options configures a simulation run.
type Options struct {
	PopulationSize   int              `toml:"population_size" json:"population_size"`
	GenomeLength     segment.Position `toml:"genome_length" json:"genome_length"`
	Generations      int              `toml:"generations" json:"generations"`
	SimplifyInterval int              `toml:"simplify_interval" json:"simplify_interval"`
	DeathProbability float64          `toml:"death_probability" json:"death_probability"`
	Seed             uint64           `toml:"seed" json:"seed"`

	// Refresh bypasses the snapshot cache even if a matching entry exists.
	Refresh bool `toml:"-" json:"refresh,omitempty"`

	// Logger defaults to a discarding logger if unset. Runner.Run does not
	// log through it; the runner logs through its own Logger field.
	Logger *log.Logger `toml:"-" json:"-"`
}

// SetDefaults fills zero-valued fields with the package defaults. It is
// idempotent.
func (o *Options) SetDefaults() {
	if o.PopulationSize == 0 {
		o.PopulationSize = DefaultPopulationSize
	}
	if o.GenomeLength == 0 {
		o.GenomeLength = DefaultGenomeLength
	}
	if o.Generations == 0 {
		o.Generations = DefaultGenerations
	}
	if o.SimplifyInterval == 0 {
		o.SimplifyInterval = DefaultSimplifyInterval
	}
	if o.DeathProbability == 0 {
		o.DeathProbability = DefaultDeathProbability
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result contains the outputs of a Run.
type Result struct {
	// RunID uniquely identifies this invocation, stamped via google/uuid.
	RunID string

	// Snapshot is the final tree-sequence tables for the alive cohort.
	Snapshot *tables.Tables

	// Stats contains counters and timing from the run.
	Stats Stats

	// CacheHit reports whether Snapshot was served from the cache instead
	// of freshly simulated.
	CacheHit bool
}

// Stats contains simulation run statistics.
type Stats struct {
	Generations   int
	TotalBirths   int
	TotalDeaths   int
	SimplifyCalls int
	Elapsed       time.Duration
}
