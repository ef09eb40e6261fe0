package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/foretime/ancestry/pkg/ancestry/aerrors"
	"github.com/foretime/ancestry/pkg/ancestry/graph"
	"github.com/foretime/ancestry/pkg/ancestry/inline"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
	"github.com/foretime/ancestry/pkg/ancestry/tables"
	"github.com/foretime/ancestry/pkg/cache"
	"github.com/foretime/ancestry/pkg/observability"
)

// DeathOracle yields a Bernoulli death outcome for the alive slot
// currently under consideration. It is a type alias for inline.DeathOracle
// so that inline.Population's GenerateDeaths satisfies Simulator exactly.
type DeathOracle = inline.DeathOracle

// Simulator is the spec's simulator interface
// (setup/generate_deaths/record_birth/simplify/finish), implemented by
// *inline.Population. Expressing it as an interface here lets Runner
// drive any conforming population loop without depending on the inline
// package's concrete type.
type Simulator interface {
	Setup(finalTime segment.Time, initialSize int) error
	GenerateDeaths(oracle DeathOracle) []int
	RecordBirth(birthTime, finalTime segment.Time, transmissions []inline.Transmission) (*graph.Node, error)
	Replace(deathSlot int, newborn *graph.Node) error
	Simplify(currentTime segment.Time) error
	Finish(currentTime segment.Time) error
	Alive() []*graph.Node
}

var _ Simulator = (*inline.Population)(nil)

// RandOracle wraps math/rand/v2 with a fixed death probability, for
// reproducible toy simulations driven from the CLI.
type RandOracle struct {
	rng  *rand.Rand
	prob float64
}

// NewRandOracle creates a RandOracle seeded deterministically from seed.
func NewRandOracle(seed uint64, prob float64) *RandOracle {
	return &RandOracle{
		rng:  rand.New(rand.NewPCG(seed, seed>>32|1)),
		prob: prob,
	}
}

// Dies reports a Bernoulli(prob) outcome.
func (o *RandOracle) Dies() bool {
	return o.rng.Float64() < o.prob
}

// crossover picks a uniform crossover point strictly between 0 and
// genomeLength, and a distinct pair of parent slots out of populationSize.
func (o *RandOracle) crossover(genomeLength segment.Position, populationSize int) (segment.Position, int, int) {
	x := segment.Position(1 + o.rng.IntN(int(genomeLength)-1))
	p0 := o.rng.IntN(populationSize)
	p1 := o.rng.IntN(populationSize - 1)
	if p1 >= p0 {
		p1++
	}
	return x, p0, p1
}

// Runner drives a Simulator through a random-mating population loop with
// caching. It is stateless except for the cache and logger; a single
// Runner can drive multiple Run calls.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer. If keyer is
// nil, a DefaultKeyer is used. If c is nil, a NullCache is used (caching
// disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// paramsHash derives a content hash from a run's parameters: two runs
// with identical parameters and seed are, by construction of RandOracle's
// seeding, identical runs.
func paramsHash(opts Options) string {
	return cache.Hash([]byte(fmt.Sprintf("%d:%d:%d:%d:%f:%d",
		opts.PopulationSize, opts.GenomeLength, opts.Generations,
		opts.SimplifyInterval, opts.DeathProbability, opts.Seed)))
}

// Run drives sim through opts.Generations generations of random mating,
// simplifying every SimplifyInterval generations, and returns the final
// alive cohort as tree-sequence tables.
func (r *Runner) Run(ctx context.Context, sim Simulator, opts Options) (*Result, error) {
	opts.SetDefaults()
	runID := uuid.New().String()
	logger := r.Logger.With("run_id", runID)

	snapshotKey := r.Keyer.SnapshotKey(int64(opts.Generations), paramsHash(opts))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, snapshotKey); err == nil && hit {
			snapshot, err := tables.Decode(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				logger.Info("snapshot served from cache", "generations", opts.Generations)
				return &Result{RunID: runID, Snapshot: snapshot, CacheHit: true}, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	start := time.Now()
	stats := Stats{}

	if err := sim.Setup(0, opts.PopulationSize); err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeInvalidGenomeLength, err, "setup")
	}

	oracle := NewRandOracle(opts.Seed, opts.DeathProbability)

	for gen := 1; gen <= opts.Generations; gen++ {
		genTime := segment.Time(gen)
		observability.Pipeline().OnGenerationStart(ctx, int64(gen), opts.PopulationSize)
		genStart := time.Now()

		deaths := sim.GenerateDeaths(oracle)
		stats.TotalDeaths += len(deaths)
		for _, slot := range deaths {
			x, p0, p1 := oracle.crossover(opts.GenomeLength, opts.PopulationSize)
			transmissions := []inline.Transmission{
				{ParentSlot: p0, Left: 0, Right: x},
				{ParentSlot: p1, Left: x, Right: opts.GenomeLength},
			}
			newborn, err := sim.RecordBirth(genTime, genTime, transmissions)
			if err != nil {
				return nil, err
			}
			stats.TotalBirths++
			if err := sim.Replace(slot, newborn); err != nil {
				return nil, err
			}
		}

		if gen%opts.SimplifyInterval == 0 {
			observability.Pipeline().OnSimplifyStart(ctx, "inline", len(sim.Alive()))
			simplifyStart := time.Now()
			err := sim.Simplify(genTime)
			observability.Pipeline().OnSimplifyComplete(ctx, "inline", len(sim.Alive()), time.Since(simplifyStart), err)
			if err != nil {
				return nil, err
			}
			stats.SimplifyCalls++
		}

		observability.Pipeline().OnGenerationComplete(ctx, int64(gen), time.Since(genStart), nil)
	}

	if err := sim.Finish(segment.Time(opts.Generations)); err != nil {
		return nil, err
	}

	snapshot, err := tables.FromInline(sim.Alive())
	if err != nil {
		return nil, err
	}
	tables.SortAndIndex(snapshot)

	stats.Generations = opts.Generations
	stats.Elapsed = time.Since(start)

	if !opts.Refresh {
		if data, err := tables.Encode(snapshot); err == nil {
			_ = r.Cache.Set(ctx, snapshotKey, data, 24*time.Hour)
			observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
		}
	}

	logger.Info("simulation complete",
		"generations", stats.Generations,
		"births", stats.TotalBirths,
		"deaths", stats.TotalDeaths,
		"simplify_calls", stats.SimplifyCalls,
		"elapsed", stats.Elapsed)

	return &Result{RunID: runID, Snapshot: snapshot, Stats: stats}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
