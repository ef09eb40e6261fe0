package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/foretime/ancestry/internal/config"
	"github.com/foretime/ancestry/pkg/ancestry/inline"
	"github.com/foretime/ancestry/pkg/ancestry/tables"
	"github.com/foretime/ancestry/pkg/pipeline"
)

// simulateCommand creates the simulate command for running a forward-time
// population simulation and simplifying it down to a tree-sequence
// snapshot.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		configPath string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a forward-time ancestry simulation",
		Long: `Run a forward-time Wright-Fisher simulation over a recombining genome,
simplifying the ancestry graph down to the history that matters to the
final generation's samples as it goes.

Parameters can be supplied via a TOML config file (--config) or individual
flags; flags take precedence over the config file.

Results are cached locally keyed on the simulation's parameters, so
repeated runs with identical flags return instantly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				mergeSimulationFlags(&opts, cfg.Simulation, cmd)
			}
			return c.runSimulate(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (see internal/config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the snapshot (default: snapshot.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&opts.PopulationSize, "population", pipeline.DefaultPopulationSize, "constant population size")
	cmd.Flags().Int64Var(&opts.GenomeLength, "genome-length", pipeline.DefaultGenomeLength, "genome length")
	cmd.Flags().IntVar(&opts.Generations, "generations", pipeline.DefaultGenerations, "number of generations to simulate")
	cmd.Flags().IntVar(&opts.SimplifyInterval, "simplify-interval", pipeline.DefaultSimplifyInterval, "simplify every N generations")
	cmd.Flags().Float64Var(&opts.DeathProbability, "death-probability", pipeline.DefaultDeathProbability, "per-generation death probability")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the snapshot cache")

	return cmd
}

// mergeSimulationFlags lets config-file values fill in fields the user
// didn't override on the command line.
func mergeSimulationFlags(opts *pipeline.Options, fromConfig pipeline.Options, cmd *cobra.Command) {
	if !cmd.Flags().Changed("population") {
		opts.PopulationSize = fromConfig.PopulationSize
	}
	if !cmd.Flags().Changed("genome-length") {
		opts.GenomeLength = fromConfig.GenomeLength
	}
	if !cmd.Flags().Changed("generations") {
		opts.Generations = fromConfig.Generations
	}
	if !cmd.Flags().Changed("simplify-interval") {
		opts.SimplifyInterval = fromConfig.SimplifyInterval
	}
	if !cmd.Flags().Changed("death-probability") {
		opts.DeathProbability = fromConfig.DeathProbability
	}
	if !cmd.Flags().Changed("seed") {
		opts.Seed = fromConfig.Seed
	}
}

func (c *CLI) runSimulate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	opts.SetDefaults()
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sim, err := inline.NewPopulation(opts.GenomeLength)
	if err != nil {
		return fmt.Errorf("initialize population: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %d generations...", opts.Generations))
	spinner.Start()

	result, err := runner.Run(ctx, sim, opts)
	if err != nil {
		spinner.StopWithError("Simulation failed")
		return fmt.Errorf("run simulation: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = "snapshot.json"
	}

	data, err := tables.Encode(result.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Simulation complete")
	printFile(outputPath)
	printStats(len(result.Snapshot.Nodes), len(result.Snapshot.Edges), result.CacheHit)
	if !result.CacheHit {
		printDetail("%d births, %d deaths, %d simplify passes (%s)",
			result.Stats.TotalBirths, result.Stats.TotalDeaths, result.Stats.SimplifyCalls, result.Stats.Elapsed.Round(time.Millisecond))
	}
	printNewline()
	printNextStep("Visualize", "ancestrysim visualize "+outputPath)

	return nil
}
