package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/foretime/ancestry/pkg/ancestry/inline"
	"github.com/foretime/ancestry/pkg/observability"
	"github.com/foretime/ancestry/pkg/pipeline"
)

// watchCommand creates the watch command: runs a simulation with a live
// terminal dashboard showing generation progress and the alive and
// retained counts reported after each simplify.
func (c *CLI) watchCommand() *cobra.Command {
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a simulation with a live progress dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.PopulationSize, "population", pipeline.DefaultPopulationSize, "constant population size")
	cmd.Flags().Int64Var(&opts.GenomeLength, "genome-length", pipeline.DefaultGenomeLength, "genome length")
	cmd.Flags().IntVar(&opts.Generations, "generations", pipeline.DefaultGenerations, "number of generations to simulate")
	cmd.Flags().IntVar(&opts.SimplifyInterval, "simplify-interval", pipeline.DefaultSimplifyInterval, "simplify every N generations")
	cmd.Flags().Float64Var(&opts.DeathProbability, "death-probability", pipeline.DefaultDeathProbability, "per-generation death probability")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")

	return cmd
}

// watchTick carries one generation's progress into the bubbletea model.
type watchTick struct {
	generation int64
	alive      int
	simplified bool
	retained   int
}

type watchDone struct {
	nodeCount, edgeCount int
	elapsed              time.Duration
	err                  error
}

type watchModel struct {
	opts       pipeline.Options
	ticks      <-chan watchTick
	done       <-chan watchDone
	generation int64
	alive      int
	retained   int
	finished   bool
	result     watchDone
}

func newWatchModel(opts pipeline.Options, ticks <-chan watchTick, done <-chan watchDone) watchModel {
	return watchModel{opts: opts, ticks: ticks, done: done}
}

func (m watchModel) Init() tea.Cmd {
	return waitForTick(m.ticks, m.done)
}

func waitForTick(ticks <-chan watchTick, done <-chan watchDone) tea.Cmd {
	return func() tea.Msg {
		select {
		case t, ok := <-ticks:
			if !ok {
				return <-done
			}
			return t
		case d := <-done:
			return d
		}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case watchTick:
		m.generation = msg.generation
		m.alive = msg.alive
		if msg.simplified {
			m.retained = msg.retained
		}
		return m, waitForTick(m.ticks, m.done)
	case watchDone:
		m.finished = true
		m.result = msg
		return m, tea.Quit
	}
	return m, nil
}

var (
	watchBarFilled = lipgloss.NewStyle().Foreground(colorCyan)
	watchBarEmpty  = lipgloss.NewStyle().Foreground(colorDim)
)

func (m watchModel) View() string {
	if m.finished {
		if m.result.err != nil {
			return styleIconError.Render(iconError) + " simulation failed: " + m.result.err.Error() + "\n"
		}
		return fmt.Sprintf("%s simulation complete: %d nodes, %d edges (%s)\n",
			styleIconSuccess.Render(iconSuccess), m.result.nodeCount, m.result.edgeCount, m.result.elapsed.Round(time.Millisecond))
	}

	total := m.opts.Generations
	width := 40
	filled := 0
	if total > 0 {
		filled = int(float64(width) * float64(m.generation) / float64(total))
	}
	bar := watchBarFilled.Render(repeatRune('█', filled)) + watchBarEmpty.Render(repeatRune('░', width-filled))

	return fmt.Sprintf("%s\n\n%s  %d/%d\n\nalive: %d   retained: %d\n\n%s\n",
		StyleTitle.Render("ancestrysim watch"), bar, m.generation, total, m.alive, m.retained,
		StyleDim.Render("q to quit"))
}

func repeatRune(r rune, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options) error {
	opts.SetDefaults()
	opts.Logger = c.Logger

	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sim, err := inline.NewPopulation(opts.GenomeLength)
	if err != nil {
		return fmt.Errorf("initialize population: %w", err)
	}

	ticks := make(chan watchTick, 64)
	done := make(chan watchDone, 1)

	observability.SetPipelineHooks(&watchHooks{ticks: ticks})
	defer observability.Reset()

	go func() {
		start := time.Now()
		result, err := runner.Run(ctx, sim, opts)
		close(ticks)
		if err != nil {
			done <- watchDone{err: err}
			return
		}
		done <- watchDone{
			nodeCount: len(result.Snapshot.Nodes),
			edgeCount: len(result.Snapshot.Edges),
			elapsed:   time.Since(start),
		}
	}()

	model := newWatchModel(opts, ticks, done)
	program := tea.NewProgram(model)
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	if final, ok := finalModel.(watchModel); ok && final.result.err != nil {
		return fmt.Errorf("run simulation: %w", final.result.err)
	}
	return nil
}

// watchHooks forwards generation/simplify progress into the dashboard's
// tick channel. It implements observability.PipelineHooks; every method
// not needed for the dashboard is a no-op.
type watchHooks struct {
	observability.NoopPipelineHooks
	ticks    chan<- watchTick
	lastGen  int64
	lastSize int
}

func (h *watchHooks) OnGenerationComplete(ctx context.Context, generation int64, duration time.Duration, err error) {
	h.lastGen = generation
	select {
	case h.ticks <- watchTick{generation: generation, alive: h.lastSize}:
	default:
	}
}

func (h *watchHooks) OnGenerationStart(ctx context.Context, generation int64, populationSize int) {
	h.lastSize = populationSize
}

func (h *watchHooks) OnSimplifyComplete(ctx context.Context, driver string, retainedCount int, duration time.Duration, err error) {
	select {
	case h.ticks <- watchTick{generation: h.lastGen, alive: h.lastSize, simplified: true, retained: retainedCount}:
	default:
	}
}
