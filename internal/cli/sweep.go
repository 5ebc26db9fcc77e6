package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/compile"
	"github.com/topostim/topostim/pkg/observability"
)

// sweepCommand creates the sweep command.
func (c *CLI) sweepCommand() *cobra.Command {
	var (
		noCache bool
		plain   bool
	)
	opts := compile.SweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep [manifest.toml]",
		Short: "Compile a block graph across a (scale, noise) grid",
		Long: `Compile a block graph across a (scale, noise) grid.

The sweep command compiles the same manifest at every combination of the
given scale factors and noise strengths, running points in parallel. It is
the starting point for threshold studies: feed each compiled circuit to a
sampler and plot logical error rate against physical noise.

Results print as a table in grid order (scale-major, then noise).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSweep(cmd.Context(), args[0], opts, noCache, plain)
		},
	}

	cmd.Flags().Int64SliceVarP(&opts.Ks, "scale", "k", []int64{1}, "scale factors to compile at")
	cmd.Flags().Float64SliceVar(&opts.NoiseStrengths, "noise", nil, "noise strengths (default noiseless)")
	cmd.Flags().StringVar(&opts.Convention, "convention", compile.DefaultConvention, "surface-code convention: css (default)")
	cmd.Flags().IntVar(&opts.Radius, "radius", compile.DefaultRadius, "matching radius for detector lookback")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "max concurrent compilations (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompile even when cached circuits exist")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable the live progress display")

	return cmd
}

// runSweep compiles the grid and prints the results table.
func (c *CLI) runSweep(ctx context.Context, input string, opts compile.SweepOptions, noCache, plain bool) error {
	g, err := loadManifest(input)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	total := len(opts.Ks)
	if n := len(opts.NoiseStrengths); n > 0 {
		total *= n
	}

	var points []compile.SweepPoint
	if plain {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Sweeping %s (%d points)...", g.Name(), total))
		spinner.Start()
		points, err = runner.Sweep(ctx, g, opts)
		spinner.Stop()
		if err != nil {
			return err
		}
	} else {
		points, err = c.runSweepTUI(ctx, runner, g, total, opts)
		if err != nil {
			return err
		}
	}

	fmt.Println(renderSweepTable(points))
	printDetail("%d points · graph %s", len(points), g.Name())
	return nil
}

// runSweepTUI runs the sweep behind a bubbletea progress display. Compile
// hooks feed per-point completions into the model.
func (c *CLI) runSweepTUI(ctx context.Context, runner *compile.Runner, g *blockgraph.BlockGraph, total int, opts compile.SweepOptions) ([]compile.SweepPoint, error) {
	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so hooks never block, even if the UI exits first.
	msgs := make(chan tea.Msg, total+1)
	hooks := &sweepProgressHooks{msgs: msgs}
	observability.SetCompileHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	go func() {
		points, err := runner.Sweep(sweepCtx, g, opts)
		msgs <- sweepDoneMsg{points: points, err: err}
	}()

	program := tea.NewProgram(NewSweepModel(g.Name(), total, cancel, msgs), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return nil, err
	}

	model, ok := final.(SweepModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if model.Err != nil {
		return nil, model.Err
	}
	return model.Points, nil
}
