package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/topostim/topostim/pkg/compile"
)

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := compile.Options{}

	cmd := &cobra.Command{
		Use:   "compile [manifest.toml]",
		Short: "Compile a block graph manifest to a stim circuit",
		Long: `Compile a block graph manifest to a stim circuit.

The compile command takes a TOML manifest describing cubes and pipes on the
integer lattice, builds the layer tree, annotates it with detectors and
observables at the requested scale, and writes the resulting stim circuit.

The scale factor -k controls the code distance via d = 2k+1. With --noise,
depolarizing noise of the given strength is woven into the circuit.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Compile flags
	cmd.Flags().Int64VarP(&opts.K, "scale", "k", compile.DefaultK, "scale factor (code distance d = 2k+1)")
	cmd.Flags().StringVar(&opts.Convention, "convention", compile.DefaultConvention, "surface-code convention: css (default)")
	cmd.Flags().IntVar(&opts.Radius, "radius", compile.DefaultRadius, "matching radius for detector lookback")
	cmd.Flags().Float64Var(&opts.NoiseStrength, "noise", 0, "depolarizing noise strength in [0, 1]")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompile even when a cached circuit exists")

	return cmd
}

// runCompile loads the manifest, compiles it, and writes the circuit.
func (c *CLI) runCompile(ctx context.Context, input string, opts compile.Options, output string, noCache bool) error {
	g, err := loadManifest(input)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Compiling %s at k=%d...", g.Name(), opts.K))
	spinner.Start()
	result, err := runner.Compile(ctx, g, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Compilation failed: %v", err))
		return err
	}
	spinner.Stop()

	if output == "" {
		fmt.Print(result.Text)
		return nil
	}

	if err := os.WriteFile(output, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("write circuit %s: %w", output, err)
	}

	elapsed := result.Stats.BuildTime + result.Stats.AnnotateTime + result.Stats.GenerateTime
	printSuccess("Compiled %s (%s)", g.Name(), elapsed.Round(time.Millisecond))
	printStats(result.Stats.Qubits, result.Stats.Detectors, result.CacheInfo.CircuitHit)
	printKeyValue("Graph hash", result.GraphHash[:12])
	printFile(output)
	printNextStep("Inspect the cache", "topostim cache path")
	return nil
}
