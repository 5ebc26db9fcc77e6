// Package compile provides the block graph → stim circuit pipeline.
//
// This package implements the complete build → annotate → generate pipeline
// that can be used by CLI, API, and sweep components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Lower the block graph to layer stacks and a layer tree
//  2. Annotate: Realize circuits, infer detectors, and resolve observables
//     at a concrete scale factor
//  3. Generate: Assemble the final circuit against the global qubit map
//
// The build stage is scale-independent: the same tree serves every scale
// factor, which is what makes sweeps cheap.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := compile.NewRunner(cache, nil, logger)
//	opts := compile.Options{K: 2}
//	result, err := runner.Compile(ctx, graph, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Text)
package compile

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/observables"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Sweep
// =============================================================================

const (
	// DefaultK is the default scale factor (code distance d = 2k+1).
	DefaultK = int64(1)

	// DefaultRadius is the default Manhattan matching radius for detector
	// inference.
	DefaultRadius = 2

	// DefaultConvention is the default plaquette convention.
	DefaultConvention = "css"
)

// ValidConventions is the set of supported plaquette conventions.
var ValidConventions = map[string]bool{
	"css": true,
}

// Options configures one compilation.
type Options struct {
	// K is the scale factor; the compiled circuit has code distance 2K+1.
	K int64

	// Convention selects the plaquette convention. Defaults to "css".
	Convention string

	// Radius is the Manhattan matching radius for detector inference.
	Radius int

	// Observables are the logical observables to annotate. When empty, a
	// single observable in the first cube's temporal basis is used, which
	// is the right default for memory experiments.
	Observables []observables.Abstract

	// NoiseStrength, when positive, applies depolarizing noise of that
	// strength to the compiled circuit.
	NoiseStrength float64

	// Refresh bypasses the cache and recompiles.
	Refresh bool

	// Logger overrides the runner's logger for this compilation.
	Logger *log.Logger
}

// ValidateAndSetDefaults validates options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.K < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "scale factor must be at least 1, got %d", o.K)
	}
	if o.Convention == "" {
		o.Convention = DefaultConvention
	}
	if !ValidConventions[o.Convention] {
		return errors.New(errors.ErrCodeUnsupported, "unknown convention %q", o.Convention)
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.Radius < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "matching radius must be at least 1, got %d", o.Radius)
	}
	if o.NoiseStrength < 0 || o.NoiseStrength > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "noise strength must be in [0, 1], got %g", o.NoiseStrength)
	}
	return nil
}

// Stats contains compilation statistics.
type Stats struct {
	// BuildTime is how long the graph → layer tree stage took.
	BuildTime time.Duration

	// AnnotateTime is how long circuit, detector, and observable
	// annotation took.
	AnnotateTime time.Duration

	// GenerateTime is how long final assembly took.
	GenerateTime time.Duration

	// Leaves is the number of leaf layers in the layer tree.
	Leaves int

	// Qubits is the size of the global qubit map.
	Qubits int

	// Detectors is the total DETECTOR count in the compiled circuit,
	// counting repeat blocks multiplicatively.
	Detectors int64

	// Observables is the OBSERVABLE_INCLUDE count.
	Observables int64
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	CircuitHit bool // Whether the compiled circuit came from cache
}
