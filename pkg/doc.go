// Package pkg provides the core libraries for topostim circuit compilation.
//
// # Overview
//
// Topostim compiles abstract 3D block graphs of surface-code cubes and pipes
// into scale-parameterized stim circuits with detector and observable
// annotations. The pkg directory is organized into four main areas:
//
//  1. Domain logic (block graphs, conventions, topology, layers, trees)
//  2. Annotation (detectors, observables, scalable circuit generation)
//  3. Orchestration (compile runner, caching, observability)
//  4. Output (stim circuit types, graphviz diagram rendering)
//
// # Architecture
//
// The typical data flow through topostim:
//
//	TOML manifest
//	         ↓
//	    [blockgraph] package (cubes + pipes on the integer lattice)
//	         ↓
//	    [convention] + [templates] packages (blocks of plaquettes)
//	         ↓
//	    [topology] package (trim and merge into per-depth layers)
//	         ↓
//	    [tree] package (leaf/repeat structure, per-k annotation)
//	         ↓
//	    [stim] package (final circuit with DETECTOR/OBSERVABLE_INCLUDE)
//
// # Quick Start
//
// Compile a single memory cube at scale k=1:
//
//	import (
//	    "context"
//	    "github.com/topostim/topostim/pkg/blockgraph"
//	    "github.com/topostim/topostim/pkg/compile"
//	    "github.com/topostim/topostim/pkg/convention"
//	    "github.com/topostim/topostim/pkg/grid"
//	)
//
//	g := blockgraph.New("memory")
//	g.AddCube(grid.Position3D{}, convention.Kind("ZXZ"))
//
//	runner := compile.NewRunner(nil, nil, nil)
//	result, _ := runner.Compile(context.Background(), g, compile.Options{K: 1})
//	fmt.Print(result.Text)
//
// # Main Packages
//
// [blockgraph] - Block graphs of cubes and pipes, with TOML manifest loading
// and validation.
//
// [convention] - Boundary conventions mapping cube and pipe kinds to concrete
// blocks of plaquettes.
//
// [topology] - Junction insertion and per-depth layer merging across
// neighboring blocks.
//
// [tree] - The scale-independent layer tree and its per-k annotation passes:
// circuits, detectors, observables, and final assembly.
//
// [detectors] - Detector computation by matching ancilla measurements across
// rounds, with a cache-backed database wrapper.
//
// [observables] - Logical observable tracking along correlation surfaces.
//
// [scalable] - Integer linear expressions in the scale factor k, used for
// coordinates and repetition counts.
//
// [stim] - Circuit, instruction, and qubit map types with stim text output.
//
// [compile] - Orchestration: the build → annotate → generate pipeline with
// caching, noise instrumentation, and (k, noise) grid sweeps.
//
// [cache] - Content-addressed caching with file, Redis, and null backends.
//
// [render] - Graphviz diagrams of block graphs (DOT, SVG, PNG).
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/tree/...       # Specific package
//	go test -run Example         # Examples only
//
// [blockgraph]: https://pkg.go.dev/github.com/topostim/topostim/pkg/blockgraph
// [convention]: https://pkg.go.dev/github.com/topostim/topostim/pkg/convention
// [topology]: https://pkg.go.dev/github.com/topostim/topostim/pkg/topology
// [tree]: https://pkg.go.dev/github.com/topostim/topostim/pkg/tree
// [detectors]: https://pkg.go.dev/github.com/topostim/topostim/pkg/detectors
// [observables]: https://pkg.go.dev/github.com/topostim/topostim/pkg/observables
// [scalable]: https://pkg.go.dev/github.com/topostim/topostim/pkg/scalable
// [stim]: https://pkg.go.dev/github.com/topostim/topostim/pkg/stim
// [compile]: https://pkg.go.dev/github.com/topostim/topostim/pkg/compile
// [cache]: https://pkg.go.dev/github.com/topostim/topostim/pkg/cache
// [render]: https://pkg.go.dev/github.com/topostim/topostim/pkg/render
// [errors]: https://pkg.go.dev/github.com/topostim/topostim/pkg/errors
// [templates]: https://pkg.go.dev/github.com/topostim/topostim/pkg/templates
package pkg
