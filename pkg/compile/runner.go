package compile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/cache"
	"github.com/topostim/topostim/pkg/convention"
	"github.com/topostim/topostim/pkg/detectors"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/observability"
	"github.com/topostim/topostim/pkg/observables"
	"github.com/topostim/topostim/pkg/stim"
	"github.com/topostim/topostim/pkg/topology"
	"github.com/topostim/topostim/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store compilation results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result is the output of one compilation.
type Result struct {
	// ID identifies this compilation run.
	ID string

	// GraphHash is the content hash of the block graph's manifest.
	GraphHash string

	// Text is the compiled circuit in stim text format.
	Text string

	// Circuit is the compiled circuit. Nil when the result came from
	// cache; Text is always populated.
	Circuit *stim.Circuit

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// circuitArtifact is the cached form of a compiled circuit. Counts ride
// along so a cache hit can restore the interesting stats without parsing
// the text back.
type circuitArtifact struct {
	Text        string `json:"text"`
	Leaves      int    `json:"leaves"`
	Qubits      int    `json:"qubits"`
	Detectors   int64  `json:"detectors"`
	Observables int64  `json:"observables"`
}

// Compile runs the complete build → annotate → generate pipeline with
// caching.
func (r *Runner) Compile(ctx context.Context, g *blockgraph.BlockGraph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	if err := g.Validate(); err != nil {
		return nil, err
	}

	result := &Result{ID: uuid.NewString()}

	// Compute the graph hash for cache keys and API responses.
	manifestData, err := toml.Marshal(g.ToManifest())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "serialize manifest for cache key")
	}
	result.GraphHash = cache.Hash(manifestData)

	cacheKey := r.Keyer.CircuitKey(result.GraphHash, cache.CircuitKeyOpts{
		K:          opts.K,
		Convention: opts.Convention,
		Radius:     opts.Radius,
		Noise:      opts.NoiseStrength,
	})

	// Try cache first (unless refresh requested).
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var artifact circuitArtifact
			if err := json.Unmarshal(data, &artifact); err == nil {
				observability.Cache().OnCacheHit(ctx, "circuit")
				result.Text = artifact.Text
				result.Stats.Leaves = artifact.Leaves
				result.Stats.Qubits = artifact.Qubits
				result.Stats.Detectors = artifact.Detectors
				result.Stats.Observables = artifact.Observables
				result.CacheInfo.CircuitHit = true
				logger.Info("compiled circuit from cache",
					"graph", g.Name(),
					"k", opts.K)
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "circuit")
	}

	// Stage 1: Build
	buildStart := time.Now()
	tr, err := r.BuildTree(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Leaves = len(tr.Leaves())

	logger.Info("built layer tree",
		"graph", g.Name(),
		"leaves", result.Stats.Leaves,
		"duration", result.Stats.BuildTime)

	// Stage 2: Annotate
	annotateStart := time.Now()
	observability.Compile().OnAnnotateStart(ctx, g.Name(), opts.K)
	leafDetectors, err := r.annotate(ctx, tr, g, opts)
	if err != nil {
		observability.Compile().OnAnnotateComplete(ctx, g.Name(), opts.K, 0, time.Since(annotateStart), err)
		return nil, err
	}
	result.Stats.AnnotateTime = time.Since(annotateStart)
	observability.Compile().OnAnnotateComplete(ctx, g.Name(), opts.K, leafDetectors, result.Stats.AnnotateTime, nil)

	logger.Info("annotated layer tree",
		"graph", g.Name(),
		"k", opts.K,
		"duration", result.Stats.AnnotateTime)

	// Stage 3: Generate
	generateStart := time.Now()
	observability.Compile().OnGenerateStart(ctx, g.Name(), opts.K)
	circuit, qubits, err := r.generate(tr, opts)
	if err != nil {
		observability.Compile().OnGenerateComplete(ctx, g.Name(), opts.K, 0, time.Since(generateStart), err)
		return nil, err
	}
	result.Circuit = circuit
	result.Text = circuit.String()
	result.Stats.GenerateTime = time.Since(generateStart)
	result.Stats.Qubits = qubits
	result.Stats.Detectors = circuit.CountInstructions("DETECTOR")
	result.Stats.Observables = circuit.CountInstructions("OBSERVABLE_INCLUDE")
	observability.Compile().OnGenerateComplete(ctx, g.Name(), opts.K, len(circuit.Operations()), result.Stats.GenerateTime, nil)

	logger.Info("generated circuit",
		"graph", g.Name(),
		"k", opts.K,
		"qubits", result.Stats.Qubits,
		"detectors", result.Stats.Detectors,
		"duration", result.Stats.GenerateTime)

	// Cache the artifact.
	artifact := circuitArtifact{
		Text:        result.Text,
		Leaves:      result.Stats.Leaves,
		Qubits:      result.Stats.Qubits,
		Detectors:   result.Stats.Detectors,
		Observables: result.Stats.Observables,
	}
	if data, err := json.Marshal(artifact); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLCircuit); err == nil {
			observability.Cache().OnCacheSet(ctx, "circuit", len(data))
		}
	}

	return result, nil
}

// BuildTree lowers a block graph to a layer tree: convention builders turn
// cubes and pipes into blocks, junction insertion trims the blocks, and the
// merged per-depth layer stacks become the tree. The tree is
// scale-independent and can be annotated at any number of scale factors.
func (r *Runner) BuildTree(ctx context.Context, g *blockgraph.BlockGraph, opts Options) (*tree.Tree, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	observability.Compile().OnBuildStart(ctx, g.Name(), g.NumCubes()+g.NumPipes())
	start := time.Now()

	tr, err := buildTree(g)
	leaves := 0
	if tr != nil {
		leaves = len(tr.Leaves())
	}
	observability.Compile().OnBuildComplete(ctx, g.Name(), leaves, time.Since(start), err)
	return tr, err
}

func buildTree(g *blockgraph.BlockGraph) (*tree.Tree, error) {
	conv := convention.CSS()

	topo := topology.NewGraph()
	for _, c := range g.Cubes() {
		block, err := conv.BuildCube(c.Kind)
		if err != nil {
			return nil, err
		}
		if err := topo.AddCube(c.Position, block); err != nil {
			return nil, err
		}
	}
	for _, p := range g.Pipes() {
		block, err := conv.BuildPipe(p.Kind)
		if err != nil {
			return nil, err
		}
		if err := topo.AddJunction(p.Source, p.Sink, block); err != nil {
			return nil, err
		}
	}

	stacks, err := topo.LayoutLayers()
	if err != nil {
		return nil, err
	}
	return tree.New(stacks)
}

// annotate runs the per-k annotation passes over the tree. It returns the
// total per-leaf detector count (not counting repetitions).
func (r *Runner) annotate(ctx context.Context, tr *tree.Tree, g *blockgraph.BlockGraph, opts Options) (int, error) {
	if err := tr.AnnotateCircuits(opts.K); err != nil {
		return 0, err
	}
	database := detectors.NewDatabase(r.Cache, r.Keyer, nil)
	if err := tr.AnnotateDetectors(opts.K, database.Bound(ctx), opts.Radius); err != nil {
		return 0, err
	}
	abstracts := opts.Observables
	if len(abstracts) == 0 {
		defaults, err := defaultObservables(g)
		if err != nil {
			return 0, err
		}
		abstracts = defaults
	}
	if err := tr.AnnotateObservables(opts.K, abstracts); err != nil {
		return 0, err
	}

	total := 0
	for _, leaf := range tr.Leaves() {
		ann, err := leaf.AnnotationAt(opts.K)
		if err != nil {
			return 0, err
		}
		total += len(ann.Detectors)
	}
	return total, nil
}

// generate assembles the final circuit: qubit coordinate declarations from
// the global map, then the tree body remapped into it.
func (r *Runner) generate(tr *tree.Tree, opts Options) (*stim.Circuit, int, error) {
	global, err := tr.GlobalQubitMap(opts.K)
	if err != nil {
		return nil, 0, err
	}

	circuit := stim.NewCircuit()
	for _, coords := range global.QubitCoordsInstructions() {
		circuit.AppendInstruction(coords)
	}
	body, err := tr.GenerateCircuit(opts.K, global)
	if err != nil {
		return nil, 0, err
	}
	circuit.AppendCircuit(body)

	if opts.NoiseStrength > 0 {
		circuit = WithDepolarizingNoise(circuit, opts.NoiseStrength)
	}
	return circuit, global.Len(), nil
}

// defaultObservables derives the memory-experiment default: one observable
// in the temporal basis of the graph's first cube.
func defaultObservables(g *blockgraph.BlockGraph) ([]observables.Abstract, error) {
	cubes := g.Cubes()
	if len(cubes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "block graph has no cubes")
	}
	basis, err := cubes[0].Kind.TemporalBasis()
	if err != nil {
		return nil, err
	}
	return []observables.Abstract{{Index: 0, Basis: basis}}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// logger returns the per-call logger, falling back to the runner's.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
