package compile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/cache"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
)

func memoryGraph(t *testing.T) *blockgraph.BlockGraph {
	t.Helper()
	g := blockgraph.New("memory")
	require.NoError(t, g.AddCube(grid.Position3D{}, "ZXZ"))
	return g
}

func stabilityGraph(t *testing.T) *blockgraph.BlockGraph {
	t.Helper()
	g := blockgraph.New("stability")
	require.NoError(t, g.AddCube(grid.Position3D{}, "ZXZ"))
	require.NoError(t, g.AddCube(grid.Position3D{Z: 1}, "ZXZ"))
	require.NoError(t, g.AddPipe(grid.Position3D{}, grid.Position3D{Z: 1}, ""))
	return g
}

func TestCompileMemoryCube(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	for _, tc := range []struct {
		k         int64
		d         int64
		detectors int64
	}{
		// d = 2k+1 rounds, (d²−1) stabilizers per round
		{k: 1, d: 3, detectors: 8 * 3},
		{k: 2, d: 5, detectors: 24 * 5},
	} {
		result, err := runner.Compile(ctx, memoryGraph(t), Options{K: tc.k})
		require.NoError(t, err, "k=%d", tc.k)
		require.NotNil(t, result.Circuit)

		assert.Equal(t, tc.detectors, result.Stats.Detectors, "detector count at k=%d", tc.k)
		assert.Equal(t, int64(1), result.Stats.Observables, "observable count at k=%d", tc.k)

		// d² data plus d²−1 ancilla qubits
		assert.Equal(t, int(tc.d*tc.d+tc.d*tc.d-1), result.Stats.Qubits, "qubit count at k=%d", tc.k)

		assert.NotEmpty(t, result.ID)
		assert.NotEmpty(t, result.GraphHash)
		assert.False(t, result.CacheInfo.CircuitHit)
		assert.Contains(t, result.Text, "QUBIT_COORDS")
		assert.Contains(t, result.Text, "OBSERVABLE_INCLUDE(0)")
	}
}

func TestCompileTemporalPipe(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	// Two cubes joined by a temporal pipe run for 2d rounds total.
	result, err := runner.Compile(ctx, stabilityGraph(t), Options{K: 1})
	require.NoError(t, err)

	const d = 3
	assert.Equal(t, int64((d*d-1)*2*d), result.Stats.Detectors)
	assert.Equal(t, int64(1), result.Stats.Observables)
}

func TestCompileDeterministic(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	a, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1})
	require.NoError(t, err)
	b, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1})
	require.NoError(t, err)

	assert.Equal(t, a.Text, b.Text, "same graph and options must compile identically")
	assert.Equal(t, a.GraphHash, b.GraphHash)
}

func TestCompileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	fileCache, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fileCache, nil, nil)
	defer runner.Close()

	first, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1})
	require.NoError(t, err)
	require.False(t, first.CacheInfo.CircuitHit)

	second, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1})
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.CircuitHit)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Stats.Detectors, second.Stats.Detectors)
	assert.Equal(t, first.Stats.Qubits, second.Stats.Qubits)
	assert.Nil(t, second.Circuit, "cache hits carry only text")

	// Refresh bypasses the cache.
	third, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1, Refresh: true})
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.CircuitHit)
	assert.Equal(t, first.Text, third.Text)
}

func TestCompileNoise(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1, NoiseStrength: 0.001})
	require.NoError(t, err)

	assert.Positive(t, result.Circuit.CountInstructions("DEPOLARIZE2"))
	assert.Positive(t, result.Circuit.CountInstructions("X_ERROR"))
	assert.Contains(t, result.Text, "DEPOLARIZE2(0.001)")

	// Noise channels must not disturb the measurement record.
	clean, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1})
	require.NoError(t, err)
	assert.Equal(t, clean.Circuit.NumMeasurements(), result.Circuit.NumMeasurements())
	assert.Equal(t, clean.Stats.Detectors, result.Stats.Detectors)
}

func TestCompileOptionValidation(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)
	g := memoryGraph(t)

	_, err := runner.Compile(ctx, g, Options{K: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "negative k: %v", err)

	_, err = runner.Compile(ctx, g, Options{K: 1, Convention: "rotated"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported), "unknown convention: %v", err)

	_, err = runner.Compile(ctx, g, Options{K: 1, NoiseStrength: 1.5})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "noise out of range: %v", err)

	_, err = runner.Compile(ctx, blockgraph.New("empty"), Options{K: 1})
	assert.Error(t, err, "empty graph must not compile")
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	points, err := runner.Sweep(ctx, memoryGraph(t), SweepOptions{
		Ks:             []int64{1, 2},
		NoiseStrengths: []float64{0, 0.001},
		Parallelism:    2,
	})
	require.NoError(t, err)
	require.Len(t, points, 4)

	// Grid order: k-major, then noise.
	assert.Equal(t, int64(1), points[0].K)
	assert.Equal(t, 0.0, points[0].Noise)
	assert.Equal(t, int64(1), points[1].K)
	assert.Equal(t, 0.001, points[1].Noise)
	assert.Equal(t, int64(2), points[2].K)
	assert.Equal(t, int64(2), points[3].K)

	for _, p := range points {
		require.NotNil(t, p.Result, "k=%d p=%g", p.K, p.Noise)
		assert.NotEmpty(t, p.Result.Text)
	}

	// Per-k detector counts still hold under sweep.
	assert.Equal(t, int64(8*3), points[0].Result.Stats.Detectors)
	assert.Equal(t, int64(24*5), points[2].Result.Stats.Detectors)
}

func TestSweepValidation(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	_, err := runner.Sweep(ctx, memoryGraph(t), SweepOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = runner.Sweep(ctx, memoryGraph(t), SweepOptions{Ks: []int64{0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = runner.Sweep(ctx, memoryGraph(t), SweepOptions{Ks: []int64{1, -2}})
	require.Error(t, err)
}

func TestCircuitShape(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Compile(ctx, memoryGraph(t), Options{K: 1})
	require.NoError(t, err)

	// The bulk rounds sit in a native REPEAT block: d = 3 rounds total,
	// first and last are explicit, so the block repeats once.
	assert.Contains(t, result.Text, "REPEAT 1 {")

	// Every qubit gets a coordinate declaration before the body starts.
	assert.Equal(t, int64(result.Stats.Qubits), result.Circuit.CountInstructions("QUBIT_COORDS"))

	// First instruction is a coordinate declaration.
	first := strings.SplitN(result.Text, "\n", 2)[0]
	assert.True(t, strings.HasPrefix(first, "QUBIT_COORDS("), "got %q", first)
}
