package compile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/observables"
)

// SweepOptions configures a (k, noise) grid sweep over one block graph.
type SweepOptions struct {
	// Ks are the scale factors to compile at. Required.
	Ks []int64

	// NoiseStrengths are the noise points per scale factor. Empty means a
	// single noiseless point.
	NoiseStrengths []float64

	// Convention, Radius, and Observables apply to every point.
	Convention  string
	Radius      int
	Observables []observables.Abstract

	// Parallelism bounds concurrent compilations. Zero means GOMAXPROCS.
	Parallelism int

	// Refresh bypasses the cache.
	Refresh bool
}

// SweepPoint is one compiled grid point.
type SweepPoint struct {
	K     int64
	Noise float64

	Result *Result
}

// Sweep compiles the graph at every (k, noise) grid point. Points are
// independent, so they run on an errgroup worker pool; the first failure
// cancels the rest. Results come back in grid order (k-major, then noise)
// regardless of completion order.
func (r *Runner) Sweep(ctx context.Context, g *blockgraph.BlockGraph, opts SweepOptions) ([]SweepPoint, error) {
	if len(opts.Ks) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sweep needs at least one scale factor")
	}
	// Explicit grid points never fall back to the default k.
	for _, k := range opts.Ks {
		if k < 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "scale factor must be at least 1, got %d", k)
		}
	}
	noises := opts.NoiseStrengths
	if len(noises) == 0 {
		noises = []float64{0}
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	points := make([]SweepPoint, 0, len(opts.Ks)*len(noises))
	for _, k := range opts.Ks {
		for _, p := range noises {
			points = append(points, SweepPoint{K: k, Noise: p})
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	for i := range points {
		group.Go(func() error {
			point := &points[i]
			result, err := r.Compile(ctx, g, Options{
				K:             point.K,
				Convention:    opts.Convention,
				Radius:        opts.Radius,
				Observables:   opts.Observables,
				NoiseStrength: point.Noise,
				Refresh:       opts.Refresh,
			})
			if err != nil {
				return errors.Wrap(err, errors.GetCode(err), "sweep point k=%d p=%g", point.K, point.Noise)
			}
			point.Result = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
