// Package merge implements the parallel layer-merge algebra: collapsing a
// 2D arrangement of per-position layers that execute in the same time window
// into one merged layer per time slice.
//
// The merge preserves schedule structure. Atomic layers merge into a single
// [layers.LayoutLayer]; repeated layers with heterogeneous internal periods
// are aligned by least-common-multiple expansion so the merged result keeps a
// repeated form; sequenced layers merge element-by-element when their
// schedules match exactly.
package merge

import (
	"slices"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/layers"
	"github.com/topostim/topostim/pkg/scalable"
)

// Parallel merges the given per-position layers into a single layer covering
// every position simultaneously.
//
// All layers must share one scalable timestep count; a temporal footprint
// mismatch is an INVALID_SCHEDULE error, never silently truncated. Schedule
// configurations the algebra cannot align (mismatched sequenced schedules,
// scalable-duration repeated bodies, atomic layers sharing a slot with
// composed ones) are UNSUPPORTED_MERGE: conceivable inputs the algorithm
// does not cover yet, distinct from hard invariant violations.
func Parallel(sections map[grid.LayoutPosition2D]layers.Layer) (layers.Layer, error) {
	if len(sections) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no layers to merge")
	}

	if err := checkCommonTimesteps(sections); err != nil {
		return nil, err
	}

	var (
		atomics   = make(map[grid.LayoutPosition2D]layers.Atomic)
		repeated  = make(map[grid.LayoutPosition2D]*layers.RepeatedLayer)
		sequenced = make(map[grid.LayoutPosition2D]*layers.SequencedLayers)
	)
	for pos, l := range sections {
		switch v := l.(type) {
		case *layers.RepeatedLayer:
			repeated[pos] = v
		case *layers.SequencedLayers:
			sequenced[pos] = v
		case layers.Atomic:
			atomics[pos] = v
		default:
			return nil, errors.New(errors.ErrCodeInternal,
				"merge does not know layer kind %T at %s", l, pos)
		}
	}

	switch {
	case len(atomics) == len(sections):
		return layers.NewLayoutLayer(atomics)
	case len(repeated) == len(sections):
		return mergeRepeated(repeated)
	case len(sequenced) == len(sections):
		return mergeSequenced(sequenced)
	case len(atomics) > 0:
		return nil, errors.New(errors.ErrCodeUnsupportedMerge,
			"cannot merge %d atomic layers sharing a time slot with %d composed layers",
			len(atomics), len(repeated)+len(sequenced))
	case len(repeated) == 0 || len(sequenced) == 0:
		// The classification above covers every reachable shape of the
		// section map; arriving here means it was extended inconsistently.
		return nil, errors.New(errors.ErrCodeInternal,
			"mixed merge without both repeated and sequenced layers")
	default:
		return mergeMixed(repeated, sequenced)
	}
}

// checkCommonTimesteps verifies every section lasts the same scalable number
// of timesteps.
func checkCommonTimesteps(sections map[grid.LayoutPosition2D]layers.Layer) error {
	var common scalable.LinearFunction
	first := true
	for pos, l := range sections {
		if first {
			common = l.ScalableTimesteps()
			first = false
			continue
		}
		if l.ScalableTimesteps() != common {
			return errors.New(errors.ErrCodeInvalidSchedule,
				"layer at %s lasts %s timesteps, other layers last %s",
				pos, l.ScalableTimesteps(), common)
		}
	}
	return nil
}

// mergeRepeated aligns repeated layers whose internal bodies may have
// different constant periods by expanding each body to the least common
// multiple of all periods, merging the expanded bodies slice-wise, and
// re-wrapping the merged sequence in a repetition whose count is the common
// total divided by the expanded period.
func mergeRepeated(sections map[grid.LayoutPosition2D]*layers.RepeatedLayer) (layers.Layer, error) {
	var total scalable.LinearFunction
	periods := make(map[grid.LayoutPosition2D]int64, len(sections))
	slicesByPos := make(map[grid.LayoutPosition2D][]layers.Atomic, len(sections))
	for pos, r := range sections {
		total = r.ScalableTimesteps()
		bodySteps := r.Internal().ScalableTimesteps()
		if bodySteps.IsScalable() {
			return nil, errors.New(errors.ErrCodeUnsupportedMerge,
				"repeated body at %s has scalable duration %s and cannot be aligned by expansion",
				pos, bodySteps)
		}
		body, err := layers.AtomicSlices(r.Internal())
		if err != nil {
			return nil, err
		}
		period := bodySteps.IntegerEval(0)
		if int64(len(body)) != period {
			return nil, errors.New(errors.ErrCodeUnsupportedMerge,
				"repeated body at %s spans %s timesteps over %d atomic slices; expansion needs one slice per timestep",
				pos, bodySteps, len(body))
		}
		periods[pos] = period
		slicesByPos[pos] = body
	}

	// Periods of length 1 are trivial divisors: when every body is a single
	// slice there is nothing to align and the bodies merge directly, keeping
	// the repetition count untouched.
	expanded := int64(1)
	for _, p := range periods {
		if p > 1 {
			expanded = lcm(expanded, p)
		}
	}
	if expanded == 1 {
		merged, err := mergeSlice(slicesByPos, 0)
		if err != nil {
			return nil, err
		}
		return layers.NewRepeatedLayer(merged, total)
	}

	steps := make([]layers.Layer, 0, expanded)
	for i := int64(0); i < expanded; i++ {
		merged, err := mergeSlice(slicesByPos, i)
		if err != nil {
			return nil, err
		}
		steps = append(steps, merged)
	}
	body, err := layers.NewSequencedLayers(steps...)
	if err != nil {
		return nil, err
	}

	// Exact by construction: every per-position period divides the common
	// total, hence so does their least common multiple.
	repetitions, err := total.ExactIntegerDiv(expanded)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal,
			"total timesteps %s not divisible by expanded period %d", total, expanded)
	}
	return layers.NewRepeatedLayer(body, repetitions)
}

// mergeSlice builds the layout layer for sub-step i, tiling each position's
// body cyclically.
func mergeSlice(slicesByPos map[grid.LayoutPosition2D][]layers.Atomic, i int64) (*layers.LayoutLayer, error) {
	step := make(map[grid.LayoutPosition2D]layers.Atomic, len(slicesByPos))
	for pos, body := range slicesByPos {
		step[pos] = body[i%int64(len(body))]
	}
	return layers.NewLayoutLayer(step)
}

// mergeSequenced merges sequenced layers element-by-element. Every position
// must expose the exact same schedule.
func mergeSequenced(sections map[grid.LayoutPosition2D]*layers.SequencedLayers) (layers.Layer, error) {
	var schedule []scalable.LinearFunction
	first := true
	for pos, s := range sections {
		if first {
			schedule = s.Schedule()
			first = false
			continue
		}
		if !slices.Equal(s.Schedule(), schedule) {
			return nil, errors.New(errors.ErrCodeUnsupportedMerge,
				"sequence at %s has schedule %v, other sequences have %v",
				pos, s.Schedule(), schedule)
		}
	}

	merged := make([]layers.Layer, len(schedule))
	for i := range schedule {
		element := make(map[grid.LayoutPosition2D]layers.Layer, len(sections))
		for pos, s := range sections {
			element[pos] = s.Elements()[i]
		}
		m, err := Parallel(element)
		if err != nil {
			return nil, err
		}
		merged[i] = m
	}
	return layers.NewSequencedLayers(merged...)
}

// mergeMixed converts every repeated layer into an equivalent sequenced
// layer along the common schedule taken from the sequenced inputs, then
// falls back to the sequenced merge.
func mergeMixed(
	repeated map[grid.LayoutPosition2D]*layers.RepeatedLayer,
	sequenced map[grid.LayoutPosition2D]*layers.SequencedLayers,
) (layers.Layer, error) {
	var schedule []scalable.LinearFunction
	for _, s := range sequenced {
		schedule = s.Schedule()
		break
	}

	all := make(map[grid.LayoutPosition2D]*layers.SequencedLayers, len(repeated)+len(sequenced))
	for pos, s := range sequenced {
		all[pos] = s
	}
	for pos, r := range repeated {
		converted, err := repeatedToSchedule(r, schedule)
		if err != nil {
			return nil, errors.Wrap(err, errors.GetCode(err),
				"cannot align the repeated layer at %s with the surrounding schedule", pos)
		}
		all[pos] = converted
	}
	return mergeSequenced(all)
}

// repeatedToSchedule rewrites a repeated layer as a sequence matching the
// given schedule: each schedule entry becomes the body repeated however many
// times fit that entry's duration. The body duration must be constant and
// must exactly divide every entry.
func repeatedToSchedule(r *layers.RepeatedLayer, schedule []scalable.LinearFunction) (*layers.SequencedLayers, error) {
	bodySteps := r.Internal().ScalableTimesteps()
	if bodySteps.IsScalable() {
		return nil, errors.New(errors.ErrCodeUnsupportedMerge,
			"repeated body has scalable duration %s", bodySteps)
	}
	period := bodySteps.IntegerEval(0)

	elements := make([]layers.Layer, len(schedule))
	for i, entry := range schedule {
		count, err := entry.ExactIntegerDiv(period)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeUnsupportedMerge,
				"schedule entry %s is not a whole number of %d-step bodies", entry, period)
		}
		if count == scalable.Constant(1) {
			elements[i] = r.Internal()
			continue
		}
		rep, err := layers.NewRepeatedLayer(r.Internal(), count)
		if err != nil {
			return nil, err
		}
		elements[i] = rep
	}
	return layers.NewSequencedLayers(elements...)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 { return a / gcd(a, b) * b }
