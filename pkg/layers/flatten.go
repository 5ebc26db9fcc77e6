package layers

import (
	"github.com/topostim/topostim/pkg/errors"
)

// AtomicSlices flattens a layer into its explicit sequence of atomic
// timestep slices. The flattening only exists for constant-duration layers:
// requesting it for a layer whose duration depends on k is unsupported (the
// slice count would not be a number). The merge algebra uses this to expand
// repeated bodies to a common period.
func AtomicSlices(l Layer) ([]Atomic, error) {
	switch v := l.(type) {
	case *PlaquetteLayer:
		return []Atomic{v}, nil
	case *RawCircuitLayer:
		if v.ScalableTimesteps().IsScalable() {
			return nil, errors.New(errors.ErrCodeUnsupported,
				"cannot flatten a raw layer with scalable duration %s", v.ScalableTimesteps())
		}
		return []Atomic{v}, nil
	case *SequencedLayers:
		var out []Atomic
		for _, e := range v.Elements() {
			slices, err := AtomicSlices(e)
			if err != nil {
				return nil, err
			}
			out = append(out, slices...)
		}
		return out, nil
	case *RepeatedLayer:
		if v.Repetitions().IsScalable() {
			return nil, errors.New(errors.ErrCodeUnsupported,
				"cannot flatten a repeated layer with scalable repetition count %s", v.Repetitions())
		}
		body, err := AtomicSlices(v.Internal())
		if err != nil {
			return nil, err
		}
		n := v.Repetitions().IntegerEval(0)
		out := make([]Atomic, 0, int(n)*len(body))
		for i := int64(0); i < n; i++ {
			out = append(out, body...)
		}
		return out, nil
	default:
		return nil, errUnknownKind("AtomicSlices", l)
	}
}
