package layers

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// RepeatedLayer is a body layer executed a scalable number of times.
type RepeatedLayer struct {
	internal    Layer
	repetitions scalable.LinearFunction
}

var _ Composed = (*RepeatedLayer)(nil)

// NewRepeatedLayer builds a repetition. Construction fails when both the
// body's timestep count and the repetition count are non-constant in k: the
// total would be quadratic in k, which no [scalable.LinearFunction] can
// represent.
//
// The reverse situation - a constant body repeated a constant number of
// times - could be collapsed into a plain sequence but deliberately is not:
// downstream schedule matching during merges depends on seeing the
// repetition structure as constructed.
func NewRepeatedLayer(internal Layer, repetitions scalable.LinearFunction) (*RepeatedLayer, error) {
	if internal.ScalableTimesteps().IsScalable() && repetitions.IsScalable() {
		return nil, errors.New(errors.ErrCodeInvalidSchedule,
			"cannot repeat a body with scalable duration (%s) a scalable number of times (%s): "+
				"the total timestep count would not be linear in k",
			internal.ScalableTimesteps(), repetitions)
	}
	return &RepeatedLayer{internal: internal, repetitions: repetitions}, nil
}

// Internal returns the repeated body.
func (r *RepeatedLayer) Internal() Layer { return r.internal }

// Repetitions returns the scalable repetition count.
func (r *RepeatedLayer) Repetitions() scalable.LinearFunction { return r.repetitions }

// ScalableShape implements [Layer].
func (r *RepeatedLayer) ScalableShape() scalable.Shape2D { return r.internal.ScalableShape() }

// ScalableTimesteps implements [Layer]: body duration times repetitions. The
// product is linear because the constructor rejects the scalable-scalable
// case.
func (r *RepeatedLayer) ScalableTimesteps() scalable.LinearFunction {
	body := r.internal.ScalableTimesteps()
	if body.IsConstant() {
		return r.repetitions.Mul(body.Offset)
	}
	return body.Mul(r.repetitions.Offset)
}

// Schedule implements [Composed]: a repetition has a single schedule entry,
// its total duration.
func (r *RepeatedLayer) Schedule() []scalable.LinearFunction {
	return []scalable.LinearFunction{r.ScalableTimesteps()}
}

// WithSpatialBordersTrimmed implements [Layer], trimming the body.
func (r *RepeatedLayer) WithSpatialBordersTrimmed(borders ...grid.SignedDirection) (Layer, error) {
	trimmed, err := r.internal.WithSpatialBordersTrimmed(borders...)
	if err != nil {
		return nil, err
	}
	return &RepeatedLayer{internal: trimmed, repetitions: r.repetitions}, nil
}

// WithTemporalBordersReplaced implements [Layer] by peeling one repetition
// off the affected end: the peeled body receives the replacement (or
// disappears when the replacement is nil) and the remaining repetitions drop
// by one. Peeling a body with non-constant duration is unsupported.
func (r *RepeatedLayer) WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (Layer, error) {
	if len(replacements) == 0 {
		return r, nil
	}
	if r.internal.ScalableTimesteps().IsScalable() {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"cannot split a repeated layer whose body duration (%s) is not constant",
			r.internal.ScalableTimesteps())
	}

	result := Layer(r)
	if rep, ok := replacements[TemporalBorderNegative]; ok {
		peeled, err := peelRepetition(result, rep, TemporalBorderNegative)
		if err != nil {
			return nil, err
		}
		result = peeled
	}
	if rep, ok := replacements[TemporalBorderPositive]; ok && result != nil {
		peeled, err := peelRepetition(result, rep, TemporalBorderPositive)
		if err != nil {
			return nil, err
		}
		result = peeled
	}
	return result, nil
}

// peelRepetition removes one repetition from the given end of l (which is
// either the repeated layer itself or the sequence a previous peel built)
// and splices in the replacement.
func peelRepetition(l Layer, replacement Layer, end TemporalBorder) (Layer, error) {
	rep, ok := l.(*RepeatedLayer)
	if !ok {
		// A previous peel already rewrote the layer into a sequence; apply
		// the replacement recursively.
		return l.WithTemporalBordersReplaced(map[TemporalBorder]Layer{end: replacement})
	}

	remaining := &RepeatedLayer{
		internal:    rep.internal,
		repetitions: rep.repetitions.Sub(scalable.Constant(1)),
	}

	if replacement == nil {
		return remaining, nil
	}
	if end == TemporalBorderNegative {
		return NewSequencedLayers(replacement, remaining)
	}
	return NewSequencedLayers(remaining, replacement)
}

func (r *RepeatedLayer) sealed() {}
