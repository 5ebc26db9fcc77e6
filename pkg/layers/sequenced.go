package layers

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// SequencedLayers is an ordered sequence of at least two layers sharing one
// scalable spatial footprint, executed back to back.
type SequencedLayers struct {
	elements []Layer
	shape    scalable.Shape2D
}

var _ Composed = (*SequencedLayers)(nil)

// NewSequencedLayers builds a sequence. Construction fails on fewer than two
// elements or mismatched shapes.
func NewSequencedLayers(elements ...Layer) (*SequencedLayers, error) {
	if len(elements) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidBlock,
			"a layer sequence needs at least 2 elements, got %d", len(elements))
	}
	shape, err := sameShape(elements)
	if err != nil {
		return nil, err
	}
	return &SequencedLayers{elements: append([]Layer(nil), elements...), shape: shape}, nil
}

// Elements returns the sequence's layers. The returned slice must not be
// modified.
func (s *SequencedLayers) Elements() []Layer { return s.elements }

// ScalableShape implements [Layer].
func (s *SequencedLayers) ScalableShape() scalable.Shape2D { return s.shape }

// ScalableTimesteps implements [Layer]: the sum over the schedule.
func (s *SequencedLayers) ScalableTimesteps() scalable.LinearFunction {
	var total scalable.LinearFunction
	for _, e := range s.elements {
		total = total.Add(e.ScalableTimesteps())
	}
	return total
}

// Schedule implements [Composed].
func (s *SequencedLayers) Schedule() []scalable.LinearFunction {
	out := make([]scalable.LinearFunction, len(s.elements))
	for i, e := range s.elements {
		out[i] = e.ScalableTimesteps()
	}
	return out
}

// WithSpatialBordersTrimmed implements [Layer], trimming every element.
func (s *SequencedLayers) WithSpatialBordersTrimmed(borders ...grid.SignedDirection) (Layer, error) {
	trimmed := make([]Layer, len(s.elements))
	for i, e := range s.elements {
		t, err := e.WithSpatialBordersTrimmed(borders...)
		if err != nil {
			return nil, err
		}
		trimmed[i] = t
	}
	return &SequencedLayers{elements: trimmed, shape: s.shape}, nil
}

// WithTemporalBordersReplaced implements [Layer]. The negative replacement
// applies to the first element, the positive to the last, each recursively.
// Elements replaced by nil are dropped; a sequence degrading to one element
// returns that element bare, and to zero elements returns nil.
func (s *SequencedLayers) WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (Layer, error) {
	kept := append([]Layer(nil), s.elements...)

	if r, ok := replacements[TemporalBorderNegative]; ok {
		first, err := kept[0].WithTemporalBordersReplaced(map[TemporalBorder]Layer{TemporalBorderNegative: r})
		if err != nil {
			return nil, err
		}
		if first == nil {
			kept = kept[1:]
		} else {
			kept[0] = first
		}
	}
	if r, ok := replacements[TemporalBorderPositive]; ok && len(kept) > 0 {
		lastIdx := len(kept) - 1
		last, err := kept[lastIdx].WithTemporalBordersReplaced(map[TemporalBorder]Layer{TemporalBorderPositive: r})
		if err != nil {
			return nil, err
		}
		if last == nil {
			kept = kept[:lastIdx]
		} else {
			kept[lastIdx] = last
		}
	}

	switch len(kept) {
	case 0:
		return nil, nil
	case 1:
		return kept[0], nil
	default:
		return &SequencedLayers{elements: kept, shape: s.shape}, nil
	}
}

func (s *SequencedLayers) sealed() {}
