package layers

import (
	"maps"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/scalable"
	"github.com/topostim/topostim/pkg/templates"
)

// ExpectedBorderWidth is the border width, in template cells, the merge and
// trim machinery assumes. Templates with a different border increment cannot
// be trimmed consistently and are rejected at layer construction.
const ExpectedBorderWidth = 1

// PlaquetteLayer is an atomic layer backed by a template and a plaquette
// assignment: one QEC round over the template's footprint. Immutable.
type PlaquetteLayer struct {
	template   templates.Template
	plaquettes map[int]rpng.Description
	trimmed    map[grid.SignedDirection]bool
}

var _ Atomic = (*PlaquetteLayer)(nil)

// NewPlaquetteLayer builds a plaquette layer. Construction fails when the
// template's border increment does not match [ExpectedBorderWidth], or when
// the template shape is not strictly positive and monotonically
// non-decreasing in k (a template that would eventually vanish is invalid).
func NewPlaquetteLayer(template templates.Template, plaquettes map[int]rpng.Description) (*PlaquetteLayer, error) {
	if template.BorderIncrement() != ExpectedBorderWidth {
		return nil, errors.New(errors.ErrCodeInvalidTemplate,
			"template border increment %d does not match the expected border width %d",
			template.BorderIncrement(), ExpectedBorderWidth)
	}
	if !template.Shape().IsPositive() {
		return nil, errors.New(errors.ErrCodeInvalidTemplate,
			"template shape %s is not strictly positive and non-decreasing in k", template.Shape())
	}
	return &PlaquetteLayer{
		template:   template,
		plaquettes: maps.Clone(plaquettes),
	}, nil
}

// Template returns the layer's template.
func (l *PlaquetteLayer) Template() templates.Template { return l.template }

// ScalableShape implements [Layer].
func (l *PlaquetteLayer) ScalableShape() scalable.Shape2D { return l.template.Shape() }

// ScalableTimesteps implements [Layer]: one plaquette round.
func (l *PlaquetteLayer) ScalableTimesteps() scalable.LinearFunction {
	return scalable.Constant(1)
}

// TrimmedBorders returns the spatial borders stripped so far, in no
// particular order.
func (l *PlaquetteLayer) TrimmedBorders() []grid.SignedDirection {
	out := make([]grid.SignedDirection, 0, len(l.trimmed))
	for b := range l.trimmed {
		out = append(out, b)
	}
	return out
}

// WithSpatialBordersTrimmed implements [Layer].
func (l *PlaquetteLayer) WithSpatialBordersTrimmed(borders ...grid.SignedDirection) (Layer, error) {
	out := &PlaquetteLayer{
		template:   l.template,
		plaquettes: maps.Clone(l.plaquettes),
		trimmed:    maps.Clone(l.trimmed),
	}
	if out.trimmed == nil {
		out.trimmed = make(map[grid.SignedDirection]bool, len(borders))
	}
	for _, b := range borders {
		out.trimmed[b] = true
	}
	return out, nil
}

// WithTemporalBordersReplaced implements [Layer]. An atomic layer is its own
// single temporal slice, so any matching replacement substitutes the whole
// layer; the negative border takes precedence when both are given.
func (l *PlaquetteLayer) WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (Layer, error) {
	return atomicTemporalReplacement(l, replacements)
}

// ActivePlaquettes instantiates the template at the given k and resolves
// every non-empty, non-trimmed cell to its plaquette description, keyed by
// the ancilla position relative to origin. An index with no assignment is a
// construction error surfaced here, at first use.
func (l *PlaquetteLayer) ActivePlaquettes(k int64, origin grid.Position2D) (map[grid.Position2D]rpng.Description, error) {
	cells, err := l.template.Instantiate(k)
	if err != nil {
		return nil, err
	}

	stripped := make(map[int]bool)
	for b := range l.trimmed {
		for _, idx := range l.template.BorderIndices(b) {
			stripped[idx] = true
		}
	}

	out := make(map[grid.Position2D]rpng.Description)
	for r, row := range cells {
		for c, idx := range row {
			if idx == 0 || stripped[idx] {
				continue
			}
			desc, ok := l.plaquettes[idx]
			if !ok {
				return nil, errors.New(errors.ErrCodeNotFound,
					"template index %d has no plaquette assignment", idx)
			}
			out[templates.CellAncilla(origin, int64(c), int64(r))] = desc
		}
	}
	return out, nil
}

func (l *PlaquetteLayer) sealed() {}
func (l *PlaquetteLayer) atomic() {}

// atomicTemporalReplacement implements WithTemporalBordersReplaced for both
// atomic kinds.
func atomicTemporalReplacement(l Atomic, replacements map[TemporalBorder]Layer) (Layer, error) {
	if r, ok := replacements[TemporalBorderNegative]; ok {
		return r, nil
	}
	if r, ok := replacements[TemporalBorderPositive]; ok {
		return r, nil
	}
	return l, nil
}
