// Package layers defines the layer data model the compiler lowers blocks
// through.
//
// A layer is one slice of circuit-generating behavior with a scalable spatial
// and temporal footprint. The layer kinds form a closed sum:
//
//   - atomic: [PlaquetteLayer] (template + plaquette assignment) and
//     [RawCircuitLayer] (verbatim injected circuit factory),
//   - composed: [SequencedLayers] (ordered sequence) and [RepeatedLayer]
//     (repetition of a body).
//
// Code that dispatches over layer kinds switches exhaustively over these four
// types; an unrecognized type in such a switch is an internal error, never a
// recoverable condition. Layers are immutable: every transformation returns a
// new value (copy-on-transform), which is what makes the merge algebra and
// the graph's border trimming safe to compose.
package layers

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// TemporalBorder identifies one temporal end of a layer or block.
type TemporalBorder int

const (
	// TemporalBorderNegative is the earliest temporal slice (-Z side).
	TemporalBorderNegative TemporalBorder = iota
	// TemporalBorderPositive is the latest temporal slice (+Z side).
	TemporalBorderPositive
)

func (b TemporalBorder) String() string {
	if b == TemporalBorderNegative {
		return "Z_NEGATIVE"
	}
	return "Z_POSITIVE"
}

// Layer is the capability set shared by all layer kinds. The set of
// implementations is closed: PlaquetteLayer, RawCircuitLayer,
// SequencedLayers and RepeatedLayer.
type Layer interface {
	// ScalableShape returns the layer's spatial footprint.
	ScalableShape() scalable.Shape2D

	// ScalableTimesteps returns the layer's temporal extent.
	ScalableTimesteps() scalable.LinearFunction

	// WithSpatialBordersTrimmed returns a copy with the given spatial
	// borders' boundary plaquettes stripped.
	WithSpatialBordersTrimmed(borders ...grid.SignedDirection) (Layer, error)

	// WithTemporalBordersReplaced returns a copy with the given temporal
	// ends replaced. A nil replacement removes that end. The result is nil
	// when every temporal slice was removed.
	WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (Layer, error)

	// sealed prevents layer kinds outside this package: the merge algebra
	// and the tree builder rely on the sum being closed.
	sealed()
}

// Atomic marks the two indivisible layer kinds. An atomic layer occupies
// exactly one schedule slot of its enclosing block.
type Atomic interface {
	Layer
	atomic()
}

// Composed marks the two composite layer kinds.
type Composed interface {
	Layer

	// Schedule returns the per-element temporal extents.
	Schedule() []scalable.LinearFunction
}

// errUnknownKind reports a layer type outside the closed sum. Reaching it
// means a new layer kind was introduced without updating the caller's
// dispatch, which is a programming error.
func errUnknownKind(where string, l Layer) error {
	return errors.New(errors.ErrCodeInternal, "%s: unknown layer kind %T", where, l)
}

// sameShape checks that every layer shares one scalable spatial footprint.
func sameShape(ls []Layer) (scalable.Shape2D, error) {
	if len(ls) == 0 {
		return scalable.Shape2D{}, errors.New(errors.ErrCodeInvalidBlock, "no layers given")
	}
	shape := ls[0].ScalableShape()
	for _, l := range ls[1:] {
		if l.ScalableShape() != shape {
			return scalable.Shape2D{}, errors.New(errors.ErrCodeInvalidShape,
				"layers have mismatched scalable shapes: %s vs %s", shape, l.ScalableShape())
		}
	}
	return shape, nil
}
