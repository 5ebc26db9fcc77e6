package layers

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// Block is the compiled-layer representation of one cube's or one pipe's
// full lifetime: a non-empty ordered stack of layers sharing one scalable
// spatial footprint. Blocks own no external state; the computation graph
// consumes them. Immutable - the trim and replace operations return copies.
type Block struct {
	layers []Layer
	shape  scalable.Shape2D
}

// NewBlock builds a block. Construction fails on an empty stack or on layers
// with mismatched scalable shapes.
func NewBlock(ls ...Layer) (*Block, error) {
	if len(ls) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidBlock, "a block needs at least one layer")
	}
	shape, err := sameShape(ls)
	if err != nil {
		return nil, err
	}
	return &Block{layers: append([]Layer(nil), ls...), shape: shape}, nil
}

// Layers returns the block's layer stack. The returned slice must not be
// modified.
func (b *Block) Layers() []Layer { return b.layers }

// ScalableShape returns the shared spatial footprint.
func (b *Block) ScalableShape() scalable.Shape2D { return b.shape }

// ScalableTimesteps returns the summed temporal extent of the stack.
func (b *Block) ScalableTimesteps() scalable.LinearFunction {
	var total scalable.LinearFunction
	for _, l := range b.layers {
		total = total.Add(l.ScalableTimesteps())
	}
	return total
}

// Dimensionality predicates. A block spans three extents: spatial X, spatial
// Y and time. A cube scales in all three; a pipe is trivial (constant) in
// exactly one of them - its own direction.

// IsCube reports whether every extent scales with k.
func (b *Block) IsCube() bool { return b.constantExtents() == 0 }

// IsPipe reports whether exactly one extent is constant.
func (b *Block) IsPipe() bool { return b.constantExtents() == 1 }

// IsTemporalPipe reports whether the block is a pipe in the time direction.
func (b *Block) IsTemporalPipe() bool {
	return b.IsPipe() && b.ScalableTimesteps().IsConstant()
}

func (b *Block) constantExtents() int {
	n := 0
	if b.shape.X.IsConstant() {
		n++
	}
	if b.shape.Y.IsConstant() {
		n++
	}
	if b.ScalableTimesteps().IsConstant() {
		n++
	}
	return n
}

// WithSpatialBordersTrimmed returns a copy with every layer's given spatial
// borders stripped.
func (b *Block) WithSpatialBordersTrimmed(borders ...grid.SignedDirection) (*Block, error) {
	trimmed := make([]Layer, len(b.layers))
	for i, l := range b.layers {
		t, err := l.WithSpatialBordersTrimmed(borders...)
		if err != nil {
			return nil, err
		}
		trimmed[i] = t
	}
	return &Block{layers: trimmed, shape: b.shape}, nil
}

// WithTemporalBordersReplaced returns a copy with the negative replacement
// applied to the first layer and the positive to the last. A nil replacement
// removes the slice. A block losing every layer is an error: some layer must
// remain to give the block a temporal extent.
func (b *Block) WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (*Block, error) {
	kept := append([]Layer(nil), b.layers...)

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

	if len(kept) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidBlock,
			"replacing temporal borders removed every layer of the block")
	}
	return &Block{layers: kept, shape: b.shape}, nil
}

// SplitInTwo splits the stack into its earlier and later halves. Temporal
// pipes use this at layout time: the first half joins the lower depth's
// schedule, the second the upper's. Only even stacks can be split.
func (b *Block) SplitInTwo() (lower, upper []Layer, err error) {
	if len(b.layers)%2 != 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidBlock,
			"cannot split a block with %d layers in two", len(b.layers))
	}
	half := len(b.layers) / 2
	return b.layers[:half], b.layers[half:], nil
}
