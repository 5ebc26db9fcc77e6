package templates

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// StripTemplate is the seam between two horizontally adjacent patches: a
// 2-cell-wide strip, scalable along the seam, holding the stabilizers that
// stitch the two boundaries together. Direction is the pipe's axis, so an
// X-direction strip is 2 cells wide and 2k+2 cells tall.
type StripTemplate struct {
	Direction grid.Direction
}

// StripWidth is the constant extent of the strip across the seam, in cells.
const StripWidth = 2

// Shape implements [Template].
func (t StripTemplate) Shape() scalable.Shape2D {
	if t.Direction == grid.DirectionX {
		return scalable.Shape2D{X: scalable.Constant(StripWidth), Y: scalable.Linear(2, 2)}
	}
	return scalable.Shape2D{X: scalable.Linear(2, 2), Y: scalable.Constant(StripWidth)}
}

// BorderIncrement implements [Template].
func (StripTemplate) BorderIncrement() int64 { return 1 }

// BorderIndices implements [Template]. Only the borders parallel to the seam
// carry exclusive boundary plaquettes; the ends facing the joined patches
// merge seamlessly and expose nothing to trim.
func (t StripTemplate) BorderIndices(border grid.SignedDirection) []int {
	if t.Direction == grid.DirectionX {
		switch border {
		case BorderTop:
			return []int{IndexTopX}
		case BorderBottom:
			return []int{IndexBottomX}
		}
		return nil
	}
	switch border {
	case BorderLeft:
		return []int{IndexLeftZ}
	case BorderRight:
		return []int{IndexRightZ}
	}
	return nil
}

// Instantiate implements [Template].
func (t StripTemplate) Instantiate(k int64) ([][]int, error) {
	if k < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scaling parameter k must be >= 1, got %d", k)
	}
	cols, rows := t.Shape().IntegerEval(k)
	out := make([][]int, rows)
	for r := int64(0); r < rows; r++ {
		out[r] = make([]int, cols)
		for c := int64(0); c < cols; c++ {
			if t.Direction == grid.DirectionX {
				out[r][c] = stripCellIndex(r, c+r, rows)
			} else {
				out[r][c] = transposedStripCellIndex(c, c+r, cols)
			}
		}
	}
	return out, nil
}

// stripCellIndex classifies a cell of a vertical (X-direction pipe) strip by
// its position along the seam and its sublattice parity.
func stripCellIndex(along, parity, extent int64) int {
	if parity%2 != 0 {
		switch along {
		case 0:
			return IndexTopX
		case extent - 1:
			return IndexBottomX
		default:
			return IndexBulkX
		}
	}
	if along == 0 || along == extent-1 {
		return IndexNone
	}
	return IndexBulkZ
}

func transposedStripCellIndex(along, parity, extent int64) int {
	if parity%2 == 0 {
		switch along {
		case 0:
			return IndexLeftZ
		case extent - 1:
			return IndexRightZ
		default:
			return IndexBulkZ
		}
	}
	if along == 0 || along == extent-1 {
		return IndexNone
	}
	return IndexBulkX
}
