// Package templates provides scale-parameterized 2D arrangements of
// plaquette indices.
//
// A template answers, for any scaling parameter k, "which plaquette sits in
// which cell" - as a 2D array of small integer indices, with 0 meaning no
// plaquette. The indices are resolved against a per-layer plaquette
// assignment; templates know geometry only, never circuits.
//
// Cell (c, r) of an instantiation corresponds to the ancilla qubit at
// physical position (2c, 2r) (see [CellAncilla]); data qubits sit between
// ancilla cells at odd-odd positions.
package templates

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// Spatial borders are identified by signed horizontal directions:
// -X is the left border, +X right, -Y top, +Y bottom.
var (
	BorderLeft   = grid.SignedDirection{Direction: grid.DirectionX, TowardPositive: false}
	BorderRight  = grid.SignedDirection{Direction: grid.DirectionX, TowardPositive: true}
	BorderTop    = grid.SignedDirection{Direction: grid.DirectionY, TowardPositive: false}
	BorderBottom = grid.SignedDirection{Direction: grid.DirectionY, TowardPositive: true}
)

// Template is a scalable plaquette arrangement.
type Template interface {
	// Shape returns the scalable cell-grid extent (columns, rows).
	Shape() scalable.Shape2D

	// BorderIncrement returns the width, in cells, of each spatial border.
	BorderIncrement() int64

	// BorderIndices returns the plaquette indices that only occur on the
	// given spatial border. Stripping these indices from an instantiation
	// removes that border's boundary plaquettes.
	BorderIndices(border grid.SignedDirection) []int

	// Instantiate returns the row-major index array for the given k.
	// Instantiations must be strictly positive in both dimensions for every
	// k >= 1; templates that would vanish are rejected at construction of
	// whatever holds them.
	Instantiate(k int64) ([][]int, error)
}

// CellAncilla returns the physical position of the ancilla qubit for
// template cell (c, r), offset by the template's own origin.
func CellAncilla(origin grid.Position2D, c, r int64) grid.Position2D {
	return grid.Position2D{X: origin.X + 2*c, Y: origin.Y + 2*r}
}

// QubitTemplate is the rotated-surface-code patch template. For distance
// d = 2k+1 it instantiates a (d+1)x(d+1) grid of ancilla candidate cells:
//
//   - X-type cells where (c+r) is odd, excluded on the left/right edges,
//   - Z-type cells where (c+r) is even, excluded on the top/bottom edges,
//
// which leaves exactly d^2-1 active plaquettes. Six indices distinguish the
// bulk and the four weight-2 boundaries:
//
//	1: top X boundary     2: left Z boundary
//	3: bulk X             4: bulk Z
//	5: right Z boundary   6: bottom X boundary
type QubitTemplate struct{}

// Plaquette indices produced by [QubitTemplate].
const (
	IndexNone     = 0
	IndexTopX     = 1
	IndexLeftZ    = 2
	IndexBulkX    = 3
	IndexBulkZ    = 4
	IndexRightZ   = 5
	IndexBottomX  = 6
	NumIndexKinds = 6
)

// Shape returns (2k+2, 2k+2): the (d+1)x(d+1) candidate grid for d = 2k+1.
func (QubitTemplate) Shape() scalable.Shape2D {
	return scalable.Square(scalable.Linear(2, 2))
}

// BorderIncrement returns 1: every border is one cell wide.
func (QubitTemplate) BorderIncrement() int64 { return 1 }

// BorderIndices implements [Template].
func (QubitTemplate) BorderIndices(border grid.SignedDirection) []int {
	switch border {
	case BorderTop:
		return []int{IndexTopX}
	case BorderBottom:
		return []int{IndexBottomX}
	case BorderLeft:
		return []int{IndexLeftZ}
	case BorderRight:
		return []int{IndexRightZ}
	default:
		return nil
	}
}

// Instantiate implements [Template].
func (t QubitTemplate) Instantiate(k int64) ([][]int, error) {
	if k < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scaling parameter k must be >= 1, got %d", k)
	}
	cols, rows := t.Shape().IntegerEval(k)
	d := cols - 1 // code distance

	out := make([][]int, rows)
	for r := int64(0); r < rows; r++ {
		out[r] = make([]int, cols)
		for c := int64(0); c < cols; c++ {
			out[r][c] = qubitCellIndex(c, r, d)
		}
	}
	return out, nil
}

func qubitCellIndex(c, r, d int64) int {
	if (c+r)%2 != 0 {
		// X-type candidate, excluded on the left/right edges.
		switch {
		case c == 0 || c == d:
			return IndexNone
		case r == 0:
			return IndexTopX
		case r == d:
			return IndexBottomX
		default:
			return IndexBulkX
		}
	}
	// Z-type candidate, excluded on the top/bottom edges.
	switch {
	case r == 0 || r == d:
		return IndexNone
	case c == 0:
		return IndexLeftZ
	case c == d:
		return IndexRightZ
	default:
		return IndexBulkZ
	}
}

// FixedTemplate is a constant-shape template defined by an explicit index
// array. It exists for tests and for raw injected layers whose geometry is
// not scalable.
type FixedTemplate struct {
	Cells   [][]int
	Borders map[grid.SignedDirection][]int
	// Increment is the border width; zero means 1.
	Increment int64
}

// Shape implements [Template].
func (t *FixedTemplate) Shape() scalable.Shape2D {
	rows := int64(len(t.Cells))
	var cols int64
	if rows > 0 {
		cols = int64(len(t.Cells[0]))
	}
	return scalable.Shape2D{X: scalable.Constant(cols), Y: scalable.Constant(rows)}
}

// BorderIncrement implements [Template].
func (t *FixedTemplate) BorderIncrement() int64 {
	if t.Increment == 0 {
		return 1
	}
	return t.Increment
}

// BorderIndices implements [Template].
func (t *FixedTemplate) BorderIndices(border grid.SignedDirection) []int {
	return t.Borders[border]
}

// Instantiate implements [Template]. The same array is returned for every k.
func (t *FixedTemplate) Instantiate(int64) ([][]int, error) {
	out := make([][]int, len(t.Cells))
	for i, row := range t.Cells {
		out[i] = append([]int(nil), row...)
	}
	return out, nil
}
