package grid

import (
	"errors"
	"fmt"
)

// ErrParityViolation is returned by the layout-position constructors when the
// doubled-coordinate parity invariant would be broken. It indicates graph
// corruption: layout positions are only ever built from validated block
// positions.
var ErrParityViolation = errors.New("layout position parity violation")

// LayoutPosition3D is a point on the doubled lattice shared by cubes and
// pipes. A cube position has all-even coordinates (twice its block
// coordinates); a pipe position has exactly one odd coordinate, in the pipe's
// own direction, placing it midway between its two endpoint cubes.
//
// The fields are unexported so the parity invariant can only be established
// through [CubeLayoutPosition3D] and [PipeLayoutPosition3D]. The type is
// comparable and usable as a map key.
type LayoutPosition3D struct {
	x, y, z int64
}

// CubeLayoutPosition3D returns the layout position of the cube at p.
func CubeLayoutPosition3D(p Position3D) LayoutPosition3D {
	return LayoutPosition3D{x: 2 * p.X, y: 2 * p.Y, z: 2 * p.Z}
}

// PipeLayoutPosition3D returns the layout position of the pipe between the
// two cubes at u and v. The endpoints must be lattice neighbors in ascending
// order; otherwise ErrNotNeighbors or ErrNotAscending is returned.
func PipeLayoutPosition3D(u, v Position3D) (LayoutPosition3D, error) {
	if !u.IsNeighbor(v) {
		return LayoutPosition3D{}, fmt.Errorf("%w: %s and %s", ErrNotNeighbors, u, v)
	}
	if !u.Less(v) {
		return LayoutPosition3D{}, fmt.Errorf("%w: %s is not before %s", ErrNotAscending, u, v)
	}
	return LayoutPosition3D{x: u.X + v.X, y: u.Y + v.Y, z: u.Z + v.Z}, nil
}

// IsCube reports whether the position encodes a cube (all coordinates even).
func (l LayoutPosition3D) IsCube() bool {
	return l.x%2 == 0 && l.y%2 == 0 && l.z%2 == 0
}

// IsPipe reports whether the position encodes a pipe (exactly one odd
// coordinate).
func (l LayoutPosition3D) IsPipe() bool {
	odd := 0
	for _, c := range [3]int64{l.x, l.y, l.z} {
		if c%2 != 0 {
			odd++
		}
	}
	return odd == 1
}

// IsTemporalPipe reports whether the position encodes a pipe in the time
// (Z) direction.
func (l LayoutPosition3D) IsTemporalPipe() bool {
	return l.IsPipe() && l.z%2 != 0
}

// PipeDirection returns the axis of the pipe. Returns ErrParityViolation if
// the position does not encode a pipe.
func (l LayoutPosition3D) PipeDirection() (Direction, error) {
	if !l.IsPipe() {
		return 0, fmt.Errorf("%w: %s is not a pipe position", ErrParityViolation, l)
	}
	switch {
	case l.x%2 != 0:
		return DirectionX, nil
	case l.y%2 != 0:
		return DirectionY, nil
	default:
		return DirectionZ, nil
	}
}

// AsCube returns the block position of a cube layout position. The second
// return value is false when the position is not a cube.
func (l LayoutPosition3D) AsCube() (Position3D, bool) {
	if !l.IsCube() {
		return Position3D{}, false
	}
	return Position3D{X: l.x / 2, Y: l.y / 2, Z: l.z / 2}, true
}

// PipeEndpoints returns the two cube block positions a pipe connects, in
// ascending order. Returns ErrParityViolation if the position is not a pipe.
func (l LayoutPosition3D) PipeEndpoints() (Position3D, Position3D, error) {
	d, err := l.PipeDirection()
	if err != nil {
		return Position3D{}, Position3D{}, err
	}
	low := Position3D{X: l.x / 2, Y: l.y / 2, Z: l.z / 2}
	switch d {
	case DirectionX:
		low = Position3D{X: (l.x - 1) / 2, Y: l.y / 2, Z: l.z / 2}
	case DirectionY:
		low = Position3D{X: l.x / 2, Y: (l.y - 1) / 2, Z: l.z / 2}
	case DirectionZ:
		low = Position3D{X: l.x / 2, Y: l.y / 2, Z: (l.z - 1) / 2}
	}
	return low, low.Shift(d, 1), nil
}

// SpansDepth reports whether the position's temporal footprint covers block
// depth z. Cubes and spatial pipes cover exactly their own depth; a temporal
// pipe between depths z and z+1 covers both.
func (l LayoutPosition3D) SpansDepth(z int64) bool {
	if l.z%2 == 0 {
		return l.z == 2*z
	}
	return l.z == 2*z+1 || l.z == 2*z-1
}

// Horizontal projects the position onto the 2D layout lattice, discarding the
// temporal coordinate. A temporal pipe projects onto its cubes' footprint.
func (l LayoutPosition3D) Horizontal() LayoutPosition2D {
	return LayoutPosition2D{x: l.x, y: l.y}
}

func (l LayoutPosition3D) String() string {
	return fmt.Sprintf("layout(%d, %d, %d)", l.x, l.y, l.z)
}

// LayoutPosition2D is the 2D projection of a layout position: the spatial
// footprint of a cube or pipe within one time slice. Comparable, usable as a
// map key.
type LayoutPosition2D struct {
	x, y int64
}

// CubeLayoutPosition2D returns the 2D layout position of a cube's footprint.
func CubeLayoutPosition2D(x, y int64) LayoutPosition2D {
	return LayoutPosition2D{x: 2 * x, y: 2 * y}
}

// IsCube reports whether the footprint belongs to a cube.
func (l LayoutPosition2D) IsCube() bool {
	return l.x%2 == 0 && l.y%2 == 0
}

// Coordinates returns the raw doubled coordinates.
func (l LayoutPosition2D) Coordinates() (x, y int64) { return l.x, l.y }

// Less reports whether l precedes o in lexicographic order. Used to make
// iteration over position-keyed maps deterministic.
func (l LayoutPosition2D) Less(o LayoutPosition2D) bool {
	if l.x != o.x {
		return l.x < o.x
	}
	return l.y < o.y
}

func (l LayoutPosition2D) String() string {
	return fmt.Sprintf("layout(%d, %d)", l.x, l.y)
}
