// Package grid provides the integer lattice types the compiler places blocks
// and qubits on.
//
// Three coordinate systems coexist:
//
//   - Block coordinates ([Position3D]): the abstract 3D integer lattice a
//     block graph's cubes live on. One unit is one surface-code patch.
//   - Layout coordinates ([LayoutPosition3D], [LayoutPosition2D]): a doubled
//     encoding that represents both cubes (all-even coordinates) and the
//     pipes between them (exactly one odd coordinate, in the pipe's own
//     direction) on a single lattice, so both can share one dictionary keyed
//     by position without collision.
//   - Qubit coordinates ([Position2D]): the physical 2D grid individual
//     qubits sit on inside one layout slice.
package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrNotNeighbors is returned when two positions expected to be lattice
	// neighbors (Manhattan distance 1) are not.
	ErrNotNeighbors = errors.New("positions are not lattice neighbors")

	// ErrNotAscending is returned when a pipe's endpoints are not given in
	// ascending lexicographic order.
	ErrNotAscending = errors.New("positions are not in ascending order")
)

// Direction is one of the three lattice axes.
type Direction int

const (
	DirectionX Direction = iota
	DirectionY
	DirectionZ
)

func (d Direction) String() string {
	switch d {
	case DirectionX:
		return "X"
	case DirectionY:
		return "Y"
	case DirectionZ:
		return "Z"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// SignedDirection is an axis together with an orientation along it.
// It identifies one of the six faces of a cube.
type SignedDirection struct {
	Direction      Direction
	TowardPositive bool
}

func (s SignedDirection) String() string {
	if s.TowardPositive {
		return "+" + s.Direction.String()
	}
	return "-" + s.Direction.String()
}

// Opposite returns the signed direction pointing the other way on the same axis.
func (s SignedDirection) Opposite() SignedDirection {
	return SignedDirection{Direction: s.Direction, TowardPositive: !s.TowardPositive}
}

// Position3D is an immutable point on the abstract block lattice.
// It is comparable and usable as a map key.
type Position3D struct {
	X, Y, Z int64
}

func (p Position3D) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Less reports whether p precedes q in lexicographic (X, Y, Z) order.
func (p Position3D) Less(q Position3D) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.Z < q.Z
}

// IsNeighbor reports whether p and q are at Manhattan distance exactly 1.
func (p Position3D) IsNeighbor(q Position3D) bool {
	return abs(p.X-q.X)+abs(p.Y-q.Y)+abs(p.Z-q.Z) == 1
}

// Shift returns the position moved by delta along the given axis.
func (p Position3D) Shift(d Direction, delta int64) Position3D {
	switch d {
	case DirectionX:
		return Position3D{X: p.X + delta, Y: p.Y, Z: p.Z}
	case DirectionY:
		return Position3D{X: p.X, Y: p.Y + delta, Z: p.Z}
	default:
		return Position3D{X: p.X, Y: p.Y, Z: p.Z + delta}
	}
}

// DirectionTo returns the signed direction from p to its lattice neighbor q.
// Returns ErrNotNeighbors if the two positions are not at Manhattan distance 1.
func (p Position3D) DirectionTo(q Position3D) (SignedDirection, error) {
	if !p.IsNeighbor(q) {
		return SignedDirection{}, fmt.Errorf("%w: %s and %s", ErrNotNeighbors, p, q)
	}
	switch {
	case q.X != p.X:
		return SignedDirection{Direction: DirectionX, TowardPositive: q.X > p.X}, nil
	case q.Y != p.Y:
		return SignedDirection{Direction: DirectionY, TowardPositive: q.Y > p.Y}, nil
	default:
		return SignedDirection{Direction: DirectionZ, TowardPositive: q.Z > p.Z}, nil
	}
}

// Position2D is an immutable point on the physical qubit grid.
type Position2D struct {
	X, Y int64
}

func (p Position2D) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Less reports whether p precedes q in lexicographic (X, Y) order.
func (p Position2D) Less(q Position2D) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
