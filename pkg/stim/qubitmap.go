package stim

import (
	"slices"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
)

// QubitMap is a bijection between physical 2D grid coordinates and dense
// circuit-local qubit indices. Leaf circuits carry local maps; the final
// assembly pass builds a global map that is a strict superset of every leaf's
// and rewrites all leaf circuits through it.
type QubitMap struct {
	indexToPos map[int]grid.Position2D
	posToIndex map[grid.Position2D]int
}

// NewQubitMap returns an empty qubit map.
func NewQubitMap() *QubitMap {
	return &QubitMap{
		indexToPos: make(map[int]grid.Position2D),
		posToIndex: make(map[grid.Position2D]int),
	}
}

// QubitMapFromPositions builds a map assigning dense indices 0..n-1 to the
// given positions in sorted lexicographic order. Duplicate positions are
// collapsed.
func QubitMapFromPositions(positions []grid.Position2D) *QubitMap {
	sorted := append([]grid.Position2D(nil), positions...)
	slices.SortFunc(sorted, func(a, b grid.Position2D) int {
		if a == b {
			return 0
		}
		if a.Less(b) {
			return -1
		}
		return 1
	})
	sorted = slices.Compact(sorted)

	m := NewQubitMap()
	for i, p := range sorted {
		m.indexToPos[i] = p
		m.posToIndex[p] = i
	}
	return m
}

// Add inserts a (index, position) pair. Either side already being present is
// a bijection violation and fails.
func (m *QubitMap) Add(index int, pos grid.Position2D) error {
	if existing, ok := m.indexToPos[index]; ok {
		return errors.New(errors.ErrCodeInvalidInput,
			"qubit index %d already maps to %s", index, existing)
	}
	if existing, ok := m.posToIndex[pos]; ok {
		return errors.New(errors.ErrCodeInvalidInput,
			"position %s already maps to qubit index %d", pos, existing)
	}
	m.indexToPos[index] = pos
	m.posToIndex[pos] = index
	return nil
}

// Index returns the qubit index at the given position.
func (m *QubitMap) Index(pos grid.Position2D) (int, bool) {
	i, ok := m.posToIndex[pos]
	return i, ok
}

// Position returns the position of the given qubit index.
func (m *QubitMap) Position(index int) (grid.Position2D, bool) {
	p, ok := m.indexToPos[index]
	return p, ok
}

// Len returns the number of qubits in the map.
func (m *QubitMap) Len() int {
	return len(m.indexToPos)
}

// Positions returns all positions in sorted lexicographic order.
func (m *QubitMap) Positions() []grid.Position2D {
	ps := make([]grid.Position2D, 0, len(m.posToIndex))
	for p := range m.posToIndex {
		ps = append(ps, p)
	}
	slices.SortFunc(ps, func(a, b grid.Position2D) int {
		if a == b {
			return 0
		}
		if a.Less(b) {
			return -1
		}
		return 1
	})
	return ps
}

// ContainsAllOf reports whether m's position set is a superset of other's.
func (m *QubitMap) ContainsAllOf(other *QubitMap) bool {
	for p := range other.posToIndex {
		if _, ok := m.posToIndex[p]; !ok {
			return false
		}
	}
	return true
}

// RemappingTo returns the index translation from m (local) into global. The
// global map must cover every position in m; a missing position is a fatal
// QUBIT_NOT_FOUND error, since remapping is total, never partial.
func (m *QubitMap) RemappingTo(global *QubitMap) (map[int]int, error) {
	out := make(map[int]int, len(m.indexToPos))
	for idx, pos := range m.indexToPos {
		gidx, ok := global.posToIndex[pos]
		if !ok {
			return nil, errors.New(errors.ErrCodeQubitNotFound,
				"position %s (local qubit %d) is missing from the global qubit map", pos, idx)
		}
		out[idx] = gidx
	}
	return out, nil
}

// MergedQubitMap returns a fresh map over the union of the inputs' positions,
// assigning dense indices in sorted position order. The result is a superset
// of every input by construction.
func MergedQubitMap(maps ...*QubitMap) *QubitMap {
	var positions []grid.Position2D
	for _, m := range maps {
		for p := range m.posToIndex {
			positions = append(positions, p)
		}
	}
	return QubitMapFromPositions(positions)
}

// QubitCoordsInstructions returns the QUBIT_COORDS declarations for every
// qubit in the map, ordered by index.
func (m *QubitMap) QubitCoordsInstructions() []Instruction {
	indices := make([]int, 0, len(m.indexToPos))
	for i := range m.indexToPos {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	out := make([]Instruction, 0, len(indices))
	for _, i := range indices {
		p := m.indexToPos[i]
		out = append(out, NewInstruction("QUBIT_COORDS", []GateTarget{Qubit(i)}, float64(p.X), float64(p.Y)))
	}
	return out
}
