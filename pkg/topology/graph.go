// Package topology places compiled blocks on the 3D integer lattice and
// lowers them into per-depth merged layer stacks.
//
// The graph owns one block per layout position. Junction insertion follows a
// two-phase commit: validate everything, trim the borders of the two
// neighboring cubes on the side facing the junction, then insert the
// junction's own block. The junction and its neighbors never simultaneously
// claim the shared boundary's plaquettes.
package topology

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/layers"
	"github.com/topostim/topostim/pkg/merge"
)

// maxCoordinate bounds block coordinates so the doubled layout encoding
// cannot overflow int64.
const maxCoordinate = int64(1) << 62

// Graph is the topological computation graph: a mutable mapping from layout
// positions to blocks, under a single-writer discipline. The read path
// (LayersAt, LayoutLayers) is pure and recomputes from stored state on every
// call.
type Graph struct {
	blocks     map[grid.LayoutPosition3D]*layers.Block
	minZ, maxZ int64
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{blocks: make(map[grid.LayoutPosition3D]*layers.Block)}
}

// NumBlocks returns the number of stored blocks, junctions included.
func (g *Graph) NumBlocks() int { return len(g.blocks) }

// DepthRange returns the inclusive range of occupied block depths. The
// second return value is false for an empty graph.
func (g *Graph) DepthRange() (minZ, maxZ int64, ok bool) {
	if len(g.blocks) == 0 {
		return 0, 0, false
	}
	return g.minZ, g.maxZ, true
}

// BlockAt returns the block stored for the cube at p, or false when the
// position is empty.
func (g *Graph) BlockAt(p grid.Position3D) (*layers.Block, bool) {
	b, ok := g.blocks[grid.CubeLayoutPosition3D(p)]
	return b, ok
}

// JunctionAt returns the junction block stored between the cubes at u and v,
// or false when no junction exists there. Endpoint validation errors are
// reported as INVALID_JUNCTION.
func (g *Graph) JunctionAt(u, v grid.Position3D) (*layers.Block, bool, error) {
	pos, err := grid.PipeLayoutPosition3D(u, v)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeInvalidJunction, "invalid junction endpoints")
	}
	b, ok := g.blocks[pos]
	return b, ok, nil
}

// AddCube places a cube block at p. Fails with OCCUPIED_POSITION when the
// position already holds a block and INVALID_POSITION when a coordinate
// falls outside the representable range.
func (g *Graph) AddCube(p grid.Position3D, block *layers.Block) error {
	for _, c := range [3]int64{p.X, p.Y, p.Z} {
		if c <= -maxCoordinate || c >= maxCoordinate {
			return errors.New(errors.ErrCodeInvalidPosition,
				"cube coordinate %d is outside the representable range", c)
		}
	}
	if block == nil || !block.IsCube() {
		return errors.New(errors.ErrCodeInvalidBlock, "block at %s is not a cube block", p)
	}
	pos := grid.CubeLayoutPosition3D(p)
	if _, ok := g.blocks[pos]; ok {
		return errors.New(errors.ErrCodeOccupiedPosition, "position %s already holds a block", p)
	}
	g.blocks[pos] = block
	g.recordDepth(p.Z)
	return nil
}

// AddJunction inserts the pipe block between the cubes at u and v. The
// endpoints must be lattice neighbors in ascending order and both already
// present; the junction position must be free. On success the two endpoint
// blocks are replaced by border-trimmed copies on the side facing the
// junction before the pipe block is inserted.
func (g *Graph) AddJunction(u, v grid.Position3D, pipe *layers.Block) error {
	// Validate.
	pos, err := grid.PipeLayoutPosition3D(u, v)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidJunction, "invalid junction endpoints")
	}
	direction, err := u.DirectionTo(v)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidJunction, "invalid junction endpoints")
	}
	if _, ok := g.blocks[pos]; ok {
		return errors.New(errors.ErrCodeOccupiedPosition,
			"a junction between %s and %s already exists", u, v)
	}
	lower, ok := g.blocks[grid.CubeLayoutPosition3D(u)]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no cube at junction endpoint %s", u)
	}
	upper, ok := g.blocks[grid.CubeLayoutPosition3D(v)]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no cube at junction endpoint %s", v)
	}
	if pipe == nil || pipe.IsCube() {
		return errors.New(errors.ErrCodeInvalidBlock,
			"junction between %s and %s needs a pipe block", u, v)
	}

	// Trim. All trimmed copies are computed before any state changes.
	var trimmedLower, trimmedUpper *layers.Block
	if direction.Direction == grid.DirectionZ {
		if !pipe.IsTemporalPipe() {
			return errors.New(errors.ErrCodeInvalidBlock,
				"junction between %s and %s is temporal but the block is not a temporal pipe", u, v)
		}
		// Validated here so the layout read path cannot fail on it later.
		if _, _, err := pipe.SplitInTwo(); err != nil {
			return err
		}
		trimmedLower, err = lower.WithTemporalBordersReplaced(map[layers.TemporalBorder]layers.Layer{
			layers.TemporalBorderPositive: nil,
		})
		if err != nil {
			return err
		}
		trimmedUpper, err = upper.WithTemporalBordersReplaced(map[layers.TemporalBorder]layers.Layer{
			layers.TemporalBorderNegative: nil,
		})
		if err != nil {
			return err
		}
	} else {
		trimmedLower, err = lower.WithSpatialBordersTrimmed(
			grid.SignedDirection{Direction: direction.Direction, TowardPositive: true})
		if err != nil {
			return err
		}
		trimmedUpper, err = upper.WithSpatialBordersTrimmed(
			grid.SignedDirection{Direction: direction.Direction, TowardPositive: false})
		if err != nil {
			return err
		}
	}

	// Insert.
	g.blocks[grid.CubeLayoutPosition3D(u)] = trimmedLower
	g.blocks[grid.CubeLayoutPosition3D(v)] = trimmedUpper
	g.blocks[pos] = pipe
	return nil
}

func (g *Graph) recordDepth(z int64) {
	if len(g.blocks) == 1 {
		g.minZ, g.maxZ = z, z
		return
	}
	if z < g.minZ {
		g.minZ = z
	}
	if z > g.maxZ {
		g.maxZ = z
	}
}

// LayersAt computes the merged layer stack at block depth z: one merged
// layer per schedule slot, covering every position active at that depth.
// Temporal pipes contribute half their layers to each of the two depths
// they span, appended after the lower cube's slots and prepended before the
// upper cube's. Fails with NOT_FOUND for a depth outside the occupied
// range.
func (g *Graph) LayersAt(z int64) ([]layers.Layer, error) {
	if _, _, ok := g.DepthRange(); !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "the graph has no blocks")
	}
	if z < g.minZ || z > g.maxZ {
		return nil, errors.New(errors.ErrCodeNotFound,
			"depth %d is outside the occupied range [%d, %d]", z, g.minZ, g.maxZ)
	}

	stacks := make(map[grid.LayoutPosition2D][]layers.Layer)

	// Cubes and spatial pipes first: they form the base stack at their own
	// depth.
	for pos, block := range g.blocks {
		if pos.IsTemporalPipe() || !pos.SpansDepth(z) {
			continue
		}
		stacks[pos.Horizontal()] = block.Layers()
	}

	// Temporal pipes splice half their layers onto the footprint they share
	// with their endpoint cubes.
	for pos, block := range g.blocks {
		if !pos.IsTemporalPipe() || !pos.SpansDepth(z) {
			continue
		}
		lowerHalf, upperHalf, err := block.SplitInTwo()
		if err != nil {
			return nil, err
		}
		footprint := pos.Horizontal()
		low, _, err := pos.PipeEndpoints()
		if err != nil {
			return nil, err
		}
		if low.Z == z {
			stacks[footprint] = append(append([]layers.Layer{}, stacks[footprint]...), lowerHalf...)
		} else {
			stacks[footprint] = append(append([]layers.Layer{}, upperHalf...), stacks[footprint]...)
		}
	}

	if len(stacks) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"no blocks at depth %d; every depth in [%d, %d] must be occupied", z, g.minZ, g.maxZ)
	}

	slots := -1
	for pos, stack := range stacks {
		if slots == -1 {
			slots = len(stack)
			continue
		}
		if len(stack) != slots {
			return nil, errors.New(errors.ErrCodeInvalidSchedule,
				"position %s has %d schedule slots at depth %d, other positions have %d",
				pos, len(stack), z, slots)
		}
	}

	merged := make([]layers.Layer, slots)
	for i := 0; i < slots; i++ {
		slot := make(map[grid.LayoutPosition2D]layers.Layer, len(stacks))
		for pos, stack := range stacks {
			slot[pos] = stack[i]
		}
		m, err := merge.Parallel(slot)
		if err != nil {
			return nil, err
		}
		merged[i] = m
	}
	return merged, nil
}

// LayoutLayers computes the merged layer stacks for every occupied depth,
// in temporal order.
func (g *Graph) LayoutLayers() ([][]layers.Layer, error) {
	minZ, maxZ, ok := g.DepthRange()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "the graph has no blocks")
	}
	out := make([][]layers.Layer, 0, maxZ-minZ+1)
	for z := minZ; z <= maxZ; z++ {
		stack, err := g.LayersAt(z)
		if err != nil {
			return nil, err
		}
		out = append(out, stack)
	}
	return out, nil
}
