package layers

import (
	"maps"
	"slices"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
)

// sectionPitch is the cell offset between the origins of neighboring cube
// footprints: a cube is 2k+2 cells wide and the pipe strip between two cubes
// is 2 cells wide.
var sectionPitch = scalable.Linear(2, 4)

// sectionCellOrigin returns the scalable cell-grid origin of the section at
// the given layout position. Even layout coordinates address cube footprints,
// odd coordinates the pipe strip between two cubes.
func sectionCellOrigin(pos grid.LayoutPosition2D) (x, y scalable.LinearFunction) {
	axis := func(c int64) scalable.LinearFunction {
		if c%2 == 0 {
			return sectionPitch.Mul(c / 2)
		}
		return sectionPitch.Mul((c - 1) / 2).Add(scalable.Linear(2, 2))
	}
	px, py := pos.Coordinates()
	return axis(px), axis(py)
}

// SectionCellOrigin is the exported form of the layout placement rule, used
// by circuit realization to offset each section's qubit coordinates.
func SectionCellOrigin(pos grid.LayoutPosition2D) (x, y scalable.LinearFunction) {
	return sectionCellOrigin(pos)
}

// LayoutLayer is an atomic layer merged across all spatial positions active
// in one time slice: a dictionary from layout position to the per-position
// atomic layer that applies there. The plaquette content is not flattened;
// each section keeps its own sub-layer.
type LayoutLayer struct {
	sections  map[grid.LayoutPosition2D]Atomic
	timesteps scalable.LinearFunction
}

var _ Atomic = (*LayoutLayer)(nil)

// NewLayoutLayer builds a layout layer from per-position atomic layers. All
// sections must share one scalable timestep count; construction fails on a
// temporal footprint mismatch or an empty section map.
func NewLayoutLayer(sections map[grid.LayoutPosition2D]Atomic) (*LayoutLayer, error) {
	if len(sections) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidBlock, "layout layer needs at least one section")
	}
	var timesteps scalable.LinearFunction
	first := true
	for pos, section := range sections {
		if first {
			timesteps = section.ScalableTimesteps()
			first = false
			continue
		}
		if section.ScalableTimesteps() != timesteps {
			return nil, errors.New(errors.ErrCodeInvalidSchedule,
				"section at %s lasts %s timesteps, other sections last %s",
				pos, section.ScalableTimesteps(), timesteps)
		}
	}
	return &LayoutLayer{sections: maps.Clone(sections), timesteps: timesteps}, nil
}

// SectionAt returns the atomic layer at the given layout position, or false
// when the position holds no section.
func (l *LayoutLayer) SectionAt(pos grid.LayoutPosition2D) (Atomic, bool) {
	s, ok := l.sections[pos]
	return s, ok
}

// Positions returns all section positions in lexicographic order.
func (l *LayoutLayer) Positions() []grid.LayoutPosition2D {
	positions := slices.Collect(maps.Keys(l.sections))
	slices.SortFunc(positions, func(a, b grid.LayoutPosition2D) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return positions
}

// NumSections returns the number of sections.
func (l *LayoutLayer) NumSections() int { return len(l.sections) }

// Equal reports whether two layout layers hold the same sections at the same
// positions. Section identity is interface equality: two layout layers built
// from the same per-position layers compare equal regardless of map insertion
// order.
func (l *LayoutLayer) Equal(o *LayoutLayer) bool {
	if len(l.sections) != len(o.sections) {
		return false
	}
	for pos, section := range l.sections {
		other, ok := o.sections[pos]
		if !ok || other != section {
			return false
		}
	}
	return true
}

// ScalableShape implements [Layer]: the scalable bounding box, in cells, of
// every section placed at its layout origin.
func (l *LayoutLayer) ScalableShape() scalable.Shape2D {
	var maxX, maxY scalable.LinearFunction
	first := true
	for pos, section := range l.sections {
		ox, oy := sectionCellOrigin(pos)
		shape := section.ScalableShape()
		ex, ey := ox.Add(shape.X), oy.Add(shape.Y)
		if first {
			maxX, maxY = ex, ey
			first = false
			continue
		}
		maxX = maxLinear(maxX, ex)
		maxY = maxLinear(maxY, ey)
	}
	return scalable.Shape2D{X: maxX, Y: maxY}
}

// maxLinear picks the larger of two section extents. Extents on one layout
// axis are totally ordered (a larger layout coordinate grows both slope and
// offset), so comparing at k=1 with a slope tie-break is sufficient.
func maxLinear(a, b scalable.LinearFunction) scalable.LinearFunction {
	av, bv := a.IntegerEval(1), b.IntegerEval(1)
	if av != bv {
		if av > bv {
			return a
		}
		return b
	}
	if a.Slope >= b.Slope {
		return a
	}
	return b
}

// ScalableTimesteps implements [Layer].
func (l *LayoutLayer) ScalableTimesteps() scalable.LinearFunction { return l.timesteps }

// WithSpatialBordersTrimmed implements [Layer]. Border trimming happens on
// the per-position layers before merging; a merged layout layer no longer
// has a single well-defined border to strip.
func (l *LayoutLayer) WithSpatialBordersTrimmed(...grid.SignedDirection) (Layer, error) {
	return nil, errors.New(errors.ErrCodeUnsupported,
		"cannot trim spatial borders of an already merged layout layer")
}

// WithTemporalBordersReplaced implements [Layer].
func (l *LayoutLayer) WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (Layer, error) {
	return atomicTemporalReplacement(l, replacements)
}

func (l *LayoutLayer) sealed() {}
func (l *LayoutLayer) atomic() {}
