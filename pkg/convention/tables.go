package convention

import (
	"fmt"

	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/templates"
)

// Plaquette schedule tables for the rotated surface code, one word per
// corner in top-left, top-right, bottom-left, bottom-right order. The %s
// slots take the basis letter. The entangling-gate orders (1,3,2,4 for the
// vertically-terminating basis, 1,2,3,4 for the horizontal one) are domain
// constants of the convention; their correctness rests on stabilizer-
// formalism properties and they must not be re-derived.
const (
	bulkVertTable  = "-%s1- -%s3- -%s2- -%s4-"
	bulkHorizTable = "-%s1- -%s2- -%s3- -%s4-"

	topBoundaryTable    = "---- ---- -%s3- -%s4-"
	bottomBoundaryTable = "-%s1- -%s2- ---- ----"
	leftBoundaryTable   = "---- -%s3- ---- -%s4-"
	rightBoundaryTable  = "-%s1- ---- -%s2- ----"
)

func parseTable(table string, basis byte) rpng.Description {
	n := 0
	for i := 0; i+1 < len(table); i++ {
		if table[i] == '%' && table[i+1] == 's' {
			n++
		}
	}
	args := make([]any, n)
	for i := range args {
		args[i] = string(basis)
	}
	return rpng.MustParse(fmt.Sprintf(table, args...))
}

// roundDescriptions assigns one bulk round's plaquettes over the cube
// template: vert is the basis terminating on the left/right walls, horiz the
// one terminating on the top/bottom walls.
func roundDescriptions(vert, horiz byte) map[int]rpng.Description {
	return map[int]rpng.Description{
		templates.IndexBulkZ:   parseTable(bulkVertTable, vert),
		templates.IndexBulkX:   parseTable(bulkHorizTable, horiz),
		templates.IndexLeftZ:   parseTable(leftBoundaryTable, vert),
		templates.IndexRightZ:  parseTable(rightBoundaryTable, vert),
		templates.IndexTopX:    parseTable(topBoundaryTable, horiz),
		templates.IndexBottomX: parseTable(bottomBoundaryTable, horiz),
	}
}

// stripDescriptions assigns one bulk round's plaquettes over a seam strip.
// boundary is the basis of the walls parallel to the seam.
func stripDescriptions(axis grid.Direction, boundary byte) map[int]rpng.Description {
	if axis == grid.DirectionX {
		return map[int]rpng.Description{
			templates.IndexBulkZ:   parseTable(bulkVertTable, 'z'),
			templates.IndexBulkX:   parseTable(bulkHorizTable, 'x'),
			templates.IndexTopX:    parseTable(topBoundaryTable, boundary),
			templates.IndexBottomX: parseTable(bottomBoundaryTable, boundary),
		}
	}
	return map[int]rpng.Description{
		templates.IndexBulkZ:  parseTable(bulkVertTable, 'z'),
		templates.IndexBulkX:  parseTable(bulkHorizTable, 'x'),
		templates.IndexLeftZ:  parseTable(leftBoundaryTable, boundary),
		templates.IndexRightZ: parseTable(rightBoundaryTable, boundary),
	}
}

// withDataResets returns the round table with every active corner reset in
// the given basis, turning a bulk round into an initialization round.
func withDataResets(round map[int]rpng.Description, basis byte) map[int]rpng.Description {
	out := make(map[int]rpng.Description, len(round))
	for idx, desc := range round {
		for i := range desc.Corners {
			if desc.Corners[i].N != 0 {
				desc.Corners[i].R = basis
			}
		}
		out[idx] = desc
	}
	return out
}

// withDataMeasures returns the round table with every active corner measured
// in the given basis, turning a bulk round into a readout round.
func withDataMeasures(round map[int]rpng.Description, basis byte) map[int]rpng.Description {
	out := make(map[int]rpng.Description, len(round))
	for idx, desc := range round {
		for i := range desc.Corners {
			if desc.Corners[i].N != 0 {
				desc.Corners[i].G = basis
			}
		}
		out[idx] = desc
	}
	return out
}
