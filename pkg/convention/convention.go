// Package convention maps abstract cube and pipe kinds to compiled blocks.
//
// A kind names the boundary basis on each wall of a block, one letter per
// axis: "ZXZ" is a cube with Z boundaries on its X walls, X boundaries on
// its Y walls and a Z temporal basis. A pipe kind carries an O in the pipe's
// own direction ("ZXO" is a temporal pipe). H walls (domain walls) are a
// recognized kind the builders do not support yet.
package convention

import (
	"strings"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/layers"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/scalable"
	"github.com/topostim/topostim/pkg/templates"
)

// Kind is a cube or pipe kind string, one basis letter per axis.
type Kind string

// Validate checks the kind's syntax.
func (k Kind) Validate() error {
	return errors.ValidateKindName(string(k))
}

// IsPipe reports whether the kind names a pipe (contains an O wall).
func (k Kind) IsPipe() bool {
	return strings.ContainsRune(strings.ToUpper(string(k)), 'O')
}

// PipeAxis returns the pipe's direction: the axis whose letter is O. Fails
// for cube kinds and kinds with more than one O.
func (k Kind) PipeAxis() (grid.Direction, error) {
	upper := strings.ToUpper(string(k))
	if strings.Count(upper, "O") != 1 || len(upper) < 3 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "kind %q does not name a pipe", k)
	}
	switch strings.IndexRune(upper, 'O') {
	case 0:
		return grid.DirectionX, nil
	case 1:
		return grid.DirectionY, nil
	default:
		return grid.DirectionZ, nil
	}
}

// wallBasis returns the lowercase basis letter of the given axis wall.
func (k Kind) wallBasis(axis int) byte {
	return byte(strings.ToLower(string(k))[axis])
}

// Convention bundles the plaquette schedule tables and block structure of
// one error-correction convention.
type Convention struct {
	name string
}

// CSS returns the default convention: rotated surface code patches with
// ancilla-mediated CSS stabilizer rounds.
func CSS() *Convention {
	return &Convention{name: "css"}
}

// Name returns the convention's name.
func (c *Convention) Name() string { return c.name }

// repeatedRounds is the scalable repetition count of a block's bulk rounds:
// d-2 = 2k-1, bracketed by the initialization and readout rounds for a total
// of d = 2k+1 rounds.
var repeatedRounds = scalable.Linear(2, -1)

// BuildCube compiles a cube kind into its block: an initialization round,
// 2k-1 repeated bulk rounds, and a readout round.
func (c *Convention) BuildCube(kind Kind) (*layers.Block, error) {
	vert, horiz, temporal, err := cubeBases(kind)
	if err != nil {
		return nil, err
	}

	template := templates.QubitTemplate{}
	round := roundDescriptions(vert, horiz)

	initLayer, err := layers.NewPlaquetteLayer(template, withDataResets(round, temporal))
	if err != nil {
		return nil, err
	}
	roundLayer, err := layers.NewPlaquetteLayer(template, round)
	if err != nil {
		return nil, err
	}
	measureLayer, err := layers.NewPlaquetteLayer(template, withDataMeasures(round, temporal))
	if err != nil {
		return nil, err
	}
	repeat, err := layers.NewRepeatedLayer(roundLayer, repeatedRounds)
	if err != nil {
		return nil, err
	}
	return layers.NewBlock(initLayer, repeat, measureLayer)
}

// BuildPipe compiles a pipe kind into its block. A temporal pipe is two
// plain bulk rounds bridging its endpoint cubes in time; a spatial pipe is a
// seam strip following the cube schedule.
func (c *Convention) BuildPipe(kind Kind) (*layers.Block, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	axis, err := kind.PipeAxis()
	if err != nil {
		return nil, err
	}
	if strings.ContainsRune(strings.ToUpper(string(kind)), 'H') {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"domain-wall pipe kind %q is not supported", kind)
	}

	if axis == grid.DirectionZ {
		vert, horiz := kind.wallBasis(0), kind.wallBasis(1)
		round, err := layers.NewPlaquetteLayer(templates.QubitTemplate{}, roundDescriptions(vert, horiz))
		if err != nil {
			return nil, err
		}
		return layers.NewBlock(round, round)
	}

	template := templates.StripTemplate{Direction: axis}
	var boundary byte
	var temporal byte
	if axis == grid.DirectionX {
		boundary = kind.wallBasis(1)
		temporal = kind.wallBasis(2)
	} else {
		boundary = kind.wallBasis(0)
		temporal = kind.wallBasis(2)
	}
	round := stripDescriptions(axis, boundary)

	initLayer, err := layers.NewPlaquetteLayer(template, withDataResets(round, temporal))
	if err != nil {
		return nil, err
	}
	roundLayer, err := layers.NewPlaquetteLayer(template, round)
	if err != nil {
		return nil, err
	}
	measureLayer, err := layers.NewPlaquetteLayer(template, withDataMeasures(round, temporal))
	if err != nil {
		return nil, err
	}
	repeat, err := layers.NewRepeatedLayer(roundLayer, repeatedRounds)
	if err != nil {
		return nil, err
	}
	return layers.NewBlock(initLayer, repeat, measureLayer)
}

// TemporalBasis returns the kind's readout basis as an rpng basis letter.
func (k Kind) TemporalBasis() (rpng.Basis, error) {
	if err := k.Validate(); err != nil {
		return 0, err
	}
	b := k.wallBasis(2)
	if b != 'x' && b != 'z' {
		return 0, errors.New(errors.ErrCodeUnsupported,
			"kind %q has no fixed temporal readout basis", k)
	}
	return rpng.Basis(b), nil
}

// cubeBases validates a cube kind and splits it into its wall bases.
func cubeBases(kind Kind) (vert, horiz, temporal byte, err error) {
	if err := kind.Validate(); err != nil {
		return 0, 0, 0, err
	}
	upper := strings.ToUpper(string(kind))
	if len(upper) != 3 || strings.ContainsRune(upper, 'O') {
		return 0, 0, 0, errors.New(errors.ErrCodeInvalidInput, "kind %q does not name a cube", kind)
	}
	if strings.ContainsRune(upper, 'H') {
		return 0, 0, 0, errors.New(errors.ErrCodeUnsupported,
			"domain-wall cube kind %q is not supported", kind)
	}
	vert, horiz, temporal = kind.wallBasis(0), kind.wallBasis(1), kind.wallBasis(2)
	if vert == horiz {
		return 0, 0, 0, errors.New(errors.ErrCodeInvalidInput,
			"cube kind %q repeats the same boundary basis on both wall pairs", kind)
	}
	return vert, horiz, temporal, nil
}
