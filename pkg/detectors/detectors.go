// Package detectors infers DETECTOR annotations for realized layer circuits.
//
// A detector is a parity constraint over measurement-record offsets that is
// deterministic under noiseless execution. The default computer matches
// stabilizer measurements between consecutive rounds by ancilla position:
// two measurements of the same stabilizer in consecutive rounds form a
// comparison detector, a first measurement after a basis-aligned data reset
// forms a single-term detector, and a final data-qubit readout reconstructs
// each stabilizer of the readout basis from its corner data measurements.
package detectors

import (
	"sort"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/stim"
)

// AncillaMeasurement records one stabilizer measurement within a round.
type AncillaMeasurement struct {
	Pos     grid.Position2D
	Basis   rpng.Basis
	Corners []grid.Position2D
	// Index is the measurement's position in the round's record, counting
	// from zero in circuit order.
	Index int
}

// DataMeasurement records one data-qubit readout within a round.
type DataMeasurement struct {
	Pos   grid.Position2D
	Basis rpng.Basis
	Index int
}

// RoundMeasurements is everything one realized round exposes to detector
// inference.
type RoundMeasurements struct {
	// Total is the number of measurements the round's circuit performs.
	Total int

	Ancillas []AncillaMeasurement
	Data     map[grid.Position2D]DataMeasurement

	// Resets maps every position reset at the start of the round to its
	// reset basis.
	Resets map[grid.Position2D]rpng.Basis
}

// ancillaAt returns the round's measurement of the stabilizer at pos, if any.
func (r *RoundMeasurements) ancillaAt(pos grid.Position2D) (AncillaMeasurement, bool) {
	for _, a := range r.Ancillas {
		if a.Pos == pos {
			return a, true
		}
	}
	return AncillaMeasurement{}, false
}

// Computer computes the detector instructions for one round given the round
// that precedes it in time (nil for the first round). The radius bounds, in
// plaquette units, how far from an ancilla the matcher searches for
// supporting measurements.
type Computer interface {
	Compute(prev, cur *RoundMeasurements, radius int) ([]stim.Instruction, error)
}

// DefaultRadius is the search horizon used when the caller does not pick one.
const DefaultRadius = 2

// MatchingComputer is the default [Computer].
type MatchingComputer struct{}

// Compute implements [Computer].
func (MatchingComputer) Compute(prev, cur *RoundMeasurements, radius int) ([]stim.Instruction, error) {
	if cur == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no round to compute detectors for")
	}
	if radius < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "search radius must be >= 1, got %d", radius)
	}
	horizon := int64(2 * radius)

	var out []stim.Instruction
	for _, a := range cur.Ancillas {
		currec := a.Index - cur.Total

		// Comparison with the same stabilizer one round earlier.
		if prev != nil {
			if p, ok := prev.ancillaAt(a.Pos); ok && p.Basis == a.Basis {
				out = append(out, detector(a.Pos, stim.Rec(currec), stim.Rec(p.Index-prev.Total-cur.Total)))
				continue
			}
		}

		// First measurement after a basis-aligned reset of every corner.
		if cornersReset(cur, a, horizon) {
			out = append(out, detector(a.Pos, stim.Rec(currec)))
		}
	}

	// Final readout reconstruction.
	for _, a := range cur.Ancillas {
		targets, ok := reconstructionTargets(cur, a, horizon)
		if !ok {
			continue
		}
		out = append(out, detector(a.Pos, targets...))
	}
	return out, nil
}

// cornersReset reports whether every corner data qubit of a was reset this
// round in a's stabilizer basis, making a's first measurement deterministic.
func cornersReset(cur *RoundMeasurements, a AncillaMeasurement, horizon int64) bool {
	if len(a.Corners) == 0 {
		return false
	}
	for _, c := range a.Corners {
		if manhattan(a.Pos, c) > horizon {
			return false
		}
		if basis, ok := cur.Resets[c]; !ok || basis != a.Basis {
			return false
		}
	}
	return true
}

// reconstructionTargets assembles the record targets reconstructing a's
// stabilizer from this round's data readout: the ancilla measurement plus
// every corner's data measurement, all in a's basis.
func reconstructionTargets(cur *RoundMeasurements, a AncillaMeasurement, horizon int64) ([]stim.GateTarget, bool) {
	if len(a.Corners) == 0 || len(cur.Data) == 0 {
		return nil, false
	}
	targets := []stim.GateTarget{stim.Rec(a.Index - cur.Total)}
	for _, c := range a.Corners {
		if manhattan(a.Pos, c) > horizon {
			return nil, false
		}
		d, ok := cur.Data[c]
		if !ok || d.Basis != a.Basis {
			return nil, false
		}
		targets = append(targets, stim.Rec(d.Index-cur.Total))
	}
	sort.Slice(targets[1:], func(i, j int) bool {
		return targets[1+i].Value < targets[1+j].Value
	})
	return targets, true
}

func detector(pos grid.Position2D, targets ...stim.GateTarget) stim.Instruction {
	return stim.NewInstruction("DETECTOR", targets, float64(pos.X), float64(pos.Y), 0)
}

func manhattan(a, b grid.Position2D) int64 {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
