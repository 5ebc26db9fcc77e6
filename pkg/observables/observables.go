// Package observables builds OBSERVABLE_INCLUDE annotations from abstract
// correlation-surface descriptions.
//
// An abstract observable names a logical operator's readout basis; the
// builder resolves it against the final data readout to the measurement
// record of one representative support line: a horizontal row of data qubits
// for a Z logical, a vertical column for an X logical.
package observables

import (
	"fmt"
	"sort"

	"github.com/topostim/topostim/pkg/detectors"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/stim"
)

// Abstract describes one logical observable before it is resolved against a
// concrete circuit.
type Abstract struct {
	// Index is the observable's index in the emitted circuit.
	Index int
	// Basis is the readout basis of the logical operator.
	Basis rpng.Basis
}

func (a Abstract) String() string {
	return fmt.Sprintf("observable %d (%c)", a.Index, a.Basis)
}

// Build resolves the abstract observable against the final round's data
// readout, returning the OBSERVABLE_INCLUDE instruction covering its support
// line. Fails when the readout contains no data measurement in the
// observable's basis.
func Build(a Abstract, final *detectors.RoundMeasurements) (stim.Instruction, error) {
	if a.Basis == rpng.BasisY {
		return stim.Instruction{}, errors.New(errors.ErrCodeUnsupported,
			"Y-basis logical observables are not supported")
	}

	support := supportLine(a.Basis, final)
	if len(support) == 0 {
		return stim.Instruction{}, errors.New(errors.ErrCodeNotFound,
			"the final readout has no %c-basis data measurements to carry %s", a.Basis, a)
	}

	targets := make([]stim.GateTarget, len(support))
	for i, m := range support {
		targets[i] = stim.Rec(m.Index - final.Total)
	}
	return stim.NewInstruction("OBSERVABLE_INCLUDE", targets, float64(a.Index)), nil
}

// supportLine picks the representative support of the logical operator: the
// topmost row of basis-matching data measurements for Z, the leftmost column
// for X. Any single boundary-to-boundary line carries the same logical
// operator; the extremal one is canonical.
func supportLine(basis rpng.Basis, final *detectors.RoundMeasurements) []detectors.DataMeasurement {
	matching := make([]detectors.DataMeasurement, 0, len(final.Data))
	for _, m := range final.Data {
		if m.Basis == basis {
			matching = append(matching, m)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	line := func(m detectors.DataMeasurement) int64 {
		if basis == rpng.BasisZ {
			return m.Pos.Y
		}
		return m.Pos.X
	}
	extremal := line(matching[0])
	for _, m := range matching[1:] {
		if line(m) < extremal {
			extremal = line(m)
		}
	}

	support := matching[:0]
	for _, m := range matching {
		if line(m) == extremal {
			support = append(support, m)
		}
	}
	sort.Slice(support, func(i, j int) bool {
		return support[i].Pos.Less(support[j].Pos)
	})
	return support
}
