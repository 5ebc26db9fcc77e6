package rpng

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
)

// Gate times inside one plaquette round. Two-qubit gates occupy slots
// 1..maxGateTime as dictated by each corner's N field; reset and measurement
// bracket them.
const (
	ResetTime   = 0
	MeasureTime = maxGateTime + 1
	// TimesPerRound is the number of schedule slots one plaquette round uses.
	TimesPerRound = MeasureTime + 1
)

// TimedGate is one gate of a translated plaquette, scheduled at a slot within
// the round and addressing qubits by grid position. Qubit indices are
// assigned later, when a whole layer is assembled against a qubit map.
type TimedGate struct {
	Time    int
	Name    string
	Targets []grid.Position2D
}

// Translator turns a plaquette description at a concrete ancilla position
// into a finite list of timed gates. It is an external collaborator of the
// layer compiler: implementations may support richer gate sets than the
// default CSS translation.
type Translator interface {
	Translate(d Description, ancilla grid.Position2D) ([]TimedGate, error)
}

// CornerOffsets lists the data-qubit corner positions relative to a
// plaquette's ancilla, in description order (top-left, top-right,
// bottom-left, bottom-right).
var CornerOffsets = [4]grid.Position2D{
	{X: -1, Y: -1},
	{X: 1, Y: -1},
	{X: -1, Y: 1},
	{X: 1, Y: 1},
}

// CSSTranslator translates CSS (single-basis X or Z) plaquettes into the
// standard ancilla-mediated measurement fragment:
//
//   - slot 0: ancilla reset in the stabilizer basis (RX for X, R for Z)
//     together with any data-qubit resets the corners request,
//   - slots 1..4: one CX per active corner at its N time; X stabilizers
//     use the ancilla as control, Z stabilizers as target,
//   - slot 5: ancilla measurement in the stabilizer basis together with any
//     data-qubit measurements the corners request.
type CSSTranslator struct{}

// Translate implements [Translator]. Non-CSS descriptions (mixed or Y bases)
// are reported as unsupported rather than approximated.
func (CSSTranslator) Translate(d Description, ancilla grid.Position2D) ([]TimedGate, error) {
	if d.IsEmpty() {
		return nil, nil
	}
	basis, ok := d.StabilizerBasis()
	if !ok || basis == BasisY {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"plaquette %q is not a single-basis CSS stabilizer", d)
	}

	var gates []TimedGate

	// Slot 0: resets.
	gates = append(gates, TimedGate{Time: ResetTime, Name: resetName(basis), Targets: []grid.Position2D{ancilla}})
	for i, w := range d.Corners {
		if w.R == None {
			continue
		}
		gates = append(gates, TimedGate{
			Time:    ResetTime,
			Name:    resetName(Basis(w.R)),
			Targets: []grid.Position2D{cornerPosition(ancilla, i)},
		})
	}

	// Slots 1..4: entangling gates.
	for i, w := range d.Corners {
		if w.N == 0 {
			continue
		}
		data := cornerPosition(ancilla, i)
		targets := []grid.Position2D{data, ancilla}
		if basis == BasisX {
			targets = []grid.Position2D{ancilla, data}
		}
		gates = append(gates, TimedGate{Time: w.N, Name: "CX", Targets: targets})
	}

	// Slot 5: measurements.
	gates = append(gates, TimedGate{Time: MeasureTime, Name: measureName(basis), Targets: []grid.Position2D{ancilla}})
	for i, w := range d.Corners {
		if w.G == None {
			continue
		}
		gates = append(gates, TimedGate{
			Time:    MeasureTime,
			Name:    measureName(Basis(w.G)),
			Targets: []grid.Position2D{cornerPosition(ancilla, i)},
		})
	}

	return gates, nil
}

func cornerPosition(ancilla grid.Position2D, corner int) grid.Position2D {
	off := CornerOffsets[corner]
	return grid.Position2D{X: ancilla.X + off.X, Y: ancilla.Y + off.Y}
}

func resetName(b Basis) string {
	if b == BasisX {
		return "RX"
	}
	return "R"
}

func measureName(b Basis) string {
	if b == BasisX {
		return "MX"
	}
	return "M"
}
