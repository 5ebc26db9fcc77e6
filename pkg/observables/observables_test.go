package observables

import (
	"testing"

	"github.com/topostim/topostim/pkg/detectors"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/stim"
)

// finalReadout builds a 3x3 data-qubit readout in the given basis, measured
// row-major starting at record index 0.
func finalReadout(basis rpng.Basis) *detectors.RoundMeasurements {
	final := &detectors.RoundMeasurements{Data: map[grid.Position2D]detectors.DataMeasurement{}}
	idx := 0
	for r := int64(0); r < 3; r++ {
		for c := int64(0); c < 3; c++ {
			pos := grid.Position2D{X: 1 + 2*c, Y: 1 + 2*r}
			final.Data[pos] = detectors.DataMeasurement{Pos: pos, Basis: basis, Index: idx}
			idx++
		}
	}
	final.Total = idx
	return final
}

func TestBuild_ZObservableCoversTopRow(t *testing.T) {
	instr, err := Build(Abstract{Index: 0, Basis: rpng.BasisZ}, finalReadout(rpng.BasisZ))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if instr.Name != "OBSERVABLE_INCLUDE" {
		t.Errorf("instruction name = %q, want OBSERVABLE_INCLUDE", instr.Name)
	}
	if len(instr.Args) != 1 || instr.Args[0] != 0 {
		t.Errorf("args = %v, want [0]", instr.Args)
	}
	// Top row: indices 0, 1, 2 of 9 measurements.
	want := []stim.GateTarget{stim.Rec(-9), stim.Rec(-8), stim.Rec(-7)}
	if len(instr.Targets) != len(want) {
		t.Fatalf("got %d targets, want %d", len(instr.Targets), len(want))
	}
	for i, tg := range instr.Targets {
		if tg != want[i] {
			t.Errorf("target %d = %v, want %v", i, tg, want[i])
		}
	}
}

func TestBuild_XObservableCoversLeftColumn(t *testing.T) {
	instr, err := Build(Abstract{Index: 1, Basis: rpng.BasisX}, finalReadout(rpng.BasisX))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(instr.Args) != 1 || instr.Args[0] != 1 {
		t.Errorf("args = %v, want [1]", instr.Args)
	}
	// Left column: indices 0, 3, 6 of 9 measurements.
	want := []stim.GateTarget{stim.Rec(-9), stim.Rec(-6), stim.Rec(-3)}
	for i, tg := range instr.Targets {
		if tg != want[i] {
			t.Errorf("target %d = %v, want %v", i, tg, want[i])
		}
	}
}

func TestBuild_MissingBasisReadout(t *testing.T) {
	_, err := Build(Abstract{Index: 0, Basis: rpng.BasisX}, finalReadout(rpng.BasisZ))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Build error = %v, want NOT_FOUND", err)
	}
}

func TestBuild_YBasisUnsupported(t *testing.T) {
	_, err := Build(Abstract{Index: 0, Basis: rpng.BasisY}, finalReadout(rpng.BasisZ))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Build error = %v, want UNSUPPORTED", err)
	}
}
