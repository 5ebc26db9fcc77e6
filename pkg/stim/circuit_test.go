package stim

import (
	"strings"
	"testing"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
)

func TestCircuit_TextFormat(t *testing.T) {
	c := NewCircuit()
	c.Append("R", []GateTarget{Qubit(0), Qubit(1)})
	c.AppendTick()
	c.Append("CX", []GateTarget{Qubit(0), Qubit(1)})
	c.Append("M", []GateTarget{Qubit(1)})
	c.Append("DETECTOR", []GateTarget{Rec(-1)}, 0, 1, 0)

	want := strings.Join([]string{
		"R 0 1",
		"TICK",
		"CX 0 1",
		"M 1",
		"DETECTOR(0, 1, 0) rec[-1]",
		"",
	}, "\n")
	if got := c.String(); got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCircuit_RepeatBlockFormat(t *testing.T) {
	body := NewCircuit()
	body.Append("H", []GateTarget{Qubit(2)})
	body.Append("M", []GateTarget{Qubit(2)})

	c := NewCircuit()
	c.AppendRepeat(5, body)

	want := strings.Join([]string{
		"REPEAT 5 {",
		"    H 2",
		"    M 2",
		"}",
		"",
	}, "\n")
	if got := c.String(); got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCircuit_AppendRepeatSkipsDegenerate(t *testing.T) {
	c := NewCircuit()
	c.AppendRepeat(0, singleMeasurement())
	c.AppendRepeat(3, NewCircuit())
	if !c.IsEmpty() {
		t.Error("degenerate repeat blocks must not be emitted")
	}
}

func singleMeasurement() *Circuit {
	c := NewCircuit()
	c.Append("M", []GateTarget{Qubit(0)})
	return c
}

func TestCircuit_NumMeasurementsExpandsRepeats(t *testing.T) {
	body := NewCircuit()
	body.Append("M", []GateTarget{Qubit(0), Qubit(1)})
	body.Append("MX", []GateTarget{Qubit(2)})

	c := NewCircuit()
	c.Append("MR", []GateTarget{Qubit(3)})
	c.AppendRepeat(4, body)

	if got, want := c.NumMeasurements(), int64(1+4*3); got != want {
		t.Errorf("NumMeasurements() = %d, want %d", got, want)
	}
}

func TestCircuit_CountInstructions(t *testing.T) {
	body := NewCircuit()
	body.Append("DETECTOR", []GateTarget{Rec(-1)}, 0, 0, 0)

	c := NewCircuit()
	c.Append("DETECTOR", []GateTarget{Rec(-1)}, 1, 1, 0)
	c.AppendRepeat(3, body)

	if got, want := c.CountInstructions("DETECTOR"), int64(4); got != want {
		t.Errorf("CountInstructions(DETECTOR) = %d, want %d", got, want)
	}
}

func TestCircuit_WithRemappedQubits(t *testing.T) {
	body := NewCircuit()
	body.Append("CX", []GateTarget{Qubit(0), Qubit(1)})

	c := NewCircuit()
	c.Append("R", []GateTarget{Qubit(0), Qubit(1)})
	c.AppendRepeat(2, body)
	c.Append("DETECTOR", []GateTarget{Rec(-1)}, 0, 0)

	remapped, err := c.WithRemappedQubits(map[int]int{0: 10, 1: 11})
	if err != nil {
		t.Fatalf("WithRemappedQubits failed: %v", err)
	}

	want := strings.Join([]string{
		"R 10 11",
		"REPEAT 2 {",
		"    CX 10 11",
		"}",
		"DETECTOR(0, 0) rec[-1]",
		"",
	}, "\n")
	if got := remapped.String(); got != want {
		t.Errorf("remapped circuit =\n%s\nwant:\n%s", got, want)
	}

	// The original is untouched.
	if !strings.HasPrefix(c.String(), "R 0 1") {
		t.Error("remapping must not mutate the original circuit")
	}
}

func TestCircuit_WithRemappedQubitsIsTotal(t *testing.T) {
	c := NewCircuit()
	c.Append("H", []GateTarget{Qubit(7)})

	_, err := c.WithRemappedQubits(map[int]int{0: 1})
	if !errors.Is(err, errors.ErrCodeQubitNotFound) {
		t.Errorf("partial remap error = %v, want QUBIT_NOT_FOUND", err)
	}
}

func TestCircuit_UsedQubits(t *testing.T) {
	body := NewCircuit()
	body.Append("M", []GateTarget{Qubit(5)})

	c := NewCircuit()
	c.Append("CX", []GateTarget{Qubit(0), Qubit(3)})
	c.AppendRepeat(2, body)

	used := c.UsedQubits()
	for _, q := range []int{0, 3, 5} {
		if !used[q] {
			t.Errorf("qubit %d should be reported as used", q)
		}
	}
	if len(used) != 3 {
		t.Errorf("UsedQubits() has %d entries, want 3", len(used))
	}
}

func TestQubitMap_DenseSortedIndexing(t *testing.T) {
	m := QubitMapFromPositions([]grid.Position2D{
		{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 0}, {X: 0, Y: 1},
	})
	if got, want := m.Len(), 3; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	wantOrder := []grid.Position2D{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 0}}
	for i, p := range wantOrder {
		idx, ok := m.Index(p)
		if !ok || idx != i {
			t.Errorf("Index(%v) = %d, %v, want %d, true", p, idx, ok, i)
		}
	}
}

func TestQubitMap_AddRejectsBijectionViolations(t *testing.T) {
	m := NewQubitMap()
	if err := m.Add(0, grid.Position2D{X: 1, Y: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add(0, grid.Position2D{X: 2, Y: 2}); err == nil {
		t.Error("duplicate index must fail")
	}
	if err := m.Add(1, grid.Position2D{X: 1, Y: 1}); err == nil {
		t.Error("duplicate position must fail")
	}
}

func TestQubitMap_MergedIsSuperset(t *testing.T) {
	a := QubitMapFromPositions([]grid.Position2D{{X: 0, Y: 0}, {X: 1, Y: 1}})
	b := QubitMapFromPositions([]grid.Position2D{{X: 1, Y: 1}, {X: 4, Y: 0}})

	global := MergedQubitMap(a, b)
	if !global.ContainsAllOf(a) || !global.ContainsAllOf(b) {
		t.Fatal("merged map must contain every input position")
	}
	if got, want := global.Len(), 3; got != want {
		t.Errorf("merged Len() = %d, want %d", got, want)
	}

	remap, err := b.RemappingTo(global)
	if err != nil {
		t.Fatalf("RemappingTo failed: %v", err)
	}
	if got, want := len(remap), b.Len(); got != want {
		t.Errorf("remapping covers %d qubits, want %d", got, want)
	}
}

func TestQubitMap_RemappingToRejectsMissing(t *testing.T) {
	local := QubitMapFromPositions([]grid.Position2D{{X: 9, Y: 9}})
	global := QubitMapFromPositions([]grid.Position2D{{X: 0, Y: 0}})
	if _, err := local.RemappingTo(global); !errors.Is(err, errors.ErrCodeQubitNotFound) {
		t.Errorf("RemappingTo error = %v, want QUBIT_NOT_FOUND", err)
	}
}

func TestQubitMap_QubitCoordsInstructions(t *testing.T) {
	m := QubitMapFromPositions([]grid.Position2D{{X: 1, Y: 2}, {X: 0, Y: 3}})
	instrs := m.QubitCoordsInstructions()
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if got, want := instrs[0].String(), "QUBIT_COORDS(0, 3) 0"; got != want {
		t.Errorf("first = %q, want %q", got, want)
	}
	if got, want := instrs[1].String(), "QUBIT_COORDS(1, 2) 1"; got != want {
		t.Errorf("second = %q, want %q", got, want)
	}
}
