// Package stim models the stim circuit wire format the compiler emits into.
//
// The package is deliberately small: it is an emission target, not a
// simulator. It supports the instruction set the compiler produces - native
// reset/measurement/one- and two-qubit gates, DETECTOR and OBSERVABLE_INCLUDE
// annotations, QUBIT_COORDS declarations, SHIFT_COORDS time advances, TICK
// scheduling barriers and native REPEAT blocks - together with the
// measurement-record bookkeeping and qubit-index remapping the final assembly
// pass needs.
package stim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/topostim/topostim/pkg/errors"
)

// TargetKind distinguishes the two target flavors an instruction can take.
type TargetKind int

const (
	// TargetQubit addresses a qubit by its circuit-local index.
	TargetQubit TargetKind = iota
	// TargetRec addresses a prior measurement by negative record offset.
	TargetRec
)

// GateTarget is a single instruction target: a qubit index or a measurement
// record lookback. Comparable value type.
type GateTarget struct {
	Kind  TargetKind
	Value int
}

// Qubit returns a qubit target for the given index.
func Qubit(index int) GateTarget {
	return GateTarget{Kind: TargetQubit, Value: index}
}

// Rec returns a measurement-record target. The offset is relative to the end
// of the measurement record and must be negative (stim convention: rec[-1] is
// the most recent measurement).
func Rec(offset int) GateTarget {
	return GateTarget{Kind: TargetRec, Value: offset}
}

func (t GateTarget) String() string {
	if t.Kind == TargetRec {
		return fmt.Sprintf("rec[%d]", t.Value)
	}
	return strconv.Itoa(t.Value)
}

// Instruction is one stim circuit instruction: a name, optional parenthesized
// arguments, and targets.
type Instruction struct {
	Name    string
	Args    []float64
	Targets []GateTarget
}

// NewInstruction builds an instruction.
func NewInstruction(name string, targets []GateTarget, args ...float64) Instruction {
	return Instruction{Name: name, Args: args, Targets: targets}
}

// measurementCounts maps each measuring instruction name to how many record
// entries it appends per target.
var measurementNames = map[string]bool{
	"M": true, "MX": true, "MY": true, "MZ": true,
	"MR": true, "MRX": true, "MRY": true, "MRZ": true,
}

// IsMeasurement reports whether the instruction appends to the measurement
// record.
func (i Instruction) IsMeasurement() bool {
	return measurementNames[i.Name]
}

// NumMeasurements returns the number of measurement-record entries this
// instruction appends.
func (i Instruction) NumMeasurements() int64 {
	if !i.IsMeasurement() {
		return 0
	}
	return int64(len(i.Targets))
}

// remapped returns a copy of the instruction with qubit targets rewritten
// through the mapping. Remapping is total: a qubit index absent from the
// mapping is a fatal lookup failure (QUBIT_NOT_FOUND), never silently kept.
func (i Instruction) remapped(mapping map[int]int) (Instruction, error) {
	out := Instruction{Name: i.Name, Args: append([]float64(nil), i.Args...)}
	out.Targets = make([]GateTarget, len(i.Targets))
	for j, t := range i.Targets {
		if t.Kind != TargetQubit {
			out.Targets[j] = t
			continue
		}
		idx, ok := mapping[t.Value]
		if !ok {
			return Instruction{}, errors.New(errors.ErrCodeQubitNotFound,
				"qubit %d has no entry in the remapping (instruction %s)", t.Value, i.Name)
		}
		out.Targets[j] = Qubit(idx)
	}
	return out, nil
}

func (i Instruction) appendText(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteString(i.Name)
	if len(i.Args) > 0 {
		b.WriteByte('(')
		for j, a := range i.Args {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatArg(a))
		}
		b.WriteByte(')')
	}
	for _, t := range i.Targets {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	b.WriteByte('\n')
}

// formatArg renders an argument the way stim prints it: integers without a
// decimal point.
func formatArg(a float64) string {
	if a == float64(int64(a)) {
		return strconv.FormatInt(int64(a), 10)
	}
	return strconv.FormatFloat(a, 'g', -1, 64)
}

func (i Instruction) String() string {
	var b strings.Builder
	i.appendText(&b, "")
	return strings.TrimSuffix(b.String(), "\n")
}
