package stim

import (
	"strings"
)

// Operation is one entry in a circuit body: a plain [Instruction] or a
// [RepeatBlock]. The set is closed; the compiler never emits anything else.
type Operation interface {
	// NumMeasurements returns how many measurement-record entries the
	// operation appends, counting repeat blocks multiplicatively.
	NumMeasurements() int64

	appendText(b *strings.Builder, indent string)
	remappedOp(mapping map[int]int) (Operation, error)
}

var (
	_ Operation = Instruction{}
	_ Operation = (*RepeatBlock)(nil)
)

func (i Instruction) remappedOp(mapping map[int]int) (Operation, error) {
	return i.remapped(mapping)
}

// RepeatBlock is a native stim REPEAT block: a body executed a fixed number
// of times.
type RepeatBlock struct {
	Repetitions int64
	Body        *Circuit
}

// NumMeasurements returns the body's measurement count times the repetition
// count.
func (r *RepeatBlock) NumMeasurements() int64 {
	return r.Repetitions * r.Body.NumMeasurements()
}

func (r *RepeatBlock) appendText(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteString("REPEAT ")
	b.WriteString(formatArg(float64(r.Repetitions)))
	b.WriteString(" {\n")
	for _, op := range r.Body.ops {
		op.appendText(b, indent+"    ")
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}

func (r *RepeatBlock) remappedOp(mapping map[int]int) (Operation, error) {
	body, err := r.Body.WithRemappedQubits(mapping)
	if err != nil {
		return nil, err
	}
	return &RepeatBlock{Repetitions: r.Repetitions, Body: body}, nil
}

// Circuit is an ordered sequence of operations. The zero value is not usable;
// use [NewCircuit].
type Circuit struct {
	ops []Operation
}

// NewCircuit returns an empty circuit.
func NewCircuit() *Circuit {
	return &Circuit{}
}

// Append adds a plain instruction to the circuit.
func (c *Circuit) Append(name string, targets []GateTarget, args ...float64) {
	c.ops = append(c.ops, NewInstruction(name, targets, args...))
}

// AppendInstruction adds an already-built instruction.
func (c *Circuit) AppendInstruction(i Instruction) {
	c.ops = append(c.ops, i)
}

// AppendRepeat wraps body in a native REPEAT block and appends it.
// A repetition count below one is never emitted.
func (c *Circuit) AppendRepeat(repetitions int64, body *Circuit) {
	if repetitions <= 0 || body.IsEmpty() {
		return
	}
	c.ops = append(c.ops, &RepeatBlock{Repetitions: repetitions, Body: body})
}

// AppendCircuit appends all of other's operations to c.
func (c *Circuit) AppendCircuit(other *Circuit) {
	c.ops = append(c.ops, other.ops...)
}

// AppendTick appends a TICK scheduling barrier.
func (c *Circuit) AppendTick() {
	c.Append("TICK", nil)
}

// Operations returns the circuit body. The returned slice must not be
// modified.
func (c *Circuit) Operations() []Operation {
	return c.ops
}

// IsEmpty reports whether the circuit has no operations.
func (c *Circuit) IsEmpty() bool {
	return len(c.ops) == 0
}

// NumMeasurements returns the total number of measurement-record entries the
// circuit appends, expanding repeat blocks multiplicatively.
func (c *Circuit) NumMeasurements() int64 {
	var n int64
	for _, op := range c.ops {
		n += op.NumMeasurements()
	}
	return n
}

// CountInstructions returns how many instructions with the given name the
// circuit contains, expanding repeat blocks multiplicatively.
func (c *Circuit) CountInstructions(name string) int64 {
	var n int64
	for _, op := range c.ops {
		switch o := op.(type) {
		case Instruction:
			if o.Name == name {
				n++
			}
		case *RepeatBlock:
			n += o.Repetitions * o.Body.CountInstructions(name)
		}
	}
	return n
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	out := NewCircuit()
	for _, op := range c.ops {
		switch o := op.(type) {
		case Instruction:
			cp := NewInstruction(o.Name, append([]GateTarget(nil), o.Targets...), o.Args...)
			out.ops = append(out.ops, cp)
		case *RepeatBlock:
			out.ops = append(out.ops, &RepeatBlock{Repetitions: o.Repetitions, Body: o.Body.Copy()})
		}
	}
	return out
}

// WithRemappedQubits returns a copy of the circuit with every qubit target
// rewritten through the mapping. The mapping must be total over the qubits
// the circuit uses; a missing entry fails with a QUBIT_NOT_FOUND error and no
// partial circuit is returned.
func (c *Circuit) WithRemappedQubits(mapping map[int]int) (*Circuit, error) {
	out := NewCircuit()
	for _, op := range c.ops {
		remapped, err := op.remappedOp(mapping)
		if err != nil {
			return nil, err
		}
		out.ops = append(out.ops, remapped)
	}
	return out, nil
}

// UsedQubits returns the set of qubit indices the circuit addresses,
// including inside repeat blocks.
func (c *Circuit) UsedQubits() map[int]bool {
	used := make(map[int]bool)
	c.collectQubits(used)
	return used
}

func (c *Circuit) collectQubits(used map[int]bool) {
	for _, op := range c.ops {
		switch o := op.(type) {
		case Instruction:
			for _, t := range o.Targets {
				if t.Kind == TargetQubit {
					used[t.Value] = true
				}
			}
		case *RepeatBlock:
			o.Body.collectQubits(used)
		}
	}
}

// String renders the circuit in stim's text format.
func (c *Circuit) String() string {
	var b strings.Builder
	for _, op := range c.ops {
		op.appendText(&b, "")
	}
	return b.String()
}
