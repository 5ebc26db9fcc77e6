package compile

import (
	"github.com/topostim/topostim/pkg/stim"
)

// Gate classes for noise placement. The annotator is deliberately simple:
// a uniform depolarizing channel after every noisy gate and before every
// measurement. Anything fancier (biased noise, idling noise) belongs in a
// dedicated noise model, not here.
var (
	singleQubitNoisy = map[string]bool{
		"R": true, "RX": true, "RY": true,
		"H": true, "S": true, "X": true, "Y": true, "Z": true,
	}
	twoQubitNoisy = map[string]bool{
		"CX": true, "CY": true, "CZ": true,
	}
)

// WithDepolarizingNoise returns a copy of the circuit with depolarizing
// noise of strength p applied: DEPOLARIZE1 after single-qubit gates and
// resets, DEPOLARIZE2 after two-qubit gates, and X_ERROR before
// measurements. The inserted channels append nothing to the measurement
// record, so detector and observable offsets stay valid.
func WithDepolarizingNoise(c *stim.Circuit, p float64) *stim.Circuit {
	noisy := stim.NewCircuit()
	for _, op := range c.Operations() {
		switch v := op.(type) {
		case stim.Instruction:
			appendNoisy(noisy, v, p)
		case *stim.RepeatBlock:
			noisy.AppendRepeat(v.Repetitions, WithDepolarizingNoise(v.Body, p))
		}
	}
	return noisy
}

func appendNoisy(c *stim.Circuit, ins stim.Instruction, p float64) {
	switch {
	case ins.IsMeasurement():
		c.Append("X_ERROR", ins.Targets, p)
		c.AppendInstruction(ins)
	case singleQubitNoisy[ins.Name]:
		c.AppendInstruction(ins)
		c.Append("DEPOLARIZE1", ins.Targets, p)
	case twoQubitNoisy[ins.Name]:
		c.AppendInstruction(ins)
		c.Append("DEPOLARIZE2", ins.Targets, p)
	default:
		c.AppendInstruction(ins)
	}
}
