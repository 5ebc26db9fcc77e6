package tree

import (
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/stim"
)

// GlobalQubitMap merges every leaf's local qubit map at scale k into one
// dense global map. The result is a superset of each leaf's map by
// construction, which makes every leaf remapping total.
func (t *Tree) GlobalQubitMap(k int64) (*stim.QubitMap, error) {
	leaves := t.Leaves()
	maps := make([]*stim.QubitMap, len(leaves))
	for i, leaf := range leaves {
		ann, err := leaf.AnnotationAt(k)
		if err != nil {
			return nil, err
		}
		maps[i] = ann.QubitMap
	}
	return stim.MergedQubitMap(maps...), nil
}

// GenerateCircuit assembles the final circuit at scale k against the given
// global qubit map. Every leaf must already carry a circuit annotation for
// k; detectors and observables are spliced in where present.
func (t *Tree) GenerateCircuit(k int64, global *stim.QubitMap) (*stim.Circuit, error) {
	return t.generate(t.root, k, global)
}

func (t *Tree) generate(n *Node, k int64, global *stim.QubitMap) (*stim.Circuit, error) {
	switch n.kind {
	case leafNode:
		return t.generateLeaf(n, k, global)
	case repeatNode:
		body, err := t.generate(n.children[0], k, global)
		if err != nil {
			return nil, err
		}
		body.AppendTick()
		repetitions := n.repetitions.IntegerEval(k)
		if repetitions < 1 {
			return nil, errors.New(errors.ErrCodeInvalidSchedule,
				"repetition count %s evaluates to %d at k=%d", n.repetitions, repetitions, k)
		}
		out := stim.NewCircuit()
		out.AppendTick()
		out.AppendRepeat(repetitions, body)
		return out, nil
	default:
		out := stim.NewCircuit()
		for i, child := range n.children {
			c, err := t.generate(child, k, global)
			if err != nil {
				return nil, err
			}
			// A barrier separates consecutive non-repeated children; repeat
			// blocks carry their own barriers on both sides.
			if i > 0 && child.kind != repeatNode && n.children[i-1].kind != repeatNode {
				out.AppendTick()
			}
			out.AppendCircuit(c)
		}
		return out, nil
	}
}

func (t *Tree) generateLeaf(n *Node, k int64, global *stim.QubitMap) (*stim.Circuit, error) {
	ann, err := n.AnnotationAt(k)
	if err != nil {
		return nil, err
	}
	mapping, err := ann.QubitMap.RemappingTo(global)
	if err != nil {
		return nil, err
	}
	out, err := ann.Circuit.WithRemappedQubits(mapping)
	if err != nil {
		return nil, err
	}
	for _, d := range ann.Detectors {
		out.AppendInstruction(d)
	}
	for _, o := range ann.Observables {
		out.AppendInstruction(o)
	}
	out.Append("SHIFT_COORDS", nil, 0, 0, 1)
	return out, nil
}
