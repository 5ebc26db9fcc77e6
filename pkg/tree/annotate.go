package tree

import (
	"github.com/topostim/topostim/pkg/detectors"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/observables"
)

// AnnotateCircuits realizes every leaf's circuit fragment at scale k. This
// pass must run before any other annotation pass for the same k.
func (t *Tree) AnnotateCircuits(k int64) error {
	if k < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "scaling parameter k must be >= 1, got %d", k)
	}
	for _, leaf := range t.Leaves() {
		ann, err := t.realizeLayout(leaf.layout, k)
		if err != nil {
			return err
		}
		leaf.annotations[k] = ann
	}
	return nil
}

// AnnotateDetectors computes every leaf's detector instructions at scale k,
// threading the measurement record through the leaves in temporal order.
//
// Inside a repetition the body is annotated once, against the record that
// precedes the whole repetition. This is sound when every iteration is
// preceded by a round measuring the same stabilizers at the same record
// offsets, which the graph's block structure guarantees.
func (t *Tree) AnnotateDetectors(k int64, computer detectors.Computer, radius int) error {
	_, err := t.annotateDetectors(t.root, nil, k, computer, radius)
	return err
}

func (t *Tree) annotateDetectors(
	n *Node,
	prev *detectors.RoundMeasurements,
	k int64,
	computer detectors.Computer,
	radius int,
) (*detectors.RoundMeasurements, error) {
	switch n.kind {
	case leafNode:
		ann, err := n.AnnotationAt(k)
		if err != nil {
			return nil, err
		}
		dets, err := computer.Compute(prev, ann.Measurements, radius)
		if err != nil {
			return nil, err
		}
		ann.Detectors = dets
		return ann.Measurements, nil
	case repeatNode:
		return t.annotateDetectors(n.children[0], prev, k, computer, radius)
	default:
		record := prev
		for _, child := range n.children {
			var err error
			record, err = t.annotateDetectors(child, record, k, computer, radius)
			if err != nil {
				return nil, err
			}
		}
		return record, nil
	}
}

// AnnotateObservables resolves the abstract observables against the final
// leaf's readout at scale k and attaches the resulting OBSERVABLE_INCLUDE
// instructions there.
func (t *Tree) AnnotateObservables(k int64, abstracts []observables.Abstract) error {
	leaves := t.Leaves()
	last := leaves[len(leaves)-1]
	ann, err := last.AnnotationAt(k)
	if err != nil {
		return err
	}
	ann.Observables = ann.Observables[:0]
	for _, a := range abstracts {
		instr, err := observables.Build(a, ann.Measurements)
		if err != nil {
			return err
		}
		ann.Observables = append(ann.Observables, instr)
	}
	return nil
}
