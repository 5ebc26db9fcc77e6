// Package tree builds and drives the layer tree: the recursive
// representation of the fully merged computation that generates the final
// circuit.
//
// A tree is built once from the graph's merged layer stacks, then annotated
// per scaling parameter k (circuit pass, detector pass, observable pass)
// before final assembly. Annotations are keyed by k, so one tree serves any
// number of scales without rebuilding.
package tree

import (
	"github.com/topostim/topostim/pkg/detectors"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/layers"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/scalable"
	"github.com/topostim/topostim/pkg/stim"
)

type nodeKind int

const (
	leafNode nodeKind = iota
	sequenceNode
	repeatNode
)

// Annotation is everything one leaf accumulates for a concrete scaling
// parameter: the realized circuit fragment with its local qubit map, the
// measurement record detector inference works from, and the detector and
// observable instructions to splice in at assembly time.
type Annotation struct {
	Circuit      *stim.Circuit
	QubitMap     *stim.QubitMap
	Measurements *detectors.RoundMeasurements
	Detectors    []stim.Instruction
	Observables  []stim.Instruction
}

// Node is one tree node: a leaf holding a merged layout layer, a sequence,
// or a repetition.
type Node struct {
	kind        nodeKind
	layout      *layers.LayoutLayer
	children    []*Node
	repetitions scalable.LinearFunction
	annotations map[int64]*Annotation
}

// IsLeaf reports whether the node holds a layout layer.
func (n *Node) IsLeaf() bool { return n.kind == leafNode }

// Children returns the node's children. Leaves have none.
func (n *Node) Children() []*Node { return n.children }

// AnnotationAt returns the leaf's annotation for k. Fails with
// ANNOTATION_NOT_FOUND when the circuit pass has not run for k, and for
// non-leaf nodes, which carry no annotations.
func (n *Node) AnnotationAt(k int64) (*Annotation, error) {
	ann, ok := n.annotations[k]
	if !ok {
		return nil, errors.New(errors.ErrCodeAnnotationNotFound,
			"no annotation for k=%d; the circuit pass must run before this one", k)
	}
	return ann, nil
}

// Tree is the layer tree. The translator turns plaquette descriptions into
// gates during the circuit pass.
type Tree struct {
	root       *Node
	translator rpng.Translator
}

// Option configures a tree.
type Option func(*Tree)

// WithTranslator overrides the plaquette translator used by the circuit
// pass. The default is the CSS translation.
func WithTranslator(t rpng.Translator) Option {
	return func(tree *Tree) { tree.translator = t }
}

// New builds a tree from the graph's merged per-depth layer stacks. The root
// is a sequence over every stack slot in temporal order. A raw atomic layer
// (anything that is not a LayoutLayer) reaching the tree means the merge
// pass was skipped, which is fatal.
func New(stacks [][]layers.Layer, opts ...Option) (*Tree, error) {
	t := &Tree{translator: rpng.CSSTranslator{}}
	for _, opt := range opts {
		opt(t)
	}

	var children []*Node
	for _, stack := range stacks {
		for _, l := range stack {
			node, err := classify(l)
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		}
	}
	if len(children) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no layers to build a tree from")
	}
	if len(children) == 1 {
		t.root = children[0]
		return t, nil
	}
	t.root = &Node{kind: sequenceNode, children: children}
	return t, nil
}

func classify(l layers.Layer) (*Node, error) {
	switch v := l.(type) {
	case *layers.LayoutLayer:
		return &Node{kind: leafNode, layout: v, annotations: make(map[int64]*Annotation)}, nil
	case *layers.SequencedLayers:
		children := make([]*Node, len(v.Elements()))
		for i, e := range v.Elements() {
			child, err := classify(e)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return &Node{kind: sequenceNode, children: children}, nil
	case *layers.RepeatedLayer:
		child, err := classify(v.Internal())
		if err != nil {
			return nil, err
		}
		return &Node{kind: repeatNode, children: []*Node{child}, repetitions: v.Repetitions()}, nil
	default:
		return nil, errors.New(errors.ErrCodeInternal,
			"unmerged %T reached the layer tree; layout merging must precede tree construction", l)
	}
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return t.root }

// Leaves returns every leaf in temporal order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.kind == leafNode {
			out = append(out, n)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}
