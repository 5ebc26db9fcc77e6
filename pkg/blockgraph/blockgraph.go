// Package blockgraph models the compiler's input: cubes and pipes placed on
// the 3D integer lattice, each carrying a kind string, before any lowering
// to blocks and layers.
package blockgraph

import (
	"sort"

	"github.com/topostim/topostim/pkg/convention"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
)

// Cube is one placed cube.
type Cube struct {
	Position grid.Position3D
	Kind     convention.Kind
}

// Pipe is one placed pipe between two neighboring cubes, endpoints in
// ascending order.
type Pipe struct {
	Source, Sink grid.Position3D
	Kind         convention.Kind
}

// BlockGraph is a named arrangement of cubes and pipes. Mutations validate
// eagerly: a graph that was built without errors is structurally sound.
type BlockGraph struct {
	name  string
	cubes map[grid.Position3D]convention.Kind
	pipes map[grid.LayoutPosition3D]Pipe
}

// New returns an empty block graph.
func New(name string) *BlockGraph {
	return &BlockGraph{
		name:  name,
		cubes: make(map[grid.Position3D]convention.Kind),
		pipes: make(map[grid.LayoutPosition3D]Pipe),
	}
}

// Name returns the graph's name.
func (g *BlockGraph) Name() string { return g.name }

// NumCubes returns the number of cubes.
func (g *BlockGraph) NumCubes() int { return len(g.cubes) }

// NumPipes returns the number of pipes.
func (g *BlockGraph) NumPipes() int { return len(g.pipes) }

// AddCube places a cube. The kind must be syntactically valid and must not
// name a pipe; the position must be free.
func (g *BlockGraph) AddCube(p grid.Position3D, kind convention.Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	if kind.IsPipe() {
		return errors.New(errors.ErrCodeInvalidInput, "kind %q names a pipe, not a cube", kind)
	}
	if _, ok := g.cubes[p]; ok {
		return errors.New(errors.ErrCodeOccupiedPosition, "a cube already exists at %s", p)
	}
	g.cubes[p] = kind
	return nil
}

// AddPipe places a pipe between the cubes at u and v, normalizing the
// endpoint order. An empty kind is filled in from the source cube's kind
// with the pipe's axis letter replaced by O.
func (g *BlockGraph) AddPipe(u, v grid.Position3D, kind convention.Kind) error {
	if !u.Less(v) {
		u, v = v, u
	}
	pos, err := grid.PipeLayoutPosition3D(u, v)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidJunction, "invalid pipe endpoints")
	}
	srcKind, ok := g.cubes[u]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no cube at pipe endpoint %s", u)
	}
	if _, ok := g.cubes[v]; !ok {
		return errors.New(errors.ErrCodeNotFound, "no cube at pipe endpoint %s", v)
	}
	if _, ok := g.pipes[pos]; ok {
		return errors.New(errors.ErrCodeOccupiedPosition, "a pipe between %s and %s already exists", u, v)
	}

	if kind == "" {
		direction, err := u.DirectionTo(v)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidJunction, "invalid pipe endpoints")
		}
		kind = defaultPipeKind(srcKind, direction.Direction)
	}
	if err := kind.Validate(); err != nil {
		return err
	}
	if _, err := kind.PipeAxis(); err != nil {
		return err
	}

	g.pipes[pos] = Pipe{Source: u, Sink: v, Kind: kind}
	return nil
}

// defaultPipeKind derives a pipe kind from the source cube's kind by opening
// the wall on the pipe's axis.
func defaultPipeKind(cube convention.Kind, axis grid.Direction) convention.Kind {
	out := []byte(cube)
	out[int(axis)] = 'O'
	return convention.Kind(out)
}

// Cubes returns all cubes in position order.
func (g *BlockGraph) Cubes() []Cube {
	out := make([]Cube, 0, len(g.cubes))
	for p, kind := range g.cubes {
		out = append(out, Cube{Position: p, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position.Less(out[j].Position) })
	return out
}

// Pipes returns all pipes, ordered by source then sink position.
func (g *BlockGraph) Pipes() []Pipe {
	out := make([]Pipe, 0, len(g.pipes))
	for _, p := range g.pipes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source.Less(out[j].Source)
		}
		return out[i].Sink.Less(out[j].Sink)
	})
	return out
}

// Validate checks global soundness beyond what the mutators enforce.
func (g *BlockGraph) Validate() error {
	if len(g.cubes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "block graph %q has no cubes", g.name)
	}
	return nil
}
