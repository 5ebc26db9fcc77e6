package topology

import (
	"testing"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/layers"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/scalable"
	"github.com/topostim/topostim/pkg/templates"
)

func plaquetteRound(t *testing.T) *layers.PlaquetteLayer {
	t.Helper()
	l, err := layers.NewPlaquetteLayer(templates.QubitTemplate{}, map[int]rpng.Description{
		templates.IndexTopX:    rpng.MustParse("---- ---- -x3- -x4-").WithCornersDropped(0, 1),
		templates.IndexLeftZ:   rpng.MustParse("---- -z2- ---- -z4-").WithCornersDropped(0, 2),
		templates.IndexBulkX:   rpng.MustParse("-x1- -x2- -x3- -x4-"),
		templates.IndexBulkZ:   rpng.MustParse("-z1- -z3- -z2- -z4-"),
		templates.IndexRightZ:  rpng.MustParse("-z1- ---- -z2- ----").WithCornersDropped(1, 3),
		templates.IndexBottomX: rpng.MustParse("-x1- -x2- ---- ----").WithCornersDropped(2, 3),
	})
	if err != nil {
		t.Fatalf("NewPlaquetteLayer failed: %v", err)
	}
	return l
}

func cubeBlock(t *testing.T) *layers.Block {
	t.Helper()
	round := plaquetteRound(t)
	repeat, err := layers.NewRepeatedLayer(round, scalable.Linear(2, -1))
	if err != nil {
		t.Fatalf("NewRepeatedLayer failed: %v", err)
	}
	b, err := layers.NewBlock(round, repeat, round)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	return b
}

func temporalPipeBlock(t *testing.T) *layers.Block {
	t.Helper()
	round := plaquetteRound(t)
	b, err := layers.NewBlock(round, round)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	return b
}

func TestAddCube_OccupiedPosition(t *testing.T) {
	g := NewGraph()
	p := grid.Position3D{}
	if err := g.AddCube(p, cubeBlock(t)); err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	if err := g.AddCube(p, cubeBlock(t)); !errors.Is(err, errors.ErrCodeOccupiedPosition) {
		t.Errorf("second AddCube error = %v, want OCCUPIED_POSITION", err)
	}
}

func TestAddCube_OutOfRange(t *testing.T) {
	g := NewGraph()
	p := grid.Position3D{X: maxCoordinate}
	if err := g.AddCube(p, cubeBlock(t)); !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Errorf("AddCube error = %v, want INVALID_POSITION", err)
	}
}

func TestAddJunction_Validation(t *testing.T) {
	u := grid.Position3D{}
	v := grid.Position3D{Z: 1}
	far := grid.Position3D{Z: 2}

	tests := []struct {
		name     string
		setup    func(t *testing.T, g *Graph)
		from, to grid.Position3D
		wantCode errors.Code
	}{
		{
			name:     "endpoints not neighbors",
			setup:    func(t *testing.T, g *Graph) {},
			from:     u,
			to:       far,
			wantCode: errors.ErrCodeInvalidJunction,
		},
		{
			name:     "endpoints not ascending",
			setup:    func(t *testing.T, g *Graph) {},
			from:     v,
			to:       u,
			wantCode: errors.ErrCodeInvalidJunction,
		},
		{
			name: "missing endpoint cube",
			setup: func(t *testing.T, g *Graph) {
				if err := g.AddCube(u, cubeBlock(t)); err != nil {
					t.Fatal(err)
				}
			},
			from:     u,
			to:       v,
			wantCode: errors.ErrCodeNotFound,
		},
		{
			name: "duplicate junction",
			setup: func(t *testing.T, g *Graph) {
				for _, p := range []grid.Position3D{u, v} {
					if err := g.AddCube(p, cubeBlock(t)); err != nil {
						t.Fatal(err)
					}
				}
				if err := g.AddJunction(u, v, temporalPipeBlock(t)); err != nil {
					t.Fatal(err)
				}
			},
			from:     u,
			to:       v,
			wantCode: errors.ErrCodeOccupiedPosition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			tt.setup(t, g)
			err := g.AddJunction(tt.from, tt.to, temporalPipeBlock(t))
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("AddJunction error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestAddJunction_TrimsTemporalBordersBeforeInsert(t *testing.T) {
	g := NewGraph()
	u := grid.Position3D{}
	v := grid.Position3D{Z: 1}
	for _, p := range []grid.Position3D{u, v} {
		if err := g.AddCube(p, cubeBlock(t)); err != nil {
			t.Fatalf("AddCube failed: %v", err)
		}
	}
	if err := g.AddJunction(u, v, temporalPipeBlock(t)); err != nil {
		t.Fatalf("AddJunction failed: %v", err)
	}

	lower, ok := g.BlockAt(u)
	if !ok {
		t.Fatal("lower cube disappeared")
	}
	if got := len(lower.Layers()); got != 2 {
		t.Errorf("lower cube has %d layers after the temporal junction, want 2", got)
	}
	upper, _ := g.BlockAt(v)
	if got := len(upper.Layers()); got != 2 {
		t.Errorf("upper cube has %d layers after the temporal junction, want 2", got)
	}
	if _, ok, err := g.JunctionAt(u, v); err != nil || !ok {
		t.Errorf("JunctionAt(u, v) = %v, %v; want stored junction", ok, err)
	}
}

func TestAddJunction_FailedValidationLeavesGraphUntouched(t *testing.T) {
	g := NewGraph()
	u := grid.Position3D{}
	if err := g.AddCube(u, cubeBlock(t)); err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}
	v := grid.Position3D{Z: 1}
	if err := g.AddJunction(u, v, temporalPipeBlock(t)); err == nil {
		t.Fatal("AddJunction with a missing endpoint must fail")
	}
	lower, _ := g.BlockAt(u)
	if got := len(lower.Layers()); got != 3 {
		t.Errorf("failed junction trimmed the existing cube: %d layers, want 3", got)
	}
}

func TestLayersAt_SingleCube(t *testing.T) {
	g := NewGraph()
	if err := g.AddCube(grid.Position3D{}, cubeBlock(t)); err != nil {
		t.Fatalf("AddCube failed: %v", err)
	}

	stack, err := g.LayersAt(0)
	if err != nil {
		t.Fatalf("LayersAt failed: %v", err)
	}
	if len(stack) != 3 {
		t.Fatalf("merged stack has %d slots, want 3", len(stack))
	}
	if _, ok := stack[0].(*layers.LayoutLayer); !ok {
		t.Errorf("first slot is %T, want *layers.LayoutLayer", stack[0])
	}
	if _, ok := stack[1].(*layers.RepeatedLayer); !ok {
		t.Errorf("middle slot is %T, want *layers.RepeatedLayer", stack[1])
	}

	if _, err := g.LayersAt(1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("out-of-range depth error = %v, want NOT_FOUND", err)
	}
}

func TestLayoutLayers_TemporalPipeSplicesHalves(t *testing.T) {
	g := NewGraph()
	u := grid.Position3D{}
	v := grid.Position3D{Z: 1}
	for _, p := range []grid.Position3D{u, v} {
		if err := g.AddCube(p, cubeBlock(t)); err != nil {
			t.Fatalf("AddCube failed: %v", err)
		}
	}
	if err := g.AddJunction(u, v, temporalPipeBlock(t)); err != nil {
		t.Fatalf("AddJunction failed: %v", err)
	}

	stacks, err := g.LayoutLayers()
	if err != nil {
		t.Fatalf("LayoutLayers failed: %v", err)
	}
	if len(stacks) != 2 {
		t.Fatalf("got %d depths, want 2", len(stacks))
	}
	// Each depth keeps the full three-slot cube schedule: two cube slots
	// plus half the pipe.
	for z, stack := range stacks {
		if len(stack) != 3 {
			t.Errorf("depth %d has %d slots, want 3", z, len(stack))
		}
	}
}

func spatialPipeBlock(t *testing.T, direction grid.Direction) *layers.Block {
	t.Helper()
	round, err := layers.NewPlaquetteLayer(templates.StripTemplate{Direction: direction}, map[int]rpng.Description{
		templates.IndexTopX:    rpng.MustParse("---- ---- -x3- -x4-").WithCornersDropped(0, 1),
		templates.IndexBulkX:   rpng.MustParse("-x1- -x2- -x3- -x4-"),
		templates.IndexBulkZ:   rpng.MustParse("-z1- -z3- -z2- -z4-"),
		templates.IndexBottomX: rpng.MustParse("-x1- -x2- ---- ----").WithCornersDropped(2, 3),
	})
	if err != nil {
		t.Fatalf("NewPlaquetteLayer failed: %v", err)
	}
	repeat, err := layers.NewRepeatedLayer(round, scalable.Linear(2, -1))
	if err != nil {
		t.Fatalf("NewRepeatedLayer failed: %v", err)
	}
	b, err := layers.NewBlock(round, repeat, round)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	return b
}

func TestLayersAt_SpatialJunction(t *testing.T) {
	g := NewGraph()
	u := grid.Position3D{}
	v := grid.Position3D{X: 1}
	for _, p := range []grid.Position3D{u, v} {
		if err := g.AddCube(p, cubeBlock(t)); err != nil {
			t.Fatalf("AddCube failed: %v", err)
		}
	}
	if err := g.AddJunction(u, v, spatialPipeBlock(t, grid.DirectionX)); err != nil {
		t.Fatalf("AddJunction failed: %v", err)
	}

	// The lower cube lost its right border, the upper cube its left border.
	lower, _ := g.BlockAt(u)
	first := lower.Layers()[0].(*layers.PlaquetteLayer)
	active, err := first.ActivePlaquettes(1, grid.Position2D{})
	if err != nil {
		t.Fatalf("ActivePlaquettes failed: %v", err)
	}
	cols, _ := templates.QubitTemplate{}.Shape().IntegerEval(1)
	for pos := range active {
		if pos.X == 2*(cols-1) {
			t.Errorf("plaquette at %v survived trimming the junction-facing border", pos)
		}
	}

	// Merging the slice does not hit a schedule or shape mismatch.
	stack, err := g.LayersAt(0)
	if err != nil {
		t.Fatalf("LayersAt failed: %v", err)
	}
	if len(stack) != 3 {
		t.Fatalf("merged stack has %d slots, want 3", len(stack))
	}
	slot, ok := stack[0].(*layers.LayoutLayer)
	if !ok {
		t.Fatalf("first slot is %T, want *layers.LayoutLayer", stack[0])
	}
	if got, want := slot.NumSections(), 3; got != want {
		t.Errorf("first slot has %d sections, want %d (two cubes and the seam)", got, want)
	}
}

func TestLayoutLayers_UnoccupiedDepth(t *testing.T) {
	g := NewGraph()
	for _, p := range []grid.Position3D{{}, {Z: 2}} {
		if err := g.AddCube(p, cubeBlock(t)); err != nil {
			t.Fatalf("AddCube failed: %v", err)
		}
	}

	// Nothing occupies depth 1, so layout must fail cleanly.
	if _, err := g.LayoutLayers(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("LayoutLayers error = %v, want INVALID_INPUT", err)
	}
	if _, err := g.LayersAt(1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("LayersAt(1) error = %v, want INVALID_INPUT", err)
	}
}
