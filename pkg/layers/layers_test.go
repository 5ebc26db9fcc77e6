package layers

import (
	"testing"

	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/scalable"
	"github.com/topostim/topostim/pkg/stim"
	"github.com/topostim/topostim/pkg/templates"
)

func bulkPlaquettes() map[int]rpng.Description {
	return map[int]rpng.Description{
		templates.IndexTopX:    rpng.MustParse("---- ---- -x3- -x4-").WithCornersDropped(0, 1),
		templates.IndexLeftZ:   rpng.MustParse("---- -z2- ---- -z4-").WithCornersDropped(0, 2),
		templates.IndexBulkX:   rpng.MustParse("-x1- -x2- -x3- -x4-"),
		templates.IndexBulkZ:   rpng.MustParse("-z1- -z3- -z2- -z4-"),
		templates.IndexRightZ:  rpng.MustParse("-z1- ---- -z2- ----").WithCornersDropped(1, 3),
		templates.IndexBottomX: rpng.MustParse("-x1- -x2- ---- ----").WithCornersDropped(2, 3),
	}
}

func newTestPlaquetteLayer(t *testing.T) *PlaquetteLayer {
	t.Helper()
	l, err := NewPlaquetteLayer(templates.QubitTemplate{}, bulkPlaquettes())
	if err != nil {
		t.Fatalf("NewPlaquetteLayer failed: %v", err)
	}
	return l
}

func newTestRawLayer(shape scalable.Shape2D, timesteps scalable.LinearFunction) *RawCircuitLayer {
	factory := func(k int64) (*stim.Circuit, *stim.QubitMap, error) {
		c := stim.NewCircuit()
		c.Append("TICK", nil)
		return c, stim.NewQubitMap(), nil
	}
	return NewRawCircuitLayer(factory, shape, timesteps)
}

func TestNewPlaquetteLayer_RejectsVanishingTemplate(t *testing.T) {
	vanishing := &FixedShapeTemplate{shape: scalable.Square(scalable.Linear(-1, 5))}
	if _, err := NewPlaquetteLayer(vanishing, nil); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("vanishing template error = %v, want INVALID_TEMPLATE", err)
	}
}

func TestNewPlaquetteLayer_RejectsBadBorderIncrement(t *testing.T) {
	wide := &FixedShapeTemplate{shape: scalable.Square(scalable.Linear(2, 2)), increment: 2}
	if _, err := NewPlaquetteLayer(wide, nil); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("wide border error = %v, want INVALID_TEMPLATE", err)
	}
}

// FixedShapeTemplate is a test template with a controllable shape and
// border increment.
type FixedShapeTemplate struct {
	shape     scalable.Shape2D
	increment int64
}

func (f *FixedShapeTemplate) Shape() scalable.Shape2D { return f.shape }
func (f *FixedShapeTemplate) BorderIncrement() int64 {
	if f.increment == 0 {
		return 1
	}
	return f.increment
}
func (f *FixedShapeTemplate) BorderIndices(grid.SignedDirection) []int { return nil }
func (f *FixedShapeTemplate) Instantiate(int64) ([][]int, error)       { return nil, nil }

func TestPlaquetteLayer_TrimRemovesBorderPlaquettes(t *testing.T) {
	l := newTestPlaquetteLayer(t)

	trimmed, err := l.WithSpatialBordersTrimmed(templates.BorderTop)
	if err != nil {
		t.Fatalf("WithSpatialBordersTrimmed failed: %v", err)
	}
	pl := trimmed.(*PlaquetteLayer)

	active, err := pl.ActivePlaquettes(1, grid.Position2D{})
	if err != nil {
		t.Fatalf("ActivePlaquettes failed: %v", err)
	}

	// No kept plaquette may sit on the trimmed border row.
	for pos := range active {
		if pos.Y == 0 {
			t.Errorf("plaquette at %v survived trimming the top border", pos)
		}
	}

	// The original layer is untouched.
	origActive, err := l.ActivePlaquettes(1, grid.Position2D{})
	if err != nil {
		t.Fatalf("ActivePlaquettes on original failed: %v", err)
	}
	if len(origActive) <= len(active) {
		t.Errorf("trimming must strictly reduce the plaquette count: %d -> %d", len(origActive), len(active))
	}
}

func TestPlaquetteLayer_TrimmingAllBordersKeepsPositiveCount(t *testing.T) {
	l := newTestPlaquetteLayer(t)
	trimmed, err := l.WithSpatialBordersTrimmed(
		templates.BorderTop, templates.BorderBottom, templates.BorderLeft, templates.BorderRight)
	if err != nil {
		t.Fatalf("WithSpatialBordersTrimmed failed: %v", err)
	}
	for k := int64(1); k <= 3; k++ {
		active, err := trimmed.(*PlaquetteLayer).ActivePlaquettes(k, grid.Position2D{})
		if err != nil {
			t.Fatalf("ActivePlaquettes(%d) failed: %v", k, err)
		}
		if len(active) == 0 {
			t.Errorf("k=%d: all-border trim left no plaquettes", k)
		}
	}
}

func TestSequencedLayers_RequiresTwoElements(t *testing.T) {
	l := newTestPlaquetteLayer(t)
	if _, err := NewSequencedLayers(l); !errors.Is(err, errors.ErrCodeInvalidBlock) {
		t.Errorf("single-element sequence error = %v, want INVALID_BLOCK", err)
	}
}

func TestSequencedLayers_RejectsMismatchedShapes(t *testing.T) {
	a := newTestRawLayer(scalable.Square(scalable.Linear(2, 2)), scalable.Constant(1))
	b := newTestRawLayer(scalable.Square(scalable.Constant(4)), scalable.Constant(1))
	if _, err := NewSequencedLayers(a, b); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("mismatched shapes error = %v, want INVALID_SHAPE", err)
	}
}

func TestSequencedLayers_ScheduleAndTimesteps(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	a := newTestRawLayer(shape, scalable.Constant(1))
	b := newTestRawLayer(shape, scalable.Linear(2, -1))
	seq, err := NewSequencedLayers(a, b)
	if err != nil {
		t.Fatalf("NewSequencedLayers failed: %v", err)
	}

	schedule := seq.Schedule()
	if len(schedule) != 2 {
		t.Fatalf("schedule has %d entries, want 2", len(schedule))
	}
	if got, want := seq.ScalableTimesteps(), scalable.Linear(2, 0); got != want {
		t.Errorf("ScalableTimesteps() = %v, want %v", got, want)
	}
}

func TestRepeatedLayer_RejectsScalableTimesScalable(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	body := newTestRawLayer(shape, scalable.Linear(1, 0))
	if _, err := NewRepeatedLayer(body, scalable.Linear(2, 1)); !errors.Is(err, errors.ErrCodeInvalidSchedule) {
		t.Errorf("scalable x scalable error = %v, want INVALID_SCHEDULE", err)
	}
}

func TestRepeatedLayer_ConstantTimesConstantIsPreserved(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	body := newTestRawLayer(shape, scalable.Constant(2))
	rep, err := NewRepeatedLayer(body, scalable.Constant(3))
	if err != nil {
		t.Fatalf("NewRepeatedLayer failed: %v", err)
	}
	// Deliberately NOT collapsed into a sequence of 6 slices.
	if got, want := rep.ScalableTimesteps(), scalable.Constant(6); got != want {
		t.Errorf("ScalableTimesteps() = %v, want %v", got, want)
	}
	if _, ok := rep.Internal().(*RawCircuitLayer); !ok {
		t.Error("constant-times-constant repetition must keep its structure")
	}
}

func TestRepeatedLayer_ScalableRepetitions(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	body := newTestRawLayer(shape, scalable.Constant(1))
	rep, err := NewRepeatedLayer(body, scalable.Linear(2, -1))
	if err != nil {
		t.Fatalf("NewRepeatedLayer failed: %v", err)
	}
	if got, want := rep.ScalableTimesteps(), scalable.Linear(2, -1); got != want {
		t.Errorf("ScalableTimesteps() = %v, want %v", got, want)
	}
}

func TestBlock_RequiresLayers(t *testing.T) {
	if _, err := NewBlock(); !errors.Is(err, errors.ErrCodeInvalidBlock) {
		t.Errorf("empty block error = %v, want INVALID_BLOCK", err)
	}
}

func TestBlock_Predicates(t *testing.T) {
	cubeShape := scalable.Square(scalable.Linear(2, 2))
	pipeShape := scalable.Shape2D{X: scalable.Constant(2), Y: scalable.Linear(2, 2)}

	roundLayer := func(shape scalable.Shape2D) Layer { return newTestRawLayer(shape, scalable.Constant(1)) }
	repeat := func(shape scalable.Shape2D) Layer {
		r, err := NewRepeatedLayer(newTestRawLayer(shape, scalable.Constant(1)), scalable.Linear(2, -1))
		if err != nil {
			t.Fatalf("NewRepeatedLayer failed: %v", err)
		}
		return r
	}

	cube, err := NewBlock(roundLayer(cubeShape), repeat(cubeShape), roundLayer(cubeShape))
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	if !cube.IsCube() || cube.IsPipe() || cube.IsTemporalPipe() {
		t.Error("scalable x/y/t block must be a cube")
	}

	spatialPipe, err := NewBlock(roundLayer(pipeShape), repeat(pipeShape), roundLayer(pipeShape))
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	if !spatialPipe.IsPipe() || spatialPipe.IsCube() || spatialPipe.IsTemporalPipe() {
		t.Error("constant-x block must be a spatial pipe")
	}

	temporalPipe, err := NewBlock(roundLayer(cubeShape), roundLayer(cubeShape))
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	if !temporalPipe.IsTemporalPipe() {
		t.Error("constant-duration scalable-footprint block must be a temporal pipe")
	}
}

func TestBlock_TemporalBorderReplacementBothEnds(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	first := newTestRawLayer(shape, scalable.Constant(1))
	middle := newTestRawLayer(shape, scalable.Constant(1))
	last := newTestRawLayer(shape, scalable.Constant(1))

	block, err := NewBlock(first, middle, last)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}

	replaced, err := block.WithTemporalBordersReplaced(map[TemporalBorder]Layer{
		TemporalBorderNegative: nil,
		TemporalBorderPositive: nil,
	})
	if err != nil {
		t.Fatalf("WithTemporalBordersReplaced failed: %v", err)
	}
	if got := len(replaced.Layers()); got != 1 {
		t.Fatalf("remaining layers = %d, want 1", got)
	}
	if replaced.Layers()[0] != Layer(middle) {
		t.Error("the untouched middle layer must survive unchanged")
	}
	// Original block is untouched.
	if got := len(block.Layers()); got != 3 {
		t.Errorf("original block has %d layers, want 3", got)
	}
}

func TestBlock_TemporalBorderReplacementOneEnd(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	first := newTestRawLayer(shape, scalable.Constant(1))
	last := newTestRawLayer(shape, scalable.Constant(1))
	substitute := newTestRawLayer(shape, scalable.Constant(1))

	block, err := NewBlock(first, last)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}

	replaced, err := block.WithTemporalBordersReplaced(map[TemporalBorder]Layer{
		TemporalBorderPositive: substitute,
	})
	if err != nil {
		t.Fatalf("WithTemporalBordersReplaced failed: %v", err)
	}
	ls := replaced.Layers()
	if len(ls) != 2 {
		t.Fatalf("remaining layers = %d, want 2", len(ls))
	}
	if ls[0] != Layer(first) {
		t.Error("the untouched negative end must stay unchanged")
	}
	if ls[1] != Layer(substitute) {
		t.Error("the positive end must be the substitute")
	}
}

func TestBlock_ReplacingEverythingFails(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	only := newTestRawLayer(shape, scalable.Constant(1))
	block, err := NewBlock(only)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	_, err = block.WithTemporalBordersReplaced(map[TemporalBorder]Layer{
		TemporalBorderNegative: nil,
	})
	if !errors.Is(err, errors.ErrCodeInvalidBlock) {
		t.Errorf("removing the only layer error = %v, want INVALID_BLOCK", err)
	}
}

func TestBlock_SplitInTwo(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	a := newTestRawLayer(shape, scalable.Constant(1))
	b := newTestRawLayer(shape, scalable.Constant(1))

	block, err := NewBlock(a, b)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	lower, upper, err := block.SplitInTwo()
	if err != nil {
		t.Fatalf("SplitInTwo failed: %v", err)
	}
	if len(lower) != 1 || len(upper) != 1 {
		t.Fatalf("split sizes = %d/%d, want 1/1", len(lower), len(upper))
	}
	if lower[0] != Layer(a) || upper[0] != Layer(b) {
		t.Error("split must preserve order")
	}

	odd, err := NewBlock(a, b, a)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	if _, _, err := odd.SplitInTwo(); !errors.Is(err, errors.ErrCodeInvalidBlock) {
		t.Errorf("odd split error = %v, want INVALID_BLOCK", err)
	}
}

func TestAtomicSlices(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	a := newTestRawLayer(shape, scalable.Constant(1))
	b := newTestRawLayer(shape, scalable.Constant(1))

	seq, err := NewSequencedLayers(a, b)
	if err != nil {
		t.Fatalf("NewSequencedLayers failed: %v", err)
	}
	rep, err := NewRepeatedLayer(seq, scalable.Constant(3))
	if err != nil {
		t.Fatalf("NewRepeatedLayer failed: %v", err)
	}

	slices, err := AtomicSlices(rep)
	if err != nil {
		t.Fatalf("AtomicSlices failed: %v", err)
	}
	if got, want := len(slices), 6; got != want {
		t.Fatalf("len(slices) = %d, want %d", got, want)
	}
	for i, s := range slices {
		want := Layer(a)
		if i%2 == 1 {
			want = b
		}
		if Layer(s) != want {
			t.Errorf("slice %d is the wrong layer", i)
		}
	}
}

func TestAtomicSlices_RejectsScalableRepetitions(t *testing.T) {
	shape := scalable.Square(scalable.Linear(2, 2))
	rep, err := NewRepeatedLayer(newTestRawLayer(shape, scalable.Constant(1)), scalable.Linear(1, 0))
	if err != nil {
		t.Fatalf("NewRepeatedLayer failed: %v", err)
	}
	if _, err := AtomicSlices(rep); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("scalable flatten error = %v, want UNSUPPORTED", err)
	}
}
