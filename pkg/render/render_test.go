package render

import (
	"strings"
	"testing"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/grid"
)

func testGraph(t *testing.T) *blockgraph.BlockGraph {
	t.Helper()
	g := blockgraph.New("test")
	for _, step := range []func() error{
		func() error { return g.AddCube(grid.Position3D{}, "ZXZ") },
		func() error { return g.AddCube(grid.Position3D{Z: 1}, "ZXZ") },
		func() error { return g.AddCube(grid.Position3D{X: 1}, "XZX") },
		func() error { return g.AddPipe(grid.Position3D{}, grid.Position3D{Z: 1}, "") },
		func() error { return g.AddPipe(grid.Position3D{}, grid.Position3D{X: 1}, "") },
	} {
		if err := step(); err != nil {
			t.Fatalf("building graph: %v", err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Fatalf("DOT output should open a digraph, got %q", dot[:20])
	}
	for _, want := range []string{
		`"0,0,0" [label="ZXZ", fillcolor=lightblue]`,
		`"1,0,0" [label="XZX", fillcolor=lightyellow]`,
		// temporal pipe keeps its arrow
		`"0,0,0" -> "0,0,1" [label="ZXO"];`,
		// spatial pipe is undirected and dashed
		`dir=none, style=dashed`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Detailed: true})
	if !strings.Contains(dot, "ZXZ\\n(0, 0, 1)") {
		t.Errorf("detailed labels should carry positions:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00">content</svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("namespace missing: %s", out)
	}

	// SVG without a viewBox passes through untouched.
	plain := []byte(`<svg>content</svg>`)
	if got := string(normalizeViewBox(plain)); got != string(plain) {
		t.Errorf("plain SVG should pass through, got %s", got)
	}
}
