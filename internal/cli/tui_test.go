package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/topostim/topostim/pkg/compile"
)

func TestSweepModelProgress(t *testing.T) {
	msgs := make(chan tea.Msg, 4)
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m tea.Model = NewSweepModel("memory", 4, cancel, msgs)

	m, _ = m.Update(pointDoneMsg{})
	m, _ = m.Update(pointDoneMsg{})

	model := m.(SweepModel)
	if model.Done != 2 {
		t.Errorf("Done = %d, want 2", model.Done)
	}

	view := model.View()
	if !strings.Contains(view, "2/4") {
		t.Errorf("view %q should show progress 2/4", view)
	}
}

func TestSweepModelDone(t *testing.T) {
	msgs := make(chan tea.Msg, 1)
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m tea.Model = NewSweepModel("memory", 1, cancel, msgs)

	points := []compile.SweepPoint{{K: 1, Noise: 0, Result: &compile.Result{}}}
	m, cmd := m.Update(sweepDoneMsg{points: points})

	model := m.(SweepModel)
	if len(model.Points) != 1 {
		t.Fatalf("Points len = %d, want 1", len(model.Points))
	}
	if cmd == nil {
		t.Fatal("done message should quit the program")
	}
	if model.View() != "" {
		t.Error("view should be empty after completion")
	}
}

func TestSweepModelCancel(t *testing.T) {
	msgs := make(chan tea.Msg, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m tea.Model = NewSweepModel("memory", 1, cancel, msgs)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if ctx.Err() == nil {
		t.Error("ctrl+c should cancel the sweep context")
	}
}

func TestRenderSweepTable(t *testing.T) {
	points := []compile.SweepPoint{
		{K: 1, Noise: 0, Result: &compile.Result{
			Stats: compile.Stats{Qubits: 17, Detectors: 24},
		}},
		{K: 2, Noise: 0.001, Result: &compile.Result{
			Stats:     compile.Stats{Qubits: 49, Detectors: 120},
			CacheInfo: compile.CacheInfo{CircuitHit: true},
		}},
	}

	got := renderSweepTable(points)

	for _, want := range []string{"detectors", "17", "24", "49", "120", "0.001", iconCached, iconFresh} {
		if !strings.Contains(got, want) {
			t.Errorf("table should contain %q:\n%s", want, got)
		}
	}
}
