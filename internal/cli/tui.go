package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/topostim/topostim/pkg/compile"
	"github.com/topostim/topostim/pkg/observability"
)

// =============================================================================
// SweepModel - Live sweep progress
// =============================================================================

// pointDoneMsg signals that one grid point finished compiling.
type pointDoneMsg struct{}

// sweepDoneMsg carries the final sweep result.
type sweepDoneMsg struct {
	points []compile.SweepPoint
	err    error
}

type tickMsg time.Time

// sweepProgressHooks forwards compile completions to the bubbletea program.
// Cache hits skip the generate stage, so both events count as progress.
type sweepProgressHooks struct {
	observability.NoopCompileHooks
	observability.NoopCacheHooks
	msgs chan<- tea.Msg
}

func (h *sweepProgressHooks) OnGenerateComplete(ctx context.Context, graph string, k int64, instructions int, d time.Duration, err error) {
	if err == nil {
		h.msgs <- pointDoneMsg{}
	}
}

func (h *sweepProgressHooks) OnCacheHit(ctx context.Context, key string) {
	h.msgs <- pointDoneMsg{}
}

// SweepModel is the bubbletea model showing live progress of a grid sweep.
type SweepModel struct {
	Graph  string
	Total  int
	Done   int
	Err    error
	Points []compile.SweepPoint

	cancel context.CancelFunc
	msgs   chan tea.Msg
	frames []string
	frame  int
}

// NewSweepModel creates a progress model for a sweep of total grid points.
func NewSweepModel(graph string, total int, cancel context.CancelFunc, msgs chan tea.Msg) SweepModel {
	return SweepModel{
		Graph:  graph,
		Total:  total,
		cancel: cancel,
		msgs:   msgs,
		frames: spinnerFrames,
	}
}

func (m SweepModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.wait())
}

func (m SweepModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m SweepModel) wait() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgs
	}
}

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, nil // wait for sweepDoneMsg so workers drain
		}
	case tickMsg:
		m.frame++
		return m, m.tick()
	case pointDoneMsg:
		m.Done++
		return m, m.wait()
	case sweepDoneMsg:
		m.Points = msg.points
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m SweepModel) View() string {
	if m.Points != nil || m.Err != nil {
		return ""
	}
	frame := m.frames[m.frame%len(m.frames)]
	return fmt.Sprintf("%s %s\n",
		styleIconSpinner.Render(frame),
		StyleDim.Render(fmt.Sprintf("Sweeping %s: %d/%d points", m.Graph, m.Done, m.Total)))
}

// =============================================================================
// Results Table
// =============================================================================

// renderSweepTable formats sweep results as a bordered table, one row per
// grid point in grid order.
func renderSweepTable(points []compile.SweepPoint) string {
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		status := iconFresh
		if pt.Result.CacheInfo.CircuitHit {
			status = iconCached
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", pt.K),
			fmt.Sprintf("%d", 2*pt.K+1),
			fmt.Sprintf("%g", pt.Noise),
			fmt.Sprintf("%d", pt.Result.Stats.Qubits),
			fmt.Sprintf("%d", pt.Result.Stats.Detectors),
			status,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("k", "d", "noise", "qubits", "detectors", "circuit").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 5 {
				if rows[row][col] == iconCached {
					return styleCached
				}
				return styleComputed
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}
