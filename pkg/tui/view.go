package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/logx"
)

var (
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleGray   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	styleEventInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styleEventError = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderProgress(),
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderFitness(), m.renderTiming()),
		m.renderHistory(),
		stylePanel.Render("Events:")+"\n"+m.viewport.View(),
		styleGray.Render("│ "+styleDim.Render("q: quit")+" │"),
	)
}

func (m Model) renderHeader() string {
	return styleHeader.Render(fmt.Sprintf("%s │ runtime=%s", m.title, logx.FormatDuration(time.Since(m.startTime))))
}

func (m Model) renderProgress() string {
	return stylePanel.Render(fmt.Sprintf("Generation %d/%d %s %s",
		m.stats.Generation, m.stats.MaxGenerations,
		difficultyStyle(m.stats.Difficulty).Render(m.stats.Difficulty.String()),
		m.progress.ViewAs(m.Percent())))
}

func (m Model) renderFitness() string {
	return stylePanel.Width(44).Render(fmt.Sprintf(
		"best=%s │ mean=%.2f │ probe=%.2f\nglobal=%s (gen %d)",
		fitnessStyle(m.stats.Best).Render(fmt.Sprintf("%.2f", m.stats.Best)),
		m.stats.Mean, m.stats.ProbeFitness,
		fitnessStyle(m.stats.GlobalBest).Render(fmt.Sprintf("%.2f", m.stats.GlobalBest)),
		m.stats.GlobalBestGen,
	))
}

func (m Model) renderTiming() string {
	return stylePanel.Width(30).Render(fmt.Sprintf("elapsed=%s\neta=%s\ntable=%d",
		logx.FormatDuration(m.stats.Elapsed), logx.FormatDuration(m.stats.ETA), m.stats.TableSize))
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// renderHistory draws the last generations' best fitness as a sparkline.
func (m Model) renderHistory() string {
	width := m.width - 6
	if width < 10 {
		width = 10
	}
	h := m.history
	if len(h) > width {
		h = h[len(h)-width:]
	}
	var sb strings.Builder
	for _, f := range h {
		i := int(f * float64(len(sparks)-1))
		i = min(max(i, 0), len(sparks)-1)
		sb.WriteRune(sparks[i])
	}
	return stylePanel.Render("Best fitness: " + sb.String())
}

func fitnessStyle(f float64) lipgloss.Style {
	switch {
	case f >= 0.8:
		return styleGreen
	case f >= 0.5:
		return styleYellow
	}
	return styleRed
}

func difficultyStyle(d minimax.Difficulty) lipgloss.Style {
	switch d {
	case minimax.Easy:
		return styleGreen
	case minimax.Medium:
		return styleYellow
	}
	return styleRed
}
