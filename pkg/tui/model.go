package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/montplusa/tictactoe-evolve/pkg/training"
)

const maxEvents = 500

// Event is one line in the dashboard log.
type Event struct {
	Timestamp time.Time
	Type      string // "BEST", "DONE", "ERROR"
	Message   string
}

type (
	MsgGeneration training.GenerationStats
	MsgEvent      Event
	MsgShutdown   struct{}
	MsgTick       time.Time
)

// Model is the bubbletea model of the training dashboard.
type Model struct {
	title     string
	onQuit    func() // called when the user quits, may be nil
	startTime time.Time
	stats     training.GenerationStats
	history   []float64 // best fitness per generation, for the sparkline
	events    []Event

	width  int
	height int
	ready  bool

	progress progress.Model
	viewport viewport.Model
}

func NewModel(title string, onQuit func()) Model {
	return Model{
		title:     title,
		onQuit:    onQuit,
		startTime: time.Now(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		viewport:  viewport.New(0, 8),
	}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return MsgTick(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport.Width = m.width - 4
		m.progress.Width = min(60, max(10, m.width-20))
		return m, nil

	case MsgGeneration:
		s := training.GenerationStats(msg)
		m.stats = s
		m.history = append(m.history, s.Best)
		return m, nil

	case MsgEvent:
		m.addEvent(Event(msg))
		m.viewport.SetContent(m.renderEventLines())
		m.viewport.GotoBottom()
		return m, nil

	case MsgTick:
		return m, tick()

	case MsgShutdown:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) addEvent(e Event) {
	m.events = append(m.events, e)
	if len(m.events) > maxEvents {
		m.events = m.events[1:]
	}
}

// Percent is the share of generations completed.
func (m Model) Percent() float64 {
	if m.stats.MaxGenerations == 0 {
		return 0
	}
	return float64(m.stats.Generation) / float64(m.stats.MaxGenerations)
}

func (m Model) renderEventLines() string {
	lines := make([]string, 0, len(m.events))
	for _, e := range m.events {
		style, icon := styleEventInfo, "•"
		switch e.Type {
		case "BEST":
			icon = "↗"
		case "DONE":
			style, icon = styleGreen, "✓"
		case "ERROR":
			style, icon = styleEventError, "✗"
		}
		lines = append(lines, style.Render(fmt.Sprintf("[%s] %s %s", e.Timestamp.Format("15:04:05"), icon, e.Message)))
	}
	return strings.Join(lines, "\n")
}
