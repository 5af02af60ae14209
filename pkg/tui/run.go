package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
	"github.com/montplusa/tictactoe-evolve/pkg/training"
)

// Dashboard runs the TUI program and receives training progress. It
// implements training.Observer.
type Dashboard struct {
	program *tea.Program
	done    chan struct{}
}

// Start launches the dashboard in the background. It fails when stdout is
// not a terminal or TERM is dumb; callers fall back to plain logging.
// onQuit runs when the user presses q or ctrl+c inside the dashboard, where
// the terminal is in raw mode and no SIGINT is delivered.
func Start(ctx context.Context, title string, onQuit func()) (*Dashboard, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("TUI disabled (not a TTY)")
	}
	if os.Getenv("TERM") == "dumb" {
		return nil, fmt.Errorf("TUI disabled (TERM=dumb)")
	}

	d := &Dashboard{
		program: tea.NewProgram(NewModel(title, onQuit), tea.WithContext(ctx), tea.WithAltScreen()),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		_, _ = d.program.Run()
	}()
	return d, nil
}

func (d *Dashboard) OnGeneration(s training.GenerationStats) {
	d.program.Send(MsgGeneration(s))
}

func (d *Dashboard) OnImprovement(s training.GenerationStats, _ *perceptron.Network) {
	d.Event("BEST", fmt.Sprintf("generation %d reached %.2f (%s)", s.Generation, s.GlobalBest, s.Difficulty))
}

// Event appends a line to the event log.
func (d *Dashboard) Event(typ, message string) {
	d.program.Send(MsgEvent{Timestamp: time.Now(), Type: typ, Message: message})
}

// Stop quits the program and waits for the terminal to be restored.
func (d *Dashboard) Stop() {
	d.program.Send(MsgShutdown{})
	<-d.done
}
