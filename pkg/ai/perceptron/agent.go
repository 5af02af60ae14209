package perceptron

import (
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// Forwarder maps a board encoding to one score per cell.
type Forwarder interface {
	Forward(in [Inputs]float64) [Outputs]float64
}

// Agent plays the highest scoring empty cell.
type Agent struct {
	name string
	net  Forwarder
}

func NewAgent(name string, net Forwarder) *Agent {
	return &Agent{name: name, net: net}
}

func (a *Agent) Name() string { return a.name }

func (a *Agent) Move(b game.Board, me game.Mark) (int, error) {
	return BestMove(a.net.Forward(game.Encode(b, me)), b)
}

// BestMove picks the empty cell with the highest score. Ties, including the
// common all-zero ReLU output, go to the lowest index.
func BestMove(scores [Outputs]float64, b game.Board) (int, error) {
	best := -1
	for i, m := range b {
		if m != game.Empty {
			continue
		}
		if best < 0 || scores[i] > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return -1, game.ErrBoardFull
	}
	return best, nil
}
