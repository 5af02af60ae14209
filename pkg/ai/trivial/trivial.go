package trivial

import (
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// TrivialAI takes the center, then corners, then edges.
type TrivialAI struct{}

var preference = [game.Cells]int{4, 0, 2, 6, 8, 1, 3, 5, 7}

func (ai *TrivialAI) Name() string {
	return "trivial"
}

func New() *TrivialAI {
	return &TrivialAI{}
}

// Move は優先順で最初の空きマスを返します
func (ai *TrivialAI) Move(b game.Board, _ game.Mark) (int, error) {
	for _, idx := range preference {
		if b[idx] == game.Empty {
			return idx, nil
		}
	}
	return -1, game.ErrBoardFull
}
