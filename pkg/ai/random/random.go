package random

import (
	"math/rand"

	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// RandomAI はランダムに空きマスを選ぶ実装
type RandomAI struct {
	rng *rand.Rand
}

// New は RandomAI を生成する. rng は呼び出し側が所有し、並行利用しないこと
func New(rng *rand.Rand) *RandomAI { return &RandomAI{rng: rng} }

func (r *RandomAI) Name() string { return "random" }

func (r *RandomAI) Move(b game.Board, _ game.Mark) (int, error) {
	return Pick(r.rng, b)
}

// Pick は空きマスから一様に一つ選ぶ
func Pick(rng *rand.Rand, b game.Board) (int, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return -1, game.ErrBoardFull
	}
	return moves[rng.Intn(len(moves))], nil
}
