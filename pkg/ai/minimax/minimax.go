package minimax

import (
	"fmt"
	"math/rand"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/random"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// Solver is a full-depth game-tree opponent. Difficulty decides how often
// the optimal move is replaced by a random one; the search itself is exact.
type Solver struct {
	difficulty Difficulty
	rng        *rand.Rand
	table      *Table
}

// New returns a solver using the shared transposition table. rng is owned by
// the solver's caller and must not be used concurrently.
func New(difficulty Difficulty, rng *rand.Rand) *Solver {
	return &Solver{difficulty: difficulty, rng: rng, table: shared}
}

func (s *Solver) Name() string {
	return fmt.Sprintf("minimax (%s)", s.difficulty)
}

func (s *Solver) Difficulty() Difficulty { return s.difficulty }

// Move returns the cell s plays as me. A full board yields game.ErrBoardFull.
func (s *Solver) Move(b game.Board, me game.Mark) (int, error) {
	if b.Full() {
		return -1, game.ErrBoardFull
	}
	if rate := s.difficulty.RandomRate(); rate > 0 && s.rng.Float64() < rate {
		return random.Pick(s.rng, b)
	}
	return s.Best(b, me)
}

// Best returns the optimal move for me. Equal scores keep the lowest index.
func (s *Solver) Best(b game.Board, me game.Mark) (int, error) {
	best, bestScore := -1, -2
	for i, m := range b {
		if m != game.Empty {
			continue
		}
		b[i] = me
		score := -negamax(b, me.Opponent(), s.table)
		b[i] = game.Empty
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return -1, game.ErrBoardFull
	}
	return best, nil
}

// Value is the exact game value for me when me is to move:
// +1 forced win, 0 draw, -1 forced loss.
func (s *Solver) Value(b game.Board, me game.Mark) int {
	return negamax(b, me, s.table)
}

// negamax scores the board for toMove. table may be nil.
func negamax(b game.Board, toMove game.Mark, table *Table) int {
	switch r := game.Evaluate(b); r.State {
	case game.Win:
		if r.Winner == toMove {
			return 1
		}
		return -1
	case game.Draw:
		return 0
	}
	if table != nil {
		if v, ok := table.load(b, toMove); ok {
			return v
		}
	}

	best := -2
	for i, m := range b {
		if m != game.Empty {
			continue
		}
		b[i] = toMove
		if v := -negamax(b, toMove.Opponent(), table); v > best {
			best = v
		}
		b[i] = game.Empty
		if best == 1 {
			break
		}
	}

	if table != nil {
		table.store(b, toMove, best)
	}
	return best
}
