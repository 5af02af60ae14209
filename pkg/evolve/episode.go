package evolve

import (
	"fmt"
	"math/rand"

	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// Sides used during training: the candidate network always plays NN and
// moves first, the solver always plays MM.
const (
	NN = game.X
	MM = game.O
)

// Outcome is how an episode ended, seen from the candidate.
type Outcome int

const (
	Win     Outcome = iota // candidate completed a line
	Draw                   // board filled
	Loss                   // solver completed a line
	Forfeit                // candidate chose an illegal cell
	Penalty                // solver chose an illegal cell
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	case Forfeit:
		return "forfeit"
	case Penalty:
		return "penalty"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Shaping is the scalar reward attached to each outcome.
type Shaping struct {
	Win     float64 `json:"win"`
	Draw    float64 `json:"draw"`
	Loss    float64 `json:"loss"`
	Forfeit float64 `json:"forfeit"`
	Penalty float64 `json:"penalty"`
}

// DefaultShaping treats draws like losses.
func DefaultShaping() Shaping {
	return Shaping{Win: 1, Draw: -1, Loss: -1, Forfeit: 0, Penalty: -0.5}
}

func (s Shaping) Reward(o Outcome) float64 {
	switch o {
	case Win:
		return s.Win
	case Draw:
		return s.Draw
	case Loss:
		return s.Loss
	case Forfeit:
		return s.Forfeit
	}
	return s.Penalty
}

// Episode is the record of one simulated game.
type Episode struct {
	Start   game.Board
	Final   game.Board
	Moves   []game.Move
	Outcome Outcome
	Reward  float64
}

// SeedBoard places 2 to 4 marks on random empty cells. Owners alternate,
// starting from a random side, so no line can be complete.
func SeedBoard(rng *rand.Rand) game.Board {
	var b game.Board
	owner := NN
	if rng.Intn(2) == 1 {
		owner = MM
	}
	for n := 2 + rng.Intn(3); n > 0; n-- {
		empty := b.LegalMoves()
		b[empty[rng.Intn(len(empty))]] = owner
		owner = owner.Opponent()
	}
	return b
}

// Simulate plays one game of candidate (NN) against opponent (MM) from a
// seeded board. Illegal choices end the game as an outcome, never an error.
func Simulate(candidate, opponent game.AI, rng *rand.Rand, shaping Shaping) Episode {
	ep := Episode{Start: SeedBoard(rng)}
	board := ep.Start
	player := NN

	for {
		agent := candidate
		if player == MM {
			agent = opponent
		}
		idx, err := agent.Move(board, player)
		if err == nil {
			err = board.Play(idx, player)
		}
		if err != nil {
			if player == NN {
				ep.Outcome = Forfeit
			} else {
				ep.Outcome = Penalty
			}
			break
		}
		ep.Moves = append(ep.Moves, game.Move{Player: player, Index: idx})

		if r := game.Evaluate(board); r.Over() {
			switch {
			case r.State == game.Draw:
				ep.Outcome = Draw
			case r.Winner == NN:
				ep.Outcome = Win
			default:
				ep.Outcome = Loss
			}
			break
		}
		player = player.Opponent()
	}

	ep.Final = board
	ep.Reward = shaping.Reward(ep.Outcome)
	return ep
}
