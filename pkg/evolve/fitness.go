package evolve

import (
	"math/rand"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

const (
	DefaultEpisodes = 20
	penaltyWeight   = 0.2
)

// Evaluator turns a batch of episodes into a fitness score in [0, 1].
type Evaluator struct {
	Episodes int     `json:"episodes"`
	Shaping  Shaping `json:"shaping"`
}

func DefaultEvaluator() Evaluator {
	return Evaluator{Episodes: DefaultEpisodes, Shaping: DefaultShaping()}
}

// Report is the breakdown behind one fitness score.
type Report struct {
	Episodes  int
	Wins      int
	Draws     int
	Losses    int
	Forfeits  int
	Penalties int
	Credit    float64
	Score     float64
}

func (r *Report) add(ep Episode) {
	r.Episodes++
	switch ep.Outcome {
	case Win:
		r.Wins++
	case Draw:
		r.Draws++
	case Loss:
		r.Losses++
	case Forfeit:
		r.Forfeits++
	case Penalty:
		r.Penalties++
		return
	}
	// credit follows the reward, so a draw only earns 0.5 when shaped that way
	switch ep.Reward {
	case 1:
		r.Credit += 1
	case 0.5:
		r.Credit += 0.5
	}
}

// Evaluate plays e.Episodes games of candidate against a solver at d.
func (e Evaluator) Evaluate(candidate game.AI, d minimax.Difficulty, rng *rand.Rand) Report {
	episodes := e.Episodes
	if episodes <= 0 {
		episodes = DefaultEpisodes
	}
	opponent := minimax.New(d, rng)

	var r Report
	for i := 0; i < episodes; i++ {
		r.add(Simulate(candidate, opponent, rng, e.Shaping))
	}
	r.Score = Score(r.Credit, r.Episodes-r.Penalties, r.Penalties, r.Episodes)
	return r
}

// Fitness is Evaluate reduced to its score.
func (e Evaluator) Fitness(candidate game.AI, d minimax.Difficulty, rng *rand.Rand) float64 {
	return e.Evaluate(candidate, d, rng).Score
}

// Score is credit/valid - 0.2*penalties/total, floored at 0. No valid games
// scores 0.
func Score(credit float64, valid, penalties, total int) float64 {
	if valid <= 0 || total <= 0 {
		return 0
	}
	s := credit/float64(valid) - penaltyWeight*float64(penalties)/float64(total)
	if s < 0 {
		return 0
	}
	return s
}
