package evolve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
)

func TestFitnessAllForfeitsIsZero(t *testing.T) {
	rep := DefaultEvaluator().Evaluate(occupied{}, minimax.Hard, rand.New(rand.NewSource(1)))
	if rep.Episodes != 20 || rep.Forfeits != 20 {
		t.Fatalf("expected 20 forfeits, got %+v", rep)
	}
	if rep.Score != 0 {
		t.Fatalf("score = %v, want 0", rep.Score)
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		name                    string
		credit                  float64
		valid, penalties, total int
		want                    float64
	}{
		{"all valid wins", 20, 20, 0, 20, 1},
		{"half penalised", 10, 10, 10, 20, 0.9},
		{"all penalised", 0, 0, 20, 20, 0},
		{"floored", 0, 10, 10, 20, 0},
		{"draw credit", 5, 10, 0, 10, 0.5},
	}
	for _, c := range cases {
		if got := Score(c.credit, c.valid, c.penalties, c.total); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("%s: Score = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestReportCreditFollowsReward(t *testing.T) {
	var r Report
	r.add(Episode{Outcome: Win, Reward: 1})
	r.add(Episode{Outcome: Draw, Reward: DefaultShaping().Draw})
	r.add(Episode{Outcome: Draw, Reward: 0.5})
	r.add(Episode{Outcome: Penalty, Reward: -0.5})
	if r.Credit != 1.5 {
		t.Fatalf("credit = %v, want 1.5", r.Credit)
	}
	if r.Episodes != 4 || r.Penalties != 1 || r.Draws != 2 {
		t.Fatalf("counts %+v", r)
	}
}

func TestFitnessInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	ev := Evaluator{Episodes: 10, Shaping: DefaultShaping()}
	for _, d := range []minimax.Difficulty{minimax.Easy, minimax.Medium, minimax.Hard} {
		f := ev.Fitness(minimax.New(minimax.Hard, rng), d, rng)
		if f < 0 || f > 1 {
			t.Fatalf("%s: fitness %v outside [0, 1]", d, f)
		}
	}
}
