package minimax

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

func TestHardOpeningIsCornerOrCenter(t *testing.T) {
	s := New(Hard, rand.New(rand.NewSource(1)))
	idx, err := s.Move(game.Board{}, game.O)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	switch idx {
	case 0, 2, 4, 6, 8:
	default:
		t.Fatalf("opening %d is neither a corner nor the center", idx)
	}
	if v := s.Value(game.Board{}, game.O); v != 0 {
		t.Fatalf("empty board value = %d, want 0", v)
	}
}

func TestHardCompletesWinningLine(t *testing.T) {
	b := game.Board{game.X, game.X, game.Empty, game.Empty, game.O}
	s := New(Hard, rand.New(rand.NewSource(1)))
	idx, err := s.Move(b, game.X)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if idx != 2 {
		t.Fatalf("got %d, want 2", idx)
	}
}

func TestHardBlocksImmediateThreat(t *testing.T) {
	// X threatens the top row; O must take 2
	b := game.Board{game.X, game.X, game.Empty, game.Empty, game.O}
	s := New(Hard, rand.New(rand.NewSource(1)))
	idx, err := s.Move(b, game.O)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if idx != 2 {
		t.Fatalf("got %d, want 2", idx)
	}
}

func TestFullBoardHasNoMove(t *testing.T) {
	b := game.Board{game.X, game.O, game.X, game.X, game.O, game.O, game.O, game.X, game.X}
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if _, err := New(d, rand.New(rand.NewSource(1))).Move(b, game.X); !errors.Is(err, game.ErrBoardFull) {
			t.Fatalf("%s: expected ErrBoardFull, got %v", d, err)
		}
	}
}

// neverLoses plays every possible opponent line against the solver.
func neverLoses(t *testing.T, s *Solver, b game.Board, toMove, solver game.Mark) int {
	t.Helper()
	r := game.Evaluate(b)
	if r.Over() {
		if r.State == game.Win && r.Winner != solver {
			t.Fatalf("solver lost:\n%s", b)
		}
		return 1
	}
	if toMove == solver {
		idx, err := s.Move(b, solver)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		if b[idx] != game.Empty {
			t.Fatalf("solver played occupied cell %d", idx)
		}
		b[idx] = solver
		return neverLoses(t, s, b, toMove.Opponent(), solver)
	}
	games := 0
	for _, i := range b.LegalMoves() {
		next := b
		next[i] = toMove
		games += neverLoses(t, s, next, toMove.Opponent(), solver)
	}
	return games
}

func TestHardNeverLoses(t *testing.T) {
	s := New(Hard, rand.New(rand.NewSource(1)))
	second := neverLoses(t, s, game.Board{}, game.X, game.O)
	first := neverLoses(t, s, game.Board{}, game.X, game.X)
	if second == 0 || first == 0 {
		t.Fatalf("no games explored")
	}
}

func TestHardDrawsAgainstItself(t *testing.T) {
	s := New(Hard, rand.New(rand.NewSource(1)))
	res, err := game.NewGameRunner(s, s).Run(game.Board{}, game.X)
	if err != nil {
		t.Fatal(err)
	}
	if res.Winner != game.Empty || res.Forfeit != "" {
		t.Fatalf("expected a draw, got %+v", res)
	}
}

func TestImperfectDifficultiesDeviate(t *testing.T) {
	// X to move with a single winning cell; anything else is suboptimal
	b := game.Board{game.X, game.X, game.Empty, game.Empty, game.O, game.O}
	hard, _ := New(Hard, rand.New(rand.NewSource(1))).Move(b, game.X)

	for _, d := range []Difficulty{Easy, Medium} {
		s := New(d, rand.New(rand.NewSource(7)))
		deviated := 0
		for i := 0; i < 500; i++ {
			idx, err := s.Move(b, game.X)
			if err != nil {
				t.Fatalf("%s: Move: %v", d, err)
			}
			if !b.IsLegal(idx) {
				t.Fatalf("%s: illegal move %d", d, idx)
			}
			if idx != hard {
				deviated++
			}
		}
		if deviated == 0 {
			t.Fatalf("%s never deviated from %d", d, hard)
		}
		if deviated == 500 {
			t.Fatalf("%s never played optimally", d)
		}
	}
}

func TestTableMatchesPlainSearch(t *testing.T) {
	tbl := &Table{}
	seen := map[uint32]bool{}
	var walk func(b game.Board, toMove game.Mark)
	walk = func(b game.Board, toMove game.Mark) {
		k := key(b, toMove)
		if seen[k] {
			return
		}
		seen[k] = true
		if got, want := negamax(b, toMove, tbl), negamax(b, toMove, nil); got != want {
			t.Fatalf("cached %d != plain %d for %s to move:\n%s", got, want, toMove, b)
		}
		if game.Evaluate(b).Over() {
			return
		}
		for _, i := range b.LegalMoves() {
			next := b
			next[i] = toMove
			walk(next, toMove.Opponent())
		}
	}
	walk(game.Board{}, game.X)
	if tbl.Len() == 0 {
		t.Fatalf("table is empty")
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Fatalf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("brutal"); err == nil {
		t.Fatalf("expected error")
	}
}
