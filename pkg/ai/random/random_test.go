package random

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

func TestPickOnlyEmptyCells(t *testing.T) {
	b := game.Board{game.X, game.O, game.Empty, game.X, game.Empty, game.O, game.X, game.O, game.X}
	rng := rand.New(rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		idx, err := Pick(rng, b)
		if err != nil {
			t.Fatal(err)
		}
		if !b.IsLegal(idx) {
			t.Fatalf("picked occupied cell %d", idx)
		}
		seen[idx] = true
	}
	if !seen[2] || !seen[4] {
		t.Fatalf("not uniform over empty cells: %v", seen)
	}
}

func TestPickFullBoard(t *testing.T) {
	var b game.Board
	for i := range b {
		b[i] = game.X
	}
	if _, err := New(rand.New(rand.NewSource(1))).Move(b, game.O); !errors.Is(err, game.ErrBoardFull) {
		t.Fatalf("err = %v", err)
	}
}
