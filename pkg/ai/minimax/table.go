package minimax

import (
	"sync"
	"sync/atomic"

	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// Table memoises exact game values by (board, side to move). Entries never
// go stale because every stored value is the full-depth result.
type Table struct {
	entries sync.Map // uint32 -> int8
	size    atomic.Int64
}

// shared is used by every Solver; there are at most 3^9 * 2 positions.
var shared = &Table{}

func key(b game.Board, toMove game.Mark) uint32 {
	var k uint32
	for _, m := range b {
		k = k*3 + uint32(m)
	}
	return k<<1 | uint32(toMove-game.X)
}

func (t *Table) load(b game.Board, toMove game.Mark) (int, bool) {
	v, ok := t.entries.Load(key(b, toMove))
	if !ok {
		return 0, false
	}
	return int(v.(int8)), true
}

func (t *Table) store(b game.Board, toMove game.Mark, v int) {
	if _, loaded := t.entries.LoadOrStore(key(b, toMove), int8(v)); !loaded {
		t.size.Add(1)
	}
}

// Len returns the number of cached positions.
func (t *Table) Len() int { return int(t.size.Load()) }

// SharedTableLen reports how many positions the process-wide table holds.
func SharedTableLen() int { return shared.Len() }
