//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"math/rand"
	"syscall/js"
	"time"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

type reply struct {
	Move  int        `json:"move"`
	Board game.Board `json:"board"`
	State string     `json:"state"`
	Error string     `json:"error,omitempty"`
}

// solverMove(labels, difficulty) は O として一手指し、結果を JSON 文字列で返す
func solverMove(this js.Value, args []js.Value) interface{} {
	var r reply
	r.Move = -1
	if len(args) < 1 {
		r.Error = "usage: solverMove(labels, difficulty)"
		return encode(r)
	}

	labels := make([]string, args[0].Length())
	for i := range labels {
		labels[i] = args[0].Index(i).String()
	}
	board, err := game.ParseBoard(labels)
	if err != nil {
		r.Error = err.Error()
		return encode(r)
	}

	d := minimax.Hard
	if len(args) > 1 && args[1].Type() == js.TypeString {
		if d, err = minimax.ParseDifficulty(args[1].String()); err != nil {
			r.Error = err.Error()
			return encode(r)
		}
	}

	r.Board = board
	if game.Evaluate(board).Over() {
		r.State = game.Evaluate(board).String()
		return encode(r)
	}
	idx, err := minimax.New(d, rng).Move(board, game.O)
	if err == nil {
		err = board.Play(idx, game.O)
	}
	if err != nil {
		r.Error = err.Error()
		return encode(r)
	}
	r.Move = idx
	r.Board = board
	r.State = game.Evaluate(board).String()
	return encode(r)
}

func encode(r reply) string {
	b, _ := json.Marshal(r)
	return string(b)
}

func main() {
	js.Global().Set("solverMove", js.FuncOf(solverMove))
	select {} // ブロック
}
