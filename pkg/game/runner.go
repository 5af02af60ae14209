package game

import (
	"errors"
	"fmt"

	"github.com/montplusa/tictactoe-evolve/pkg/game/debug"
)

// BattleResult は対戦結果の記録
type BattleResult struct {
	Initial Board  `json:"initial"` // 初期盤面
	Final   Board  `json:"final"`   // 終局盤面
	Moves   []Move `json:"moves"`   // 手の履歴
	Winner  Mark   `json:"winner"`  // 勝者 (引き分けは Empty)
	// 反則で終わった場合の理由
	Forfeit string `json:"forfeit,omitempty"`
}

// GameRunner は対戦を管理
type GameRunner struct {
	agents [3]AI // indexed by Mark
}

// NewGameRunner は X 側と O 側のエージェントをセットして返す
func NewGameRunner(x, o AI) *GameRunner {
	return &GameRunner{agents: [3]AI{nil, x, o}}
}

// ErrNoTurn means the first mover is neither X nor O.
var ErrNoTurn = errors.New("first mover must be X or O")

// Run は start から first の手番で対局し BattleResult を返す
// エージェントのエラーや不正な手は相手の勝ちとして扱う
func (gr *GameRunner) Run(start Board, first Mark) (BattleResult, error) {
	if first != X && first != O {
		return BattleResult{}, fmt.Errorf("%w: got %d", ErrNoTurn, int(first))
	}
	result := BattleResult{Initial: start, Moves: make([]Move, 0, Cells)}
	board := start
	player := first

	for {
		if r := Evaluate(board); r.Over() {
			result.Winner = r.Winner
			break
		}

		agent := gr.agents[player]
		idx, err := agent.Move(board, player)
		if err == nil {
			err = board.Play(idx, player)
		}
		if err != nil {
			debug.Log("forfeit by %s (%s): %v", agent.Name(), player, err)
			result.Winner = player.Opponent()
			result.Forfeit = fmt.Sprintf("%s: %v", agent.Name(), err)
			break
		}
		debug.Log("%s (%s) -> %d", agent.Name(), player, idx)
		result.Moves = append(result.Moves, Move{Player: player, Index: idx})
		player = player.Opponent()
	}

	result.Final = board
	return result, nil
}
