package main

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/random"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/trivial"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// agentConfig は "kind[:arg]" 形式のエージェント指定
type agentConfig struct {
	kind       string
	difficulty minimax.Difficulty
	path       string

	once sync.Once
	net  *perceptron.Network
	err  error
}

func parseAgent(s string) (*agentConfig, error) {
	kind, arg, _ := strings.Cut(s, ":")
	ac := &agentConfig{kind: kind}
	switch kind {
	case "minimax":
		ac.difficulty = minimax.Hard
		if arg != "" {
			d, err := minimax.ParseDifficulty(arg)
			if err != nil {
				return nil, err
			}
			ac.difficulty = d
		}
	case "neural":
		if arg == "" {
			return nil, fmt.Errorf("neural agent needs a weights path")
		}
		ac.path = arg
	case "random", "trivial":
	default:
		return nil, fmt.Errorf("unknown agent %q", s)
	}
	return ac, nil
}

// build は対戦ごとの新しいエージェントを返す. ネットワークは一度だけ読み込む
func (s *agentConfig) build(rng *rand.Rand) (game.AI, error) {
	switch s.kind {
	case "minimax":
		return minimax.New(s.difficulty, rng), nil
	case "random":
		return random.New(rng), nil
	case "trivial":
		return trivial.New(), nil
	}
	s.once.Do(func() { s.net, s.err = perceptron.Load(s.path) })
	if s.err != nil {
		return nil, s.err
	}
	return perceptron.NewAgent("neural", s.net), nil
}
