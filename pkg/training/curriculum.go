package training

import (
	"errors"
	"fmt"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
)

// ErrCurriculum reports difficulty percentages that do not add up to 100.
var ErrCurriculum = errors.New("difficulty percentages must add up to 100")

// Curriculum assigns a difficulty to every generation: floor(n*easy/100)
// easy generations, then floor(n*medium/100) medium ones, and hard for the
// rest.
func Curriculum(generations, easy, medium, hard int) ([]minimax.Difficulty, error) {
	if easy < 0 || medium < 0 || hard < 0 || easy+medium+hard != 100 {
		return nil, fmt.Errorf("%w: got %d+%d+%d", ErrCurriculum, easy, medium, hard)
	}
	if generations < 0 {
		return nil, fmt.Errorf("negative generation count %d", generations)
	}
	nEasy := generations * easy / 100
	nMedium := generations * medium / 100

	out := make([]minimax.Difficulty, 0, generations)
	for i := 0; i < nEasy; i++ {
		out = append(out, minimax.Easy)
	}
	for i := 0; i < nMedium; i++ {
		out = append(out, minimax.Medium)
	}
	for len(out) < generations {
		out = append(out, minimax.Hard)
	}
	return out, nil
}

// DifficultyAt returns the difficulty of generation g (0-based), repeating
// the last entry once the schedule runs out.
func DifficultyAt(curriculum []minimax.Difficulty, g int) minimax.Difficulty {
	if len(curriculum) == 0 {
		return minimax.Hard
	}
	if g >= len(curriculum) {
		g = len(curriculum) - 1
	}
	return curriculum[g]
}
