package minimax

import (
	"fmt"
	"strings"
)

// Difficulty controls how often the solver abandons optimal play.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// RandomRate is the probability that a uniformly random legal move replaces
// the optimal one.
func (d Difficulty) RandomRate() float64 {
	switch d {
	case Easy:
		return 0.75
	case Medium:
		return 0.50
	}
	return 0
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Hard, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
