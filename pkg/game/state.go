package game

import (
	"errors"
	"fmt"
	"strings"
)

// Mark はマスの状態
type Mark int8

const (
	Empty Mark = iota
	X
	O
)

// Cells is the number of cells on the board.
const Cells = 9

var (
	ErrOutOfRange = errors.New("cell out of range")
	ErrOccupied   = errors.New("cell already occupied")
	ErrBoardFull  = errors.New("no empty cell left")
)

// Opponent returns the other mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	}
	return Empty
}

// Label is the wire form of a mark: "b", "x" or "o".
func (m Mark) Label() string {
	switch m {
	case X:
		return "x"
	case O:
		return "o"
	}
	return "b"
}

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	}
	return "-"
}

// ParseMark reads a wire label.
func ParseMark(label string) (Mark, error) {
	switch strings.ToLower(label) {
	case "b", "":
		return Empty, nil
	case "x":
		return X, nil
	case "o":
		return O, nil
	}
	return Empty, fmt.Errorf("unknown cell label %q", label)
}

// Board は 3x3 の盤面 (添字 0..8 は左上から行優先)
// 値型なので代入するとすべてのマスがコピーされる
type Board [Cells]Mark

// ParseBoard converts the wire representation (nine labels) into a Board.
func ParseBoard(labels []string) (Board, error) {
	var b Board
	if len(labels) != Cells {
		return b, fmt.Errorf("board needs %d cells, got %d", Cells, len(labels))
	}
	for i, l := range labels {
		m, err := ParseMark(l)
		if err != nil {
			return b, fmt.Errorf("cell %d: %w", i, err)
		}
		b[i] = m
	}
	return b, nil
}

// Labels returns the wire representation of the board.
func (b Board) Labels() []string {
	out := make([]string, Cells)
	for i, m := range b {
		out[i] = m.Label()
	}
	return out
}

// Play は idx に m を置く. 既に埋まったマスは上書きしない
func (b *Board) Play(idx int, m Mark) error {
	if idx < 0 || idx >= Cells {
		return fmt.Errorf("cell %d: %w", idx, ErrOutOfRange)
	}
	if b[idx] != Empty {
		return fmt.Errorf("cell %d: %w", idx, ErrOccupied)
	}
	b[idx] = m
	return nil
}

// IsLegal reports whether idx is an empty cell on the board.
func (b Board) IsLegal(idx int) bool {
	return idx >= 0 && idx < Cells && b[idx] == Empty
}

// LegalMoves は空きマスを昇順で返す
func (b Board) LegalMoves() []int {
	moves := make([]int, 0, Cells)
	for i, m := range b {
		if m == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// Count returns how many cells hold m.
func (b Board) Count(m Mark) int {
	n := 0
	for _, c := range b {
		if c == m {
			n++
		}
	}
	return n
}

// Encode maps the board to network inputs from the point of view of self:
// empty 0, own mark +1, opponent -1.
func Encode(b Board, self Mark) [Cells]float64 {
	var in [Cells]float64
	for i, m := range b {
		switch m {
		case Empty:
		case self:
			in[i] = 1
		default:
			in[i] = -1
		}
	}
	return in
}

func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		if r > 0 {
			sb.WriteString("-+-+-\n")
		}
		for c := 0; c < 3; c++ {
			if c > 0 {
				sb.WriteByte('|')
			}
			m := b[r*3+c]
			if m == Empty {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(m.String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Move は一手の記録
type Move struct {
	Player Mark `json:"player"`
	Index  int  `json:"index"`
}

func (m Mark) MarshalText() ([]byte, error) { return []byte(m.Label()), nil }

func (m *Mark) UnmarshalText(text []byte) error {
	v, err := ParseMark(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
