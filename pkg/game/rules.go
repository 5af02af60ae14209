package game

// State is the phase of a game after a move.
type State int

const (
	Continue State = iota
	Win
	Draw
)

// Result is the outcome of Evaluate. Winner is only set when State is Win.
type Result struct {
	State  State
	Winner Mark
}

// Lines are the eight winning triples in detection order.
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate returns the terminal state of the board. When two marks both own a
// completed line the first line in Lines decides.
func Evaluate(b Board) Result {
	for _, l := range Lines {
		m := b[l[0]]
		if m != Empty && m == b[l[1]] && m == b[l[2]] {
			return Result{State: Win, Winner: m}
		}
	}
	if b.Full() {
		return Result{State: Draw}
	}
	return Result{State: Continue}
}

// Over reports whether the game has ended.
func (r Result) Over() bool { return r.State != Continue }

// String matches the status strings used over HTTP.
func (r Result) String() string {
	switch r.State {
	case Win:
		return "Player " + r.Winner.String() + " wins"
	case Draw:
		return "Draw"
	}
	return "Continue"
}
