package game

import "testing"

func mustBoard(t *testing.T, labels ...string) Board {
	t.Helper()
	b, err := ParseBoard(labels)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

func TestEvaluateEveryLine(t *testing.T) {
	for _, m := range []Mark{X, O} {
		for _, l := range Lines {
			var b Board
			for _, i := range l {
				b[i] = m
			}
			r := Evaluate(b)
			if r.State != Win || r.Winner != m {
				t.Fatalf("line %v for %s: got %+v", l, m, r)
			}
		}
	}
}

func TestEvaluateDoubleWinUsesFirstLine(t *testing.T) {
	// row 0 is O, row 2 is X; row 0 comes first in Lines
	b := mustBoard(t,
		"o", "o", "o",
		"b", "b", "b",
		"x", "x", "x")
	r := Evaluate(b)
	if r.State != Win || r.Winner != O {
		t.Fatalf("expected O from the first line, got %+v", r)
	}

	// column 0 (X) is enumerated before column 2 (O)
	b = mustBoard(t,
		"x", "b", "o",
		"x", "b", "o",
		"x", "b", "o")
	r = Evaluate(b)
	if r.State != Win || r.Winner != X {
		t.Fatalf("expected X from column 0, got %+v", r)
	}
}

func TestEvaluateDraw(t *testing.T) {
	b := mustBoard(t,
		"x", "o", "x",
		"x", "o", "o",
		"o", "x", "x")
	if r := Evaluate(b); r.State != Draw {
		t.Fatalf("expected draw, got %+v", r)
	}
	if got := Evaluate(b).String(); got != "Draw" {
		t.Fatalf("String() = %q", got)
	}
}

func TestEvaluateContinue(t *testing.T) {
	b := mustBoard(t,
		"x", "o", "x",
		"b", "o", "b",
		"b", "b", "b")
	if r := Evaluate(b); r.State != Continue || r.Over() {
		t.Fatalf("expected continue, got %+v", r)
	}
}

func TestResultString(t *testing.T) {
	if got := (Result{State: Win, Winner: X}).String(); got != "Player X wins" {
		t.Fatalf("got %q", got)
	}
	if got := (Result{}).String(); got != "Continue" {
		t.Fatalf("got %q", got)
	}
}
