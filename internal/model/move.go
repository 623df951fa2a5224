package model

import "strings"

// Move is a single rock-paper-scissors throw
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// AllMoves returns every valid move in a stable order
func AllMoves() []Move {
	return []Move{MoveRock, MovePaper, MoveScissors}
}

// ParseMove converts wire input to a Move.
// Only the exact lowercase names are accepted.
func ParseMove(s string) (Move, error) {
	m := Move(s)
	if !m.Valid() {
		return "", ErrInvalidMove
	}
	return m, nil
}

// Valid reports whether m is one of the three moves
func (m Move) Valid() bool {
	switch m {
	case MoveRock, MovePaper, MoveScissors:
		return true
	}
	return false
}

// Beats reports whether m defeats other
func (m Move) Beats(other Move) bool {
	switch m {
	case MoveRock:
		return other == MoveScissors
	case MoveScissors:
		return other == MovePaper
	case MovePaper:
		return other == MoveRock
	}
	return false
}

// Counter returns the move that beats m
func (m Move) Counter() Move {
	switch m {
	case MoveRock:
		return MovePaper
	case MovePaper:
		return MoveScissors
	case MoveScissors:
		return MoveRock
	}
	return ""
}

// String returns the move name, title-cased for display
func (m Move) String() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// Outcome is the result of a round from one side's perspective
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

// Invert returns the outcome seen by the other side
func (o Outcome) Invert() Outcome {
	switch o {
	case OutcomeWin:
		return OutcomeLose
	case OutcomeLose:
		return OutcomeWin
	}
	return o
}
