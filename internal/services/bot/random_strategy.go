package bot

import (
	"github.com/mcoot/rpsarena/internal/dependencies/random"
	"github.com/mcoot/rpsarena/internal/model"
)

// RandomStrategy picks uniformly among the three moves
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Choose returns a random move
func (s *RandomStrategy) Choose([]Round) model.Move {
	return random.Pick(s.random, model.AllMoves())
}

// CycleStrategy plays rock, paper, scissors in turn
type CycleStrategy struct{}

// NewCycleStrategy creates a new CycleStrategy
func NewCycleStrategy() *CycleStrategy {
	return &CycleStrategy{}
}

// Choose returns the move after the one played last round
func (s *CycleStrategy) Choose(history []Round) model.Move {
	moves := model.AllMoves()
	return moves[len(history)%len(moves)]
}

// CounterStrategy plays whatever beats the opponent's previous move,
// deferring to a fallback for the opening round and after a draw
type CounterStrategy struct {
	fallback Strategy
}

// NewCounterStrategy creates a new CounterStrategy
func NewCounterStrategy(fallback Strategy) *CounterStrategy {
	return &CounterStrategy{fallback: fallback}
}

// Choose counters the opponent's last move
func (s *CounterStrategy) Choose(history []Round) model.Move {
	if len(history) == 0 {
		return s.fallback.Choose(history)
	}
	last := history[len(history)-1]
	if last.Mine == last.Theirs {
		return s.fallback.Choose(history)
	}
	return last.Theirs.Counter()
}
