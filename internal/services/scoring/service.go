package scoring

import "github.com/mcoot/rpsarena/internal/model"

// Service adjudicates rounds and tallies matches
type Service struct{}

// New creates a new ScoringService
func New() *Service {
	return &Service{}
}

// Judge adjudicates a round. It returns the outcome for each side, which are
// always consistent opposites (one win and one lose, or both draw).
func (s *Service) Judge(a, b model.Move) (model.Outcome, model.Outcome) {
	var outcome model.Outcome
	switch {
	case a == b:
		outcome = model.OutcomeDraw
	case a.Beats(b):
		outcome = model.OutcomeWin
	default:
		outcome = model.OutcomeLose
	}
	return outcome, outcome.Invert()
}

// Tally adds a round's outcomes to the running scores.
// Draws leave the scores untouched.
func (s *Service) Tally(scores [2]int, outcomes [2]model.Outcome) [2]int {
	for i, o := range outcomes {
		if o == model.OutcomeWin {
			scores[i]++
		}
	}
	return scores
}

// MatchWinner returns the index of the side that has reached roundsToWin,
// and whether the match is decided. A non-positive roundsToWin means the
// match never ends on score.
func (s *Service) MatchWinner(scores [2]int, roundsToWin int) (int, bool) {
	if roundsToWin <= 0 {
		return -1, false
	}
	for i, score := range scores {
		if score >= roundsToWin {
			return i, true
		}
	}
	return -1, false
}

// Interface for dependency injection
type ServiceInterface interface {
	Judge(a, b model.Move) (model.Outcome, model.Outcome)
	Tally(scores [2]int, outcomes [2]model.Outcome) [2]int
	MatchWinner(scores [2]int, roundsToWin int) (int, bool)
}

var _ ServiceInterface = (*Service)(nil)
