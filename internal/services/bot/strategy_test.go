package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpsarena/internal/dependencies/mocks"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/services/bot"
)

type StrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
}

func (s *StrategySuite) TestRandomUsesRandomSource() {
	strategy := bot.NewRandomStrategy(s.mockRandom)
	s.mockRandom.QueueIntn(0, 1, 2, 4)

	s.Equal(model.MoveRock, strategy.Choose(nil))
	s.Equal(model.MovePaper, strategy.Choose(nil))
	s.Equal(model.MoveScissors, strategy.Choose(nil))
	s.Equal(model.MovePaper, strategy.Choose(nil)) // 4 % 3
}

func (s *StrategySuite) TestCycleRotatesThroughMoves() {
	strategy := bot.NewCycleStrategy()

	var history []bot.Round
	var played []model.Move
	for i := 0; i < 4; i++ {
		m := strategy.Choose(history)
		played = append(played, m)
		history = append(history, bot.Round{Mine: m, Theirs: model.MoveRock})
	}

	s.Equal([]model.Move{model.MoveRock, model.MovePaper, model.MoveScissors, model.MoveRock}, played)
}

func (s *StrategySuite) TestCounterBeatsLastOpponentMove() {
	strategy := bot.NewCounterStrategy(bot.NewRandomStrategy(s.mockRandom))
	s.mockRandom.QueueIntn(2)

	s.Equal(model.MoveScissors, strategy.Choose(nil), "opening move comes from the fallback")

	for _, theirs := range model.AllMoves() {
		move := strategy.Choose([]bot.Round{{Mine: theirs.Counter(), Theirs: theirs}})
		s.True(move.Beats(theirs), "%s should beat %s", move, theirs)
	}
}

func (s *StrategySuite) TestCounterFallsBackAfterDraw() {
	strategy := bot.NewCounterStrategy(bot.NewRandomStrategy(s.mockRandom))
	s.mockRandom.QueueIntn(1)

	// A draw hands the choice back to the fallback
	history := []bot.Round{{Mine: model.MovePaper, Theirs: model.MovePaper}}
	s.Equal(model.MovePaper, strategy.Choose(history))
	s.Equal(1, s.mockRandom.Calls())
}

func (s *StrategySuite) TestNewStrategy() {
	for _, name := range model.ValidBotStrategies() {
		strategy, err := bot.NewStrategy(name, s.mockRandom)
		s.Require().NoError(err, name)
		s.True(strategy.Choose(nil).Valid())
	}

	_, err := bot.NewStrategy("psychic", s.mockRandom)
	s.ErrorIs(err, model.ErrUnknownStrategy)
}
