package bot

import (
	"fmt"

	"github.com/mcoot/rpsarena/internal/dependencies/random"
	"github.com/mcoot/rpsarena/internal/model"
)

// Round is one completed round from the bot's point of view
type Round struct {
	Mine   model.Move
	Theirs model.Move
}

// Strategy decides a bot's next move from the rounds played so far
type Strategy interface {
	// Choose returns the next move; history is oldest first
	Choose(history []Round) model.Move
}

// NewStrategy builds a strategy by name
func NewStrategy(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case model.BotStrategyRandom:
		return NewRandomStrategy(rnd), nil
	case model.BotStrategyCycle:
		return NewCycleStrategy(), nil
	case model.BotStrategyCounter:
		return NewCounterStrategy(NewRandomStrategy(rnd)), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStrategy, name)
	}
}
