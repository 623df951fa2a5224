package model

// Bot strategy constants
const (
	BotStrategyRandom  = "random"
	BotStrategyCycle   = "cycle"
	BotStrategyCounter = "counter"
)

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyRandom:
		return "Random"
	case BotStrategyCycle:
		return "Cycle"
	case BotStrategyCounter:
		return "Counter"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyRandom, BotStrategyCycle, BotStrategyCounter}
}
