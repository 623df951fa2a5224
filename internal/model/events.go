package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventMatchStarted   EventType = "match_started"
	EventRoundCompleted EventType = "round_completed"
	EventMatchEnded     EventType = "match_ended"
)

// Event is the base structure for all published events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	MatchID   MatchID   `json:"match_id"`
	Payload   any       `json:"payload"`
}

// MatchStartedPayload contains data for match started events
type MatchStartedPayload struct {
	Players [2]string `json:"players"`
}

// RoundCompletedPayload contains data for round completed events
type RoundCompletedPayload struct {
	Round   int        `json:"round"`
	Players [2]string  `json:"players"`
	Moves   [2]Move    `json:"moves"`
	Results [2]Outcome `json:"results"`
	Scores  [2]int     `json:"scores"`
}

// MatchEndedPayload contains data for match ended events
type MatchEndedPayload struct {
	Record MatchRecord `json:"record"`
}
