package model

import "time"

// MatchID uniquely identifies a match
type MatchID string

// EndReason describes why a match stopped
type EndReason string

const (
	EndReasonCompleted  EndReason = "completed"  // A side reached the win target
	EndReasonDisconnect EndReason = "disconnect" // A side left mid-match
)

// MatchRecord is a lightweight record of a finished match
type MatchRecord struct {
	ID        MatchID   `json:"id"`
	Players   [2]string `json:"players"`
	Scores    [2]int    `json:"scores"`
	Rounds    int       `json:"rounds"`
	Winner    string    `json:"winner,omitempty"` // Empty when abandoned
	EndReason EndReason `json:"end_reason"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Loser returns the name of the losing side, or empty if there was no winner
func (r *MatchRecord) Loser() string {
	switch r.Winner {
	case "":
		return ""
	case r.Players[0]:
		return r.Players[1]
	default:
		return r.Players[0]
	}
}

// Duration returns how long the match lasted
func (r *MatchRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
