package response

import (
	"time"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/session"
)

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

// Standing represents a leaderboard row
type Standing struct {
	Rank   int    `json:"rank,omitempty"`
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Played int    `json:"played"`
}

// StandingFromModel converts a model.Standing; rank 0 is omitted
func StandingFromModel(s model.Standing, rank int) Standing {
	return Standing{
		Rank:   rank,
		Name:   s.Name,
		Wins:   s.Wins,
		Losses: s.Losses,
		Played: s.Played(),
	}
}

// Leaderboard is the response for the leaderboard endpoint
type Leaderboard struct {
	Standings []Standing `json:"standings"`
}

// LeaderboardFromModel ranks standings in the order given
func LeaderboardFromModel(standings []model.Standing) Leaderboard {
	out := Leaderboard{Standings: make([]Standing, 0, len(standings))}
	for i, s := range standings {
		out.Standings = append(out.Standings, StandingFromModel(s, i+1))
	}
	return out
}

// Match represents a finished match
type Match struct {
	ID         string    `json:"id"`
	Players    [2]string `json:"players"`
	Scores     [2]int    `json:"scores"`
	Rounds     int       `json:"rounds"`
	Winner     string    `json:"winner,omitempty"`
	EndReason  string    `json:"end_reason"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMs int64     `json:"duration_ms"`
}

// MatchFromModel converts a model.MatchRecord
func MatchFromModel(r *model.MatchRecord) Match {
	return Match{
		ID:         string(r.ID),
		Players:    r.Players,
		Scores:     r.Scores,
		Rounds:     r.Rounds,
		Winner:     r.Winner,
		EndReason:  string(r.EndReason),
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		DurationMs: r.Duration().Milliseconds(),
	}
}

// Matches is the response for the match history endpoint
type Matches struct {
	Matches []Match `json:"matches"`
}

// MatchesFromModel converts a slice of match records
func MatchesFromModel(records []*model.MatchRecord) Matches {
	out := Matches{Matches: make([]Match, 0, len(records))}
	for _, r := range records {
		out.Matches = append(out.Matches, MatchFromModel(r))
	}
	return out
}

// Stats is the live session snapshot
type Stats struct {
	Registered    int `json:"registered"`
	Queued        int `json:"queued"`
	ActiveMatches int `json:"active_matches"`
	RoundsToWin   int `json:"rounds_to_win"`
}

// StatsFromSession converts session.Stats
func StatsFromSession(s session.Stats, roundsToWin int) Stats {
	return Stats{
		Registered:    s.Registered,
		Queued:        s.Queued,
		ActiveMatches: s.ActiveMatches,
		RoundsToWin:   roundsToWin,
	}
}

// Bot describes a spawned house bot
type Bot struct {
	PeerID   string `json:"peer_id"`
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
}
