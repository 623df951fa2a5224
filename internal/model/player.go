package model

// PeerID uniquely identifies a live connection for its lifetime
type PeerID string

// Standing is a player's accumulated leaderboard record.
// Players are keyed by display name since names are not unique-enforced.
type Standing struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Played returns the number of recorded results for the player
func (s Standing) Played() int {
	return s.Wins + s.Losses
}
