package redis

import "fmt"

// Key prefix for all arena data
const keyPrefix = "rpsarena"

// winsKey returns the key of the sorted set of player name -> wins.
// Every player with a recorded result is a member, losers with score 0.
func winsKey() string {
	return fmt.Sprintf("%s:standings:wins", keyPrefix)
}

// lossesKey returns the key of the hash of player name -> losses
func lossesKey() string {
	return fmt.Sprintf("%s:standings:losses", keyPrefix)
}

// matchesKey returns the key of the LIST of match records, newest first
func matchesKey() string {
	return fmt.Sprintf("%s:matches", keyPrefix)
}
