package storage

import (
	"context"
	"sort"

	"github.com/mcoot/rpsarena/internal/model"
)

// Storage defines the interface for leaderboard persistence
type Storage interface {
	// Standing operations
	RecordResult(ctx context.Context, winner, loser string) error
	GetStanding(ctx context.Context, name string) (*model.Standing, error)
	ListStandings(ctx context.Context, limit int) ([]model.Standing, error)

	// Match history operations
	SaveMatch(ctx context.Context, record *model.MatchRecord) error
	ListMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error)

	Close() error
}

// SortStandings orders standings by wins desc, losses asc, name asc
func SortStandings(standings []model.Standing) {
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.Name < b.Name
	})
}

// Limit truncates s to at most n entries; n <= 0 means no limit
func Limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
