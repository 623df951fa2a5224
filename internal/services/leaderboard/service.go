package leaderboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/storage"
)

// Config holds configuration for the leaderboard service
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns default leaderboard configuration
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 10,
		MaxLimit:     100,
	}
}

// Service records match outcomes and serves standings
type Service struct {
	storage storage.Storage
	cfg     Config
	logger  *slog.Logger
}

// New creates a new leaderboard service
func New(storage storage.Storage, cfg Config, logger *slog.Logger) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultConfig().MaxLimit
	}
	return &Service{
		storage: storage,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "leaderboard")),
	}
}

// RecordResult credits winner with a win and loser with a loss
func (s *Service) RecordResult(ctx context.Context, winner, loser string) error {
	if err := s.storage.RecordResult(ctx, winner, loser); err != nil {
		return fmt.Errorf("record result %s over %s: %w", winner, loser, err)
	}
	s.logger.Info("result recorded",
		slog.String("winner", winner),
		slog.String("loser", loser),
	)
	return nil
}

// RecordMatch appends a finished match to the history
func (s *Service) RecordMatch(ctx context.Context, record *model.MatchRecord) error {
	if err := s.storage.SaveMatch(ctx, record); err != nil {
		return fmt.Errorf("save match %s: %w", record.ID, err)
	}
	return nil
}

// Top returns the highest ranked standings
func (s *Service) Top(ctx context.Context, limit int) ([]model.Standing, error) {
	return s.storage.ListStandings(ctx, s.clamp(limit))
}

// Standing returns a single player's standing
func (s *Service) Standing(ctx context.Context, name string) (*model.Standing, error) {
	return s.storage.GetStanding(ctx, name)
}

// RecentMatches returns the most recent matches, newest first
func (s *Service) RecentMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error) {
	return s.storage.ListMatches(ctx, s.clamp(limit))
}

func (s *Service) clamp(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	return min(limit, s.cfg.MaxLimit)
}
