package memory

import (
	"context"
	"sync"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/storage"
)

// MaxMatches caps the retained match history
const MaxMatches = 1000

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	standings map[string]*model.Standing
	matches   []*model.MatchRecord // Newest first
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		standings: make(map[string]*model.Standing),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Standing operations

func (s *Storage) RecordResult(ctx context.Context, winner, loser string) error {
	if winner == "" || loser == "" {
		return model.ErrInvalidResult
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standingLocked(winner).Wins++
	s.standingLocked(loser).Losses++
	return nil
}

func (s *Storage) standingLocked(name string) *model.Standing {
	st, ok := s.standings[name]
	if !ok {
		st = &model.Standing{Name: name}
		s.standings[name] = st
	}
	return st
}

func (s *Storage) GetStanding(ctx context.Context, name string) (*model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.standings[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Storage) ListStandings(ctx context.Context, limit int) ([]model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	standings := make([]model.Standing, 0, len(s.standings))
	for _, st := range s.standings {
		standings = append(standings, *st)
	}
	storage.SortStandings(standings)
	return storage.Limit(standings, limit), nil
}

// Match history operations

func (s *Storage) SaveMatch(ctx context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	s.matches = append([]*model.MatchRecord{&cp}, s.matches...)
	if len(s.matches) > MaxMatches {
		s.matches = s.matches[:MaxMatches]
	}
	return nil
}

func (s *Storage) ListMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.MatchRecord, len(s.matches))
	copy(out, s.matches)
	return storage.Limit(out, limit), nil
}

func (s *Storage) Close() error {
	return nil
}
