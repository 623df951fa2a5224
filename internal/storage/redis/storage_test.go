package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpsarena/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MaxMatches = 5
	cfg.MatchTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Standing tests

func (s *StorageSuite) TestRecordResultCreatesStandings() {
	s.Require().NoError(s.storage.RecordResult(s.ctx, "Alice", "Bob"))

	alice, err := s.storage.GetStanding(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.Standing{Name: "Alice", Wins: 1, Losses: 0}, *alice)

	bob, err := s.storage.GetStanding(s.ctx, "Bob")
	s.Require().NoError(err)
	s.Equal(model.Standing{Name: "Bob", Wins: 0, Losses: 1}, *bob)
}

func (s *StorageSuite) TestRecordResultKeyLayout() {
	s.Require().NoError(s.storage.RecordResult(s.ctx, "Alice", "Bob"))
	s.Require().NoError(s.storage.RecordResult(s.ctx, "Alice", "Bob"))

	score, err := s.mini.ZScore(winsKey(), "Alice")
	s.Require().NoError(err)
	s.Equal(2.0, score)

	s.Equal("2", s.mini.HGet(lossesKey(), "Bob"))
}

func (s *StorageSuite) TestRecordResultRejectsEmptyNames() {
	s.ErrorIs(s.storage.RecordResult(s.ctx, "", "Bob"), model.ErrInvalidResult)
	s.False(s.mini.Exists(winsKey()))
}

func (s *StorageSuite) TestGetStandingNotFound() {
	_, err := s.storage.GetStanding(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListStandingsOrdering() {
	_ = s.storage.RecordResult(s.ctx, "Carol", "Bob")
	_ = s.storage.RecordResult(s.ctx, "Carol", "Alice")
	_ = s.storage.RecordResult(s.ctx, "Alice", "Bob")
	_ = s.storage.RecordResult(s.ctx, "Dave", "Erin")

	standings, err := s.storage.ListStandings(s.ctx, 0)
	s.Require().NoError(err)

	names := make([]string, 0, len(standings))
	for _, st := range standings {
		names = append(names, st.Name)
	}
	s.Equal([]string{"Carol", "Dave", "Alice", "Erin", "Bob"}, names)
	s.Equal(model.Standing{Name: "Bob", Wins: 0, Losses: 2}, standings[4])
}

func (s *StorageSuite) TestListStandingsLimitAndEmpty() {
	standings, err := s.storage.ListStandings(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(standings)

	_ = s.storage.RecordResult(s.ctx, "Alice", "Bob")
	_ = s.storage.RecordResult(s.ctx, "Carol", "Dave")

	standings, err = s.storage.ListStandings(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(standings, 1)
	s.Equal("Alice", standings[0].Name)
}

// Match history tests

func (s *StorageSuite) TestSaveAndListMatches() {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	record := &model.MatchRecord{
		ID:        "m1",
		Players:   [2]string{"Alice", "Bob"},
		Scores:    [2]int{3, 1},
		Rounds:    5,
		Winner:    "Alice",
		EndReason: model.EndReasonCompleted,
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
	}
	s.Require().NoError(s.storage.SaveMatch(s.ctx, record))

	matches, err := s.storage.ListMatches(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(record, matches[0])
	s.Equal(time.Hour, s.mini.TTL(matchesKey()))
}

func (s *StorageSuite) TestMatchHistoryIsCappedNewestFirst() {
	for i := 0; i < 8; i++ {
		_ = s.storage.SaveMatch(s.ctx, &model.MatchRecord{ID: model.MatchID(fmt.Sprintf("m%d", i))})
	}

	matches, err := s.storage.ListMatches(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(matches, 5)
	s.Equal(model.MatchID("m7"), matches[0].ID)
	s.Equal(model.MatchID("m3"), matches[4].ID)

	limited, err := s.storage.ListMatches(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *StorageSuite) TestListMatchesRejectsCorruptEntry() {
	_, err := s.mini.Lpush(matchesKey(), "not json")
	s.Require().NoError(err)

	_, err = s.storage.ListMatches(s.ctx, 0)
	s.Error(err)
}
