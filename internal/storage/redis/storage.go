package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Standing operations

func (s *Storage) RecordResult(ctx context.Context, winner, loser string) error {
	if winner == "" || loser == "" {
		return model.ErrInvalidResult
	}

	pipe := s.client.TxPipeline()
	pipe.ZIncrBy(ctx, winsKey(), 1, winner)
	pipe.ZIncrBy(ctx, winsKey(), 0, loser)
	pipe.HIncrBy(ctx, lossesKey(), loser, 1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetStanding(ctx context.Context, name string) (*model.Standing, error) {
	wins, err := s.client.ZScore(ctx, winsKey(), name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	losses, err := s.client.HGet(ctx, lossesKey(), name).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	return &model.Standing{Name: name, Wins: int(wins), Losses: losses}, nil
}

func (s *Storage) ListStandings(ctx context.Context, limit int) ([]model.Standing, error) {
	// Ties on wins are broken by losses, so the full set is read and sorted here
	members, err := s.client.ZRevRangeWithScores(ctx, winsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.Standing{}, nil
	}

	losses, err := s.client.HGetAll(ctx, lossesKey()).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]model.Standing, 0, len(members))
	for _, m := range members {
		name, ok := m.Member.(string)
		if !ok {
			continue
		}
		st := model.Standing{Name: name, Wins: int(m.Score)}
		if raw, ok := losses[name]; ok {
			st.Losses, _ = strconv.Atoi(raw)
		}
		standings = append(standings, st)
	}

	storage.SortStandings(standings)
	return storage.Limit(standings, limit), nil
}

// Match history operations

func (s *Storage) SaveMatch(ctx context.Context, record *model.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, matchesKey(), data)
	if s.cfg.MaxMatches > 0 {
		pipe.LTrim(ctx, matchesKey(), 0, s.cfg.MaxMatches-1)
	}
	if s.cfg.MatchTTL > 0 {
		pipe.Expire(ctx, matchesKey(), s.cfg.MatchTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, matchesKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]*model.MatchRecord, 0, len(raw))
	for _, data := range raw {
		var record model.MatchRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, err
		}
		matches = append(matches, &record)
	}
	return matches, nil
}
