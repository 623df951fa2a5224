package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/rpsarena/internal/dependencies/clock"
	"github.com/mcoot/rpsarena/internal/dependencies/random"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/session"
)

// Config holds house bot pacing
type Config struct {
	// MoveDelay is how long a bot waits after a round before its next move
	MoveDelay time.Duration
	// MaxRounds is how many rounds of one match a bot plays before leaving.
	// Zero means no limit.
	MaxRounds int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		MoveDelay: 3 * time.Second,
		MaxRounds: 50,
	}
}

// Service spawns house bots that queue up like ordinary players
type Service struct {
	coord  *session.Coordinator
	clock  clock.Clock
	random random.Random
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	spawned int
	active  map[model.PeerID]*Player
}

// NewService creates a new bot Service
func NewService(coord *session.Coordinator, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		coord:  coord,
		clock:  clk,
		random: rnd,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "bot-service")),
		ctx:    ctx,
		cancel: cancel,
		active: make(map[model.PeerID]*Player),
	}
}

// Spawn starts a bot with the named strategy and puts it in the queue.
// The bot outlives the caller's context and leaves after one finished match.
func (s *Service) Spawn(_ context.Context, strategy string) (*Player, error) {
	strat, err := NewStrategy(strategy, s.random)
	if err != nil {
		return nil, err
	}
	if s.ctx.Err() != nil {
		return nil, model.ErrPeerClosed
	}

	s.mu.Lock()
	s.spawned++
	name := fmt.Sprintf("%s Bot %d", model.BotStrategyDisplayName(strategy), s.spawned)
	p := newPlayer(name, strat, s.cfg, s.coord, s.clock, s.logger)
	s.active[p.ID()] = p
	s.mu.Unlock()

	s.logger.Info("bot spawned",
		slog.String("peer_id", string(p.ID())),
		slog.String("bot_name", name),
		slog.String("strategy", strategy),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		p.run(s.ctx)
		s.mu.Lock()
		delete(s.active, p.ID())
		s.mu.Unlock()
	}()

	return p, nil
}

// Active returns the number of bots still playing or queued
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Close stops every bot and waits for them to leave
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}
