package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/rpsarena/internal/dependencies/clock"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/session"
)

const inboxSize = 16

// Player is an in-process bot connected straight to the coordinator.
// It stays queued until it finishes a match or hits its round limit.
// An opponent leaving mid-match sends it back to the queue like anyone else.
type Player struct {
	id       model.PeerID
	name     string
	strategy Strategy
	cfg      Config
	coord    *session.Coordinator
	clock    clock.Clock
	logger   *slog.Logger

	inbox     chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once

	// Only touched by the run goroutine
	history []Round
	moveDue <-chan time.Time
}

// Ensure Player implements session.Peer
var _ session.Peer = (*Player)(nil)

func newPlayer(name string, strategy Strategy, cfg Config, coord *session.Coordinator, clk clock.Clock, logger *slog.Logger) *Player {
	id := model.PeerID("bot-" + uuid.NewString())
	return &Player{
		id:       id,
		name:     name,
		strategy: strategy,
		cfg:      cfg,
		coord:    coord,
		clock:    clk,
		logger:   logger.With(slog.String("peer_id", string(id)), slog.String("player", name)),
		inbox:    make(chan protocol.Message, inboxSize),
		done:     make(chan struct{}),
	}
}

func (p *Player) ID() model.PeerID {
	return p.id
}

func (p *Player) RemoteAddr() string {
	return "bot"
}

// Name returns the bot's display name
func (p *Player) Name() string {
	return p.name
}

// Send queues a server message for the bot
func (p *Player) Send(msg protocol.Message) error {
	select {
	case <-p.done:
		return model.ErrPeerClosed
	default:
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		p.Stop()
		return model.ErrSendBufferFull
	}
}

// Stop makes the bot leave
func (p *Player) Stop() {
	p.closeOnce.Do(func() { close(p.done) })
}

// run joins the queue and reacts to server messages until the bot leaves
func (p *Player) run(ctx context.Context) {
	defer func() {
		p.Stop()
		p.coord.Disconnect(ctx, p)
	}()

	p.coord.Connect(p)
	p.coord.HandleMessage(ctx, p, protocol.Join(p.name))
	p.coord.HandleMessage(ctx, p, protocol.JoinQueue())

	for {
		select {
		case msg := <-p.inbox:
			if !p.handle(ctx, msg) {
				return
			}
		case <-p.moveDue:
			p.moveDue = nil
			p.submitMove(ctx)
		case <-p.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handle reacts to one message and reports whether the bot stays
func (p *Player) handle(ctx context.Context, msg protocol.Message) bool {
	switch msg.Type {
	case protocol.TypeMatchFound:
		p.resetMatch()
	case protocol.TypeRequestMove:
		// The opening move goes straight away, later ones wait out the delay
		if len(p.history) == 0 || p.cfg.MoveDelay <= 0 {
			p.submitMove(ctx)
		} else {
			p.moveDue = p.clock.After(p.cfg.MoveDelay)
		}
	case protocol.TypeRoundResult:
		p.history = append(p.history, Round{
			Mine:   model.Move(msg.YourMove),
			Theirs: model.Move(msg.OpponentMove),
		})
		if p.cfg.MaxRounds > 0 && len(p.history) >= p.cfg.MaxRounds {
			p.logger.Info("bot leaving", slog.String("reason", "round limit"), slog.Int("rounds", len(p.history)))
			return false
		}
	case protocol.TypeGameOver:
		p.logger.Info("bot leaving", slog.String("reason", msg.Type), slog.Int("rounds", len(p.history)))
		return false
	case protocol.TypeOpponentDisconnected:
		p.logger.Info("bot requeued", slog.Int("rounds", len(p.history)))
		p.resetMatch()
	case protocol.TypeError:
		p.logger.Warn("bot request rejected", slog.String("error", msg.Message))
	}
	return true
}

func (p *Player) submitMove(ctx context.Context) {
	move := p.strategy.Choose(p.history)
	p.coord.HandleMessage(ctx, p, protocol.SubmitMove(move))
}

func (p *Player) resetMatch() {
	p.history = nil
	p.moveDue = nil
}
