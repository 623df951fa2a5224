package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/rpsarena/internal/dependencies/clock"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
)

// recordTimeout bounds each call to the Recorder and Publisher
const recordTimeout = 5 * time.Second

// Recorder persists match outcomes
type Recorder interface {
	RecordResult(ctx context.Context, winner, loser string) error
	RecordMatch(ctx context.Context, record *model.MatchRecord) error
}

// Publisher broadcasts match events to external consumers
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// commandFunc handles one client message type
type commandFunc func(c *Coordinator, ctx context.Context, peer Peer, msg protocol.Message) error

// Coordinator dispatches client messages to the store and owns the
// disconnect path. Side effects that perform I/O (recording results,
// publishing events) run after the store lock has been released.
type Coordinator struct {
	store     *Store
	recorder  Recorder
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
	router    map[string]commandFunc
}

// NewCoordinator creates a Coordinator. recorder and publisher may be nil.
func NewCoordinator(store *Store, recorder Recorder, publisher Publisher, clock clock.Clock, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		store:     store,
		recorder:  recorder,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "coordinator")),
	}
	c.router = map[string]commandFunc{
		protocol.TypeJoin:      handleJoin,
		protocol.TypeJoinQueue: handleJoinQueue,
		protocol.TypeMove:      handleMove,
	}
	return c
}

// Store returns the underlying session store
func (c *Coordinator) Store() *Store {
	return c.store
}

// Connect is called once a peer is accepted
func (c *Coordinator) Connect(peer Peer) {
	c.logger.Info("peer connected",
		slog.String("peer_id", string(peer.ID())),
		slog.String("addr", peer.RemoteAddr()))
}

// HandleMessage routes one decoded client message. Rejected requests are
// answered with an error message and leave all state untouched.
func (c *Coordinator) HandleMessage(ctx context.Context, peer Peer, msg protocol.Message) {
	handler, ok := c.router[msg.Type]
	if !ok {
		c.Reject(peer, fmt.Errorf("%w: %q", model.ErrUnknownMessage, msg.Type))
		return
	}
	if err := handler(c, ctx, peer, msg); err != nil {
		c.Reject(peer, err)
	}
}

// Reject tells the peer its request was refused
func (c *Coordinator) Reject(peer Peer, err error) {
	c.logger.Info("request rejected",
		slog.String("peer_id", string(peer.ID())),
		slog.String("error", err.Error()))
	if sendErr := peer.Send(protocol.Error(err.Error())); sendErr != nil {
		c.logger.Warn("error reply dropped",
			slog.String("peer_id", string(peer.ID())),
			slog.String("error", sendErr.Error()))
	}
}

// Disconnect tears down every piece of state held for the peer. The
// opponent of an interrupted match is notified and re-matched if possible.
func (c *Coordinator) Disconnect(ctx context.Context, peer Peer) {
	td := c.store.Disconnect(peer)
	c.logger.Info("peer disconnected",
		slog.String("peer_id", string(peer.ID())),
		slog.String("player", td.Name))

	if td.Abandoned != nil {
		// The server context may already be cancelled during shutdown
		bg := context.WithoutCancel(ctx)
		c.recordMatch(bg, td.Abandoned)
		c.publish(bg, model.EventMatchEnded, td.Abandoned.ID, model.MatchEndedPayload{Record: *td.Abandoned})
	}
	if td.Requeued {
		c.matchmake(ctx)
	}
}

func handleJoin(c *Coordinator, _ context.Context, peer Peer, msg protocol.Message) error {
	name := c.store.Register(peer, strings.TrimSpace(msg.Player))
	c.logger.Info("player joined",
		slog.String("peer_id", string(peer.ID())),
		slog.String("player", name))
	return nil
}

func handleJoinQueue(c *Coordinator, ctx context.Context, peer Peer, _ protocol.Message) error {
	if !c.store.Enqueue(peer) {
		// Already waiting or playing
		return nil
	}
	c.logger.Info("player queued",
		slog.String("peer_id", string(peer.ID())),
		slog.String("player", c.store.NameOf(peer)))
	c.matchmake(ctx)
	return nil
}

func handleMove(c *Coordinator, ctx context.Context, peer Peer, msg protocol.Message) error {
	move, err := model.ParseMove(msg.Move)
	if err != nil {
		return fmt.Errorf("%w: %q", err, msg.Move)
	}
	report, err := c.store.SubmitMove(peer, move)
	if err != nil {
		return err
	}
	if report != nil {
		c.afterRound(ctx, report)
	}
	return nil
}

func (c *Coordinator) matchmake(ctx context.Context) {
	for _, start := range c.store.TryMatch() {
		c.publish(ctx, model.EventMatchStarted, start.ID, model.MatchStartedPayload{Players: start.Players})
	}
}

func (c *Coordinator) afterRound(ctx context.Context, report *RoundReport) {
	c.publish(ctx, model.EventRoundCompleted, report.MatchID, model.RoundCompletedPayload{
		Round:   report.Round,
		Players: report.Players,
		Moves:   report.Moves,
		Results: report.Results,
		Scores:  report.Scores,
	})

	if report.Final != nil {
		c.recordResult(ctx, report.Final.Winner, report.Final.Loser())
		c.recordMatch(ctx, report.Final)
		c.publish(ctx, model.EventMatchEnded, report.MatchID, model.MatchEndedPayload{Record: *report.Final})
		return
	}

	// Without a win target every decisive round counts on the leaderboard
	if c.store.RoundsToWin() <= 0 {
		if winner, loser, ok := report.Winner(); ok {
			c.recordResult(ctx, winner, loser)
		}
	}
}

func (c *Coordinator) recordResult(ctx context.Context, winner, loser string) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := c.recorder.RecordResult(ctx, winner, loser); err != nil {
		c.logger.Warn("failed to record result",
			slog.String("winner", winner),
			slog.String("loser", loser),
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) recordMatch(ctx context.Context, record *model.MatchRecord) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := c.recorder.RecordMatch(ctx, record); err != nil {
		c.logger.Warn("failed to record match",
			slog.String("match_id", string(record.ID)),
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) publish(ctx context.Context, eventType model.EventType, matchID model.MatchID, payload any) {
	if c.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	event := model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		MatchID:   matchID,
		Payload:   payload,
	}
	if err := c.publisher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("failed to publish event",
			slog.String("type", string(eventType)),
			slog.String("error", err.Error()))
	}
}
