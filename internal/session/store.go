package session

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/rpsarena/internal/dependencies/clock"
	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/services/scoring"
)

// Config holds match rules
type Config struct {
	// RoundsToWin ends a match once a side has won this many rounds.
	// Zero or less means matches only end on disconnect.
	RoundsToWin int
}

// DefaultConfig returns the default match rules
func DefaultConfig() Config {
	return Config{RoundsToWin: 3}
}

// Stats is a point-in-time view of the session store
type Stats struct {
	Registered    int `json:"registered"`
	Queued        int `json:"queued"`
	ActiveMatches int `json:"active_matches"`
}

// MatchStart describes a freshly formed match
type MatchStart struct {
	ID      model.MatchID
	Players [2]string
}

// RoundReport describes an adjudicated round
type RoundReport struct {
	MatchID model.MatchID
	Round   int
	Players [2]string
	Moves   [2]model.Move
	Results [2]model.Outcome
	Scores  [2]int

	// Final is set when the round decided the match
	Final *model.MatchRecord
}

// Decisive reports whether the round had a winner
func (r *RoundReport) Decisive() bool {
	return r.Results[0] != model.OutcomeDraw
}

// Winner returns the names of the round's winner and loser
func (r *RoundReport) Winner() (winner, loser string, ok bool) {
	switch r.Results[0] {
	case model.OutcomeWin:
		return r.Players[0], r.Players[1], true
	case model.OutcomeLose:
		return r.Players[1], r.Players[0], true
	}
	return "", "", false
}

// Teardown describes the state released by a disconnect
type Teardown struct {
	Name      string
	Opponent  Peer               // Set if the peer was mid-match
	Requeued  bool               // The opponent went back into the queue
	Abandoned *model.MatchRecord // The match that was cut short, if any
}

// match is an active pairing; both sides of the match table share one value
type match struct {
	id        model.MatchID
	peers     [2]Peer
	names     [2]string
	scores    [2]int
	round     int
	startedAt time.Time
}

func (m *match) side(id model.PeerID) int {
	if m.peers[0].ID() == id {
		return 0
	}
	return 1
}

func (m *match) record(now time.Time, reason model.EndReason, winner string) *model.MatchRecord {
	return &model.MatchRecord{
		ID:        m.id,
		Players:   m.names,
		Scores:    m.scores,
		Rounds:    m.round,
		Winner:    winner,
		EndReason: reason,
		StartedAt: m.startedAt,
		EndedAt:   now,
	}
}

// Store owns the connection registry, matchmaking queue, match table and
// pending moves. Every operation runs under a single mutex so pairing stays
// exclusive and symmetric while many connection handlers race on it.
//
// Outbound notifications are handed to Peer.Send inside the lock, which keeps
// per-peer message order consistent with state transitions.
type Store struct {
	mu sync.Mutex

	names   map[model.PeerID]string
	queue   []Peer
	matches map[model.PeerID]*match
	pending map[model.PeerID]model.Move

	cfg     Config
	scoring scoring.ServiceInterface
	clock   clock.Clock
	logger  *slog.Logger
}

// NewStore creates an empty session store
func NewStore(cfg Config, scoring scoring.ServiceInterface, clock clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		names:   make(map[model.PeerID]string),
		matches: make(map[model.PeerID]*match),
		pending: make(map[model.PeerID]model.Move),
		cfg:     cfg,
		scoring: scoring,
		clock:   clock,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// RoundsToWin returns the configured win target
func (s *Store) RoundsToWin() int {
	return s.cfg.RoundsToWin
}

// Connection registry

// Register records the display name for a peer, replacing any earlier one.
// An empty name is replaced by an address-based placeholder.
func (s *Store) Register(p Peer, name string) string {
	if name == "" {
		name = fallbackName(p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[p.ID()] = name
	return name
}

// Unregister forgets a peer's name. It is a no-op for unknown peers.
func (s *Store) Unregister(p Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, p.ID())
}

// NameOf returns the registered name or a placeholder
func (s *Store) NameOf(p Peer) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameOfLocked(p)
}

// IsRegistered reports whether the peer has joined
func (s *Store) IsRegistered(p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.names[p.ID()]
	return ok
}

func (s *Store) nameOfLocked(p Peer) string {
	if name, ok := s.names[p.ID()]; ok {
		return name
	}
	return fallbackName(p)
}

// Matchmaking queue

// Enqueue appends the peer to the queue. It returns false without changing
// anything if the peer is already queued or playing.
func (s *Store) Enqueue(p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queuedLocked(p.ID()) || s.matches[p.ID()] != nil {
		return false
	}
	s.queue = append(s.queue, p)
	return true
}

// RemoveFromQueue extracts the peer from the queue if present
func (s *Store) RemoveFromQueue(p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dequeueLocked(p.ID())
}

// TryMatch pairs the two oldest queued peers until fewer than two remain
func (s *Store) TryMatch() []MatchStart {
	s.mu.Lock()
	defer s.mu.Unlock()

	var started []MatchStart
	for len(s.queue) >= 2 {
		a, b := s.queue[0], s.queue[1]
		s.queue = slices.Delete(s.queue, 0, 2)
		started = append(started, s.startMatchLocked(a, b))
	}
	return started
}

// QueueLen returns the number of waiting peers
func (s *Store) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Store) queuedLocked(id model.PeerID) bool {
	return slices.ContainsFunc(s.queue, func(q Peer) bool { return q.ID() == id })
}

func (s *Store) dequeueLocked(id model.PeerID) bool {
	i := slices.IndexFunc(s.queue, func(q Peer) bool { return q.ID() == id })
	if i < 0 {
		return false
	}
	s.queue = slices.Delete(s.queue, i, i+1)
	return true
}

// Match table

// StartMatch pairs two specific peers, pulling them out of the queue if they
// are waiting. Both must be distinct and idle.
func (s *Store) StartMatch(a, b Peer) (MatchStart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID() == b.ID() || s.matches[a.ID()] != nil || s.matches[b.ID()] != nil {
		return MatchStart{}, model.ErrAlreadyInMatch
	}
	s.dequeueLocked(a.ID())
	s.dequeueLocked(b.ID())
	return s.startMatchLocked(a, b), nil
}

func (s *Store) startMatchLocked(a, b Peer) MatchStart {
	m := &match{
		id:        model.MatchID(uuid.NewString()),
		peers:     [2]Peer{a, b},
		names:     [2]string{s.nameOfLocked(a), s.nameOfLocked(b)},
		startedAt: s.clock.Now(),
	}
	s.matches[a.ID()] = m
	s.matches[b.ID()] = m
	delete(s.pending, a.ID())
	delete(s.pending, b.ID())

	s.send(a, protocol.MatchFound(m.names[1]))
	s.send(b, protocol.MatchFound(m.names[0]))
	s.send(a, protocol.RequestMove())
	s.send(b, protocol.RequestMove())

	s.logger.Info("match started",
		slog.String("match_id", string(m.id)),
		slog.String("player_a", m.names[0]),
		slog.String("player_b", m.names[1]))

	return MatchStart{ID: m.id, Players: m.names}
}

// EndMatch removes the match containing p from the table and clears both
// pending moves. It returns p and its former opponent.
func (s *Store) EndMatch(p Peer) (Peer, Peer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.matches[p.ID()]
	if m == nil {
		return nil, nil, false
	}
	s.endMatchLocked(m)
	return p, m.peers[1-m.side(p.ID())], true
}

func (s *Store) endMatchLocked(m *match) {
	for _, peer := range m.peers {
		delete(s.matches, peer.ID())
		delete(s.pending, peer.ID())
	}
}

// OpponentOf returns the peer's current opponent
func (s *Store) OpponentOf(p Peer) (Peer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.matches[p.ID()]
	if m == nil {
		return nil, false
	}
	return m.peers[1-m.side(p.ID())], true
}

// PendingMove returns the move p has submitted for the open round
func (s *Store) PendingMove(p Peer) (model.Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	move, ok := s.pending[p.ID()]
	return move, ok
}

// Round engine

// SubmitMove records the peer's move for the current round, replacing any
// earlier submission. Once both sides have moved the round is adjudicated,
// both players are notified and the pending moves are cleared; the returned
// report is nil while the opponent has yet to move.
func (s *Store) SubmitMove(p Peer, move model.Move) (*RoundReport, error) {
	if !move.Valid() {
		return nil, model.ErrInvalidMove
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[p.ID()]
	if m == nil {
		return nil, model.ErrNotInMatch
	}
	s.pending[p.ID()] = move

	var moves [2]model.Move
	for i, peer := range m.peers {
		mv, ok := s.pending[peer.ID()]
		if !ok {
			return nil, nil
		}
		moves[i] = mv
	}
	delete(s.pending, m.peers[0].ID())
	delete(s.pending, m.peers[1].ID())

	outcomeA, outcomeB := s.scoring.Judge(moves[0], moves[1])
	results := [2]model.Outcome{outcomeA, outcomeB}
	m.round++
	m.scores = s.scoring.Tally(m.scores, results)

	s.send(m.peers[0], protocol.RoundResult(m.round, moves[0], moves[1], results[0]))
	s.send(m.peers[1], protocol.RoundResult(m.round, moves[1], moves[0], results[1]))

	report := &RoundReport{
		MatchID: m.id,
		Round:   m.round,
		Players: m.names,
		Moves:   moves,
		Results: results,
		Scores:  m.scores,
	}

	if idx, done := s.scoring.MatchWinner(m.scores, s.cfg.RoundsToWin); done {
		winner := m.names[idx]
		s.send(m.peers[0], protocol.GameOver(winner, m.scores[0], m.scores[1]))
		s.send(m.peers[1], protocol.GameOver(winner, m.scores[1], m.scores[0]))
		s.endMatchLocked(m)
		report.Final = m.record(s.clock.Now(), model.EndReasonCompleted, winner)

		s.logger.Info("match completed",
			slog.String("match_id", string(m.id)),
			slog.String("winner", winner),
			slog.Int("rounds", m.round))
		return report, nil
	}

	s.send(m.peers[0], protocol.RequestMove())
	s.send(m.peers[1], protocol.RequestMove())
	return report, nil
}

// Teardown

// Disconnect releases every trace of p: queue slot, match, pending move and
// registry entry. A mid-match opponent is told and, if still registered, put
// back at the end of the queue. The caller is responsible for re-running
// matchmaking once this returns.
func (s *Store) Disconnect(p Peer) Teardown {
	s.mu.Lock()
	defer s.mu.Unlock()

	td := Teardown{Name: s.nameOfLocked(p)}
	s.dequeueLocked(p.ID())

	if m := s.matches[p.ID()]; m != nil {
		opponent := m.peers[1-m.side(p.ID())]
		s.endMatchLocked(m)
		s.send(opponent, protocol.OpponentDisconnected())

		td.Opponent = opponent
		td.Abandoned = m.record(s.clock.Now(), model.EndReasonDisconnect, "")

		if _, registered := s.names[opponent.ID()]; registered && !s.queuedLocked(opponent.ID()) {
			s.queue = append(s.queue, opponent)
			td.Requeued = true
		}

		s.logger.Info("match abandoned",
			slog.String("match_id", string(m.id)),
			slog.String("left", td.Name),
			slog.String("opponent", s.nameOfLocked(opponent)),
			slog.Bool("requeued", td.Requeued))
	}

	delete(s.pending, p.ID())
	delete(s.names, p.ID())
	return td
}

// Stats returns current counts
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Registered:    len(s.names),
		Queued:        len(s.queue),
		ActiveMatches: len(s.matches) / 2,
	}
}

// send delivers best-effort; a failure never blocks state changes
func (s *Store) send(p Peer, msg protocol.Message) {
	if err := p.Send(msg); err != nil {
		s.logger.Warn("outbound message dropped",
			slog.String("peer_id", string(p.ID())),
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
	}
}
