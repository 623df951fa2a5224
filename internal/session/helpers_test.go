package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
)

// fakePeer records everything sent to it
type fakePeer struct {
	id   model.PeerID
	addr string

	mu   sync.Mutex
	msgs []protocol.Message
	fail bool
}

func newFakePeer(id string, port int) *fakePeer {
	return &fakePeer{
		id:   model.PeerID(id),
		addr: fmt.Sprintf("127.0.0.1:%d", port),
	}
}

func (p *fakePeer) ID() model.PeerID   { return p.id }
func (p *fakePeer) RemoteAddr() string { return p.addr }

func (p *fakePeer) Send(msg protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return model.ErrPeerClosed
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePeer) setFail(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = fail
}

// drain returns and clears the recorded messages
func (p *fakePeer) drain() []protocol.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	msgs := p.msgs
	p.msgs = nil
	return msgs
}

func types(msgs []protocol.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Type)
	}
	return out
}

func ofType(msgs []protocol.Message, msgType string) []protocol.Message {
	var out []protocol.Message
	for _, m := range msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

// fakeRecorder captures recorded outcomes
type fakeRecorder struct {
	mu      sync.Mutex
	results [][2]string
	matches []*model.MatchRecord
	err     error
}

func (r *fakeRecorder) RecordResult(_ context.Context, winner, loser string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, [2]string{winner, loser})
	return r.err
}

func (r *fakeRecorder) RecordMatch(_ context.Context, record *model.MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, record)
	return r.err
}

// fakePublisher captures published events
type fakePublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *fakePublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// checkInvariants verifies the structural invariants of the store
func (s *Store) checkInvariants() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[model.PeerID]bool)
	for _, p := range s.queue {
		if seen[p.ID()] {
			return fmt.Errorf("peer %s queued twice", p.ID())
		}
		seen[p.ID()] = true
		if s.matches[p.ID()] != nil {
			return fmt.Errorf("peer %s both queued and matched", p.ID())
		}
	}

	for id, m := range s.matches {
		opp := m.peers[1-m.side(id)]
		other := s.matches[opp.ID()]
		if other != m {
			return fmt.Errorf("match table not symmetric for %s", id)
		}
		if opp.ID() == id {
			return fmt.Errorf("peer %s matched with itself", id)
		}
	}

	for id := range s.pending {
		if s.matches[id] == nil {
			return fmt.Errorf("pending move for unmatched peer %s", id)
		}
	}
	return nil
}
