package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/testutil"
)

type recordingPublisher struct {
	events []model.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "rps.events.match_started", Subject(model.EventMatchStarted))
	assert.Equal(t, "rps.events.round_completed", Subject(model.EventRoundCompleted))
	assert.Equal(t, "rps.events.match_ended", Subject(model.EventMatchEnded))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), model.Event{Type: model.EventMatchStarted}))
}

func TestMultiDeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingPublisher{}
	b := &recordingPublisher{err: boom}
	c := &recordingPublisher{}

	err := Multi{a, b, c}.Publish(context.Background(), model.Event{Type: model.EventMatchEnded})

	require.ErrorIs(t, err, boom)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Len(t, c.events, 1)
}

func TestNATSPublisherConnectFailure(t *testing.T) {
	cfg := DefaultNATSConfig()
	cfg.URL = "nats://127.0.0.1:1"

	_, err := NewNATSPublisher(cfg, testutil.NopLogger())
	assert.Error(t, err)
}
