package network

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/testutil"
)

func TestConnSendBufferFull(t *testing.T) {
	c := newConn("127.0.0.1:5000", 2)

	require.NoError(t, c.Send(protocol.RequestMove()))
	require.NoError(t, c.Send(protocol.RequestMove()))
	assert.ErrorIs(t, c.Send(protocol.RequestMove()), model.ErrSendBufferFull)

	select {
	case <-c.Done():
	default:
		t.Fatal("overflowing connection left open")
	}
	assert.ErrorIs(t, c.Send(protocol.RequestMove()), model.ErrPeerClosed)
}

func TestConnSendAfterClose(t *testing.T) {
	c := newConn("127.0.0.1:5000", 2)
	c.Close()
	c.Close()

	assert.ErrorIs(t, c.Send(protocol.RequestMove()), model.ErrPeerClosed)
}

func TestConnIdentity(t *testing.T) {
	a := newConn("127.0.0.1:5000", 1)
	b := newConn("127.0.0.1:5000", 1)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "127.0.0.1:5000", a.RemoteAddr())
}

func TestConnWriteLoopPreservesOrder(t *testing.T) {
	c := newConn("127.0.0.1:5000", 8)

	var mu sync.Mutex
	var written []string
	go c.writeLoop(func(msg protocol.Message) error {
		mu.Lock()
		defer mu.Unlock()
		written = append(written, msg.Type)
		return nil
	}, nil, 0, testutil.NopLogger())
	defer c.Close()

	require.NoError(t, c.Send(protocol.MatchFound("Bob")))
	require.NoError(t, c.Send(protocol.RequestMove()))
	require.NoError(t, c.Send(protocol.Error("nope")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(written) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{protocol.TypeMatchFound, protocol.TypeRequestMove, protocol.TypeError}, written)
}

func TestConnWriteFailureClosesConn(t *testing.T) {
	c := newConn("127.0.0.1:5000", 8)
	go c.writeLoop(func(protocol.Message) error {
		return errors.New("broken pipe")
	}, nil, 0, testutil.NopLogger())

	require.NoError(t, c.Send(protocol.RequestMove()))

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("connection not closed after write failure")
	}
	assert.ErrorIs(t, c.Send(protocol.RequestMove()), model.ErrPeerClosed)
}
