package network

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
	"github.com/mcoot/rpsarena/internal/session"
)

// Conn is a connected client as seen by the session core. Outbound
// messages are queued on a buffered channel and written by a single
// writer goroutine, so Send never blocks on the network.
type Conn struct {
	id   model.PeerID
	addr string

	send      chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once
}

// Ensure Conn implements session.Peer
var _ session.Peer = (*Conn)(nil)

func newConn(addr string, bufferSize int) *Conn {
	return &Conn{
		id:   model.PeerID(uuid.NewString()),
		addr: addr,
		send: make(chan protocol.Message, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Conn) ID() model.PeerID {
	return c.id
}

func (c *Conn) RemoteAddr() string {
	return c.addr
}

// Send queues msg for delivery. A client too slow to drain its buffer
// is closed, since it has already missed part of the conversation.
func (c *Conn) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return model.ErrPeerClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.Close()
		return model.ErrSendBufferFull
	}
}

// Close stops the writer; queued messages are discarded
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the connection has been closed
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// writeLoop pumps queued messages to the wire until the connection closes
// or a write fails. ping, if set, is called every pingPeriod.
func (c *Conn) writeLoop(write func(protocol.Message) error, ping func() error, pingPeriod time.Duration, logger *slog.Logger) {
	defer c.Close()

	var tick <-chan time.Time
	if ping != nil && pingPeriod > 0 {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case msg := <-c.send:
			if err := write(msg); err != nil {
				logger.Info("write failed",
					slog.String("peer_id", string(c.id)),
					slog.String("error", err.Error()))
				return
			}
		case <-tick:
			if err := ping(); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
